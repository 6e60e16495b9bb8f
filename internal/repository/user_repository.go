package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/freelance-market/internal/models"
)

// Ошибки уровня репозитория пользователей.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUserDuplicate = errors.New("user already exists")
)

// uniqueViolation код PostgreSQL для нарушения уникального ограничения.
const uniqueViolation = "23505"

// isUniqueViolation проверяет, что ошибка вызвана нарушением уникальности.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

const userColumns = `id, name, email, password_hash, wallet_address, role, bio, skills, hourly_rate,
	completed_projects, rating, available_for_hire, location, last_active_at, created_at, updated_at`

// UserRepository отвечает за работу с таблицей users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт нового пользователя. Дубликат email или адреса кошелька
// превращается в ErrUserDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, wallet_address, role, bio, skills, hourly_rate, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.Name, user.Email, user.PasswordHash, user.WalletAddress, user.Role,
		user.Bio, pq.Array(user.Skills), user.HourlyRate, user.Location,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrUserDuplicate
		}
		return fmt.Errorf("user repository: create %w", err)
	}

	return nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}

	return &user, nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by email %w", err)
	}

	return &user, nil
}

// GetByWalletAddress возвращает пользователя по адресу кошелька.
// Адрес хранится в нижнем регистре, нормализация — забота сервиса.
func (r *UserRepository) GetByWalletAddress(ctx context.Context, address string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE wallet_address = $1`
	if err := r.db.GetContext(ctx, &user, query, address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by wallet address %w", err)
	}

	return &user, nil
}

// UpdateProfile обновляет редактируемые поля профиля пользователя.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $1,
			bio = $2,
			skills = $3,
			hourly_rate = $4,
			location = $5,
			available_for_hire = $6,
			updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.Name, user.Bio, pq.Array(user.Skills), user.HourlyRate,
		user.Location, user.AvailableForHire, user.ID,
	).Scan(&user.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("user repository: update profile %w", err)
	}

	return nil
}

// UpdateLastActiveAt обновляет время последней активности пользователя.
func (r *UserRepository) UpdateLastActiveAt(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_active_at = NOW() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("user repository: update last active at %w", err)
	}

	return nil
}

// IncrementCompletedProjects увеличивает счётчик завершённых проектов фрилансера.
func (r *UserRepository) IncrementCompletedProjects(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET completed_projects = completed_projects + 1, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("user repository: increment completed projects %w", err)
	}

	return nil
}

// ListFreelancers возвращает фрилансеров, доступных для найма.
func (r *UserRepository) ListFreelancers(ctx context.Context, limit, offset int) ([]models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = 'freelancer' AND available_for_hire = TRUE
		ORDER BY rating DESC, completed_projects DESC
		LIMIT $1 OFFSET $2
	`

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, fmt.Errorf("user repository: list freelancers %w", err)
	}

	return users, nil
}

// CountFreelancers возвращает количество доступных фрилансеров.
func (r *UserRepository) CountFreelancers(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE role = 'freelancer' AND available_for_hire = TRUE`
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("user repository: count freelancers %w", err)
	}
	return count, nil
}

// GetPublicByIDs возвращает публичные профили для набора идентификаторов.
func (r *UserRepository) GetPublicByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.PublicUser, error) {
	result := make(map[uuid.UUID]models.PublicUser, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `
		SELECT id, name, email, wallet_address, role, bio, skills, rating, completed_projects, created_at
		FROM users
		WHERE id = ANY($1)
	`

	rows, err := r.db.QueryxContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("user repository: get public by ids %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.PublicUser
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.WalletAddress, &u.Role,
			&u.Bio, &u.Skills, &u.Rating, &u.CompletedProjects, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("user repository: scan public user %w", err)
		}
		result[u.ID] = u
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("user repository: public users rows %w", err)
	}

	return result, nil
}
