package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-market/internal/models"
)

// Ошибки уровня репозитория предложений.
var (
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrProposalDuplicate = errors.New("proposal already exists")
	// ErrProposalNotPending возвращается, когда предложение уже рассмотрено.
	ErrProposalNotPending = errors.New("proposal is not pending")
	// ErrProjectNotOpen возвращается при попытке принять предложение по
	// проекту, который больше не принимает предложения.
	ErrProjectNotOpen = errors.New("project is not open")
	// ErrProjectAlreadyHired возвращается, когда исполнитель уже выбран
	// конкурирующим принятием.
	ErrProjectAlreadyHired = errors.New("project already has hired freelancer")
)

const proposalColumns = `id, project_id, freelancer_id, cover_letter, bid_amount, duration_value,
	duration_unit, status, client_notes, created_at, updated_at`

// ProposalRepository отвечает за работу с предложениями фрилансеров.
type ProposalRepository struct {
	db *sqlx.DB
}

// NewProposalRepository создаёт новый экземпляр.
func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create добавляет предложение. Повторное предложение того же фрилансера на
// тот же проект упирается в UNIQUE(project_id, freelancer_id) и превращается
// в ErrProposalDuplicate.
func (r *ProposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	query := `
		INSERT INTO proposals (project_id, freelancer_id, cover_letter, bid_amount, duration_value, duration_unit, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		proposal.ProjectID,
		proposal.FreelancerID,
		proposal.CoverLetter,
		proposal.BidAmount,
		proposal.DurationValue,
		proposal.DurationUnit,
		proposal.Status,
	).Scan(&proposal.ID, &proposal.CreatedAt, &proposal.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrProposalDuplicate
		}
		return fmt.Errorf("proposal repository: create %w", err)
	}

	return nil
}

// GetByID возвращает предложение по идентификатору.
func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`
	if err := r.db.GetContext(ctx, &proposal, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: get by id %w", err)
	}
	return &proposal, nil
}

// GetByProjectAndFreelancer возвращает предложение фрилансера для проекта.
func (r *ProposalRepository) GetByProjectAndFreelancer(ctx context.Context, projectID, freelancerID uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE project_id = $1 AND freelancer_id = $2`
	if err := r.db.GetContext(ctx, &proposal, query, projectID, freelancerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: get by project and freelancer %w", err)
	}
	return &proposal, nil
}

// ListByProject возвращает предложения по проекту с публичными профилями
// фрилансеров одним запросом.
func (r *ProposalRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Proposal, error) {
	query := `
		SELECT
			pr.id, pr.project_id, pr.freelancer_id, pr.cover_letter, pr.bid_amount,
			pr.duration_value, pr.duration_unit, pr.status, pr.client_notes, pr.created_at, pr.updated_at,
			u.id, u.name, u.email, u.wallet_address, u.role, u.bio, u.skills, u.rating, u.completed_projects, u.created_at
		FROM proposals pr
		JOIN users u ON u.id = pr.freelancer_id
		WHERE pr.project_id = $1
		ORDER BY pr.created_at DESC
	`

	rows, err := r.db.QueryxContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: list by project %w", err)
	}
	defer rows.Close()

	var proposals []models.Proposal

	for rows.Next() {
		var proposal models.Proposal
		var freelancer models.PublicUser

		if err := rows.Scan(
			&proposal.ID,
			&proposal.ProjectID,
			&proposal.FreelancerID,
			&proposal.CoverLetter,
			&proposal.BidAmount,
			&proposal.DurationValue,
			&proposal.DurationUnit,
			&proposal.Status,
			&proposal.ClientNotes,
			&proposal.CreatedAt,
			&proposal.UpdatedAt,
			&freelancer.ID,
			&freelancer.Name,
			&freelancer.Email,
			&freelancer.WalletAddress,
			&freelancer.Role,
			&freelancer.Bio,
			&freelancer.Skills,
			&freelancer.Rating,
			&freelancer.CompletedProjects,
			&freelancer.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("proposal repository: scan proposal %w", err)
		}

		proposal.Freelancer = &freelancer
		proposals = append(proposals, proposal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("proposal repository: proposals rows %w", err)
	}

	return proposals, nil
}

// ListByFreelancer возвращает все предложения фрилансера.
func (r *ProposalRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error) {
	query := `
		SELECT ` + proposalColumns + `
		FROM proposals
		WHERE freelancer_id = $1
		ORDER BY created_at DESC
	`

	var proposals []models.Proposal
	if err := r.db.SelectContext(ctx, &proposals, query, freelancerID); err != nil {
		return nil, fmt.Errorf("proposal repository: list by freelancer %w", err)
	}

	return proposals, nil
}

// CountByProjectAndStatus возвращает число предложений проекта в статусе.
func (r *ProposalRepository) CountByProjectAndStatus(ctx context.Context, projectID uuid.UUID, status models.ProposalStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM proposals WHERE project_id = $1 AND status = $2`
	if err := r.db.GetContext(ctx, &count, query, projectID, status); err != nil {
		return 0, fmt.Errorf("proposal repository: count by project and status %w", err)
	}
	return count, nil
}

// ListPendingForSelection возвращает ожидающие предложения проекта в порядке
// выбора автоприёма: сначала минимальная ставка, при равенстве — более раннее.
func (r *ProposalRepository) ListPendingForSelection(ctx context.Context, projectID uuid.UUID) ([]models.Proposal, error) {
	query := `
		SELECT ` + proposalColumns + `
		FROM proposals
		WHERE project_id = $1 AND status = 'pending'
		ORDER BY bid_amount ASC, created_at ASC, id ASC
	`

	var proposals []models.Proposal
	if err := r.db.SelectContext(ctx, &proposals, query, projectID); err != nil {
		return nil, fmt.Errorf("proposal repository: list pending for selection %w", err)
	}

	return proposals, nil
}

// Reject переводит ожидающее предложение в rejected.
func (r *ProposalRepository) Reject(ctx context.Context, id uuid.UUID, clientNotes *string) (*models.Proposal, error) {
	query := `
		UPDATE proposals
		SET status = 'rejected',
		    client_notes = $2,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + proposalColumns + `
	`

	var proposal models.Proposal
	if err := r.db.QueryRowxContext(ctx, query, id, clientNotes).StructScan(&proposal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotPending
		}
		return nil, fmt.Errorf("proposal repository: reject %w", err)
	}

	return &proposal, nil
}

// RejectedSibling — конкурирующее предложение, отклонённое при принятии.
type RejectedSibling struct {
	ProposalID   uuid.UUID `db:"id"`
	FreelancerID uuid.UUID `db:"freelancer_id"`
}

// AcceptResult — итог транзакции принятия предложения.
type AcceptResult struct {
	Proposal *models.Proposal
	Project  *models.Project
	Rejected []RejectedSibling
}

// Accept атомарно принимает предложение: назначает исполнителя и переводит
// проект в in_progress, помечает предложение accepted и отклоняет остальные
// ожидающие предложения. Все три шага выполняются в одной транзакции, так что
// у проекта не может оказаться двух принятых предложений.
func (r *ProposalRepository) Accept(ctx context.Context, proposalID uuid.UUID, rejectionNote string) (*AcceptResult, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("proposal repository: begin tx %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var proposal models.Proposal
	if err := tx.GetContext(ctx, &proposal, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1 FOR UPDATE`, proposalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: lock proposal %w", err)
	}

	if proposal.Status != models.ProposalStatusPending {
		return nil, ErrProposalNotPending
	}

	// Назначаем исполнителя только если проект всё ещё открыт и никто не
	// нанят. Условный UPDATE гарантирует единственного победителя при
	// конкурирующих принятиях.
	hireQuery := `
		UPDATE projects
		SET hired_freelancer_id = $1,
		    status = 'in_progress',
		    updated_at = NOW()
		WHERE id = $2 AND status = 'open' AND hired_freelancer_id IS NULL
		RETURNING ` + projectColumns + `
	`

	var project models.Project
	if err := tx.QueryRowxContext(ctx, hireQuery, proposal.FreelancerID, proposal.ProjectID).StructScan(&project); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("proposal repository: hire freelancer %w", err)
		}

		// Ноль строк: выясняем, почему именно отказ.
		var current models.Project
		if err := tx.GetContext(ctx, &current, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, proposal.ProjectID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrProjectNotFound
			}
			return nil, fmt.Errorf("proposal repository: reread project %w", err)
		}
		if current.HiredFreelancerID != nil {
			return nil, ErrProjectAlreadyHired
		}
		return nil, ErrProjectNotOpen
	}

	acceptQuery := `
		UPDATE proposals
		SET status = 'accepted', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + proposalColumns + `
	`

	var accepted models.Proposal
	if err := tx.QueryRowxContext(ctx, acceptQuery, proposalID).StructScan(&accepted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotPending
		}
		return nil, fmt.Errorf("proposal repository: accept proposal %w", err)
	}

	// Конкурирующие ожидающие предложения отклоняются с пометкой для авторов.
	rejectQuery := `
		UPDATE proposals
		SET status = 'rejected',
		    client_notes = $1,
		    updated_at = NOW()
		WHERE project_id = $2 AND id <> $3 AND status = 'pending'
		RETURNING id, freelancer_id
	`

	var rejected []RejectedSibling
	rows, err := tx.QueryxContext(ctx, rejectQuery, rejectionNote, proposal.ProjectID, proposalID)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: reject siblings %w", err)
	}
	for rows.Next() {
		var sibling RejectedSibling
		if err := rows.StructScan(&sibling); err != nil {
			rows.Close()
			return nil, fmt.Errorf("proposal repository: scan rejected sibling %w", err)
		}
		rejected = append(rejected, sibling)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("proposal repository: rejected rows %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("proposal repository: commit %w", err)
	}

	return &AcceptResult{
		Proposal: &accepted,
		Project:  &project,
		Rejected: rejected,
	}, nil
}

// GetFreelancerStats возвращает агрегаты по предложениям фрилансера.
func (r *ProposalRepository) GetFreelancerStats(ctx context.Context, freelancerID uuid.UUID) (*models.FreelancerProposalStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) AS total
		FROM proposals
		WHERE freelancer_id = $1
	`

	var stats models.FreelancerProposalStats
	if err := r.db.GetContext(ctx, &stats, query, freelancerID); err != nil {
		return nil, fmt.Errorf("proposal repository: get freelancer stats %w", err)
	}

	return &stats, nil
}
