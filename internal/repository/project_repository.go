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

// Ошибки уровня репозитория проектов.
var (
	ErrProjectNotFound = errors.New("project not found")
	// ErrProjectStateChanged возвращается, когда условное обновление статуса не
	// затронуло ни одной строки: состояние проекта успело измениться.
	ErrProjectStateChanged = errors.New("project state changed")
)

const projectColumns = `id, client_id, title, description, budget, deadline_at, category, skills, status,
	hired_freelancer_id, auto_accept_enabled, cancellation_reason, completed_at, cancelled_at, created_at, updated_at`

// ProjectRepository отвечает за работу с проектами и их вложениями.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository создаёт новый экземпляр.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create сохраняет проект и связанные вложения в одной транзакции.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project, attachmentIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("project repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO projects (client_id, title, description, budget, deadline_at, category, skills, status, auto_accept_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	if err = tx.QueryRowxContext(
		ctx,
		query,
		project.ClientID,
		project.Title,
		project.Description,
		project.Budget,
		project.DeadlineAt,
		project.Category,
		pq.Array(project.Skills),
		project.Status,
		project.AutoAcceptEnabled,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt); err != nil {
		return fmt.Errorf("project repository: insert project %w", err)
	}

	if err = insertAttachmentsTx(ctx, tx, project.ID, attachmentIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("project repository: commit %w", err)
	}

	return nil
}

// insertAttachmentsTx пакетно добавляет вложения проекта внутри транзакции.
func insertAttachmentsTx(ctx context.Context, tx *sqlx.Tx, projectID uuid.UUID, attachmentIDs []uuid.UUID) error {
	if len(attachmentIDs) == 0 {
		return nil
	}

	query := `INSERT INTO project_attachments (project_id, media_id) VALUES `
	values := make([]interface{}, 0, len(attachmentIDs)*2)

	for i, mediaID := range attachmentIDs {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2)
		values = append(values, projectID, mediaID)
	}
	query += " ON CONFLICT DO NOTHING"

	if _, err := tx.ExecContext(ctx, query, values...); err != nil {
		return fmt.Errorf("project repository: batch insert attachments %w", err)
	}

	return nil
}

// GetByID возвращает проект по идентификатору.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("project repository: get by id %w", err)
	}
	return &project, nil
}

// GetByIDWithAttachments возвращает проект вместе с вложениями.
func (r *ProjectRepository) GetByIDWithAttachments(ctx context.Context, id uuid.UUID) (*models.Project, []models.MediaAttachment, error) {
	project, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	attachments, err := r.ListAttachments(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return project, attachments, nil
}

// Update изменяет редактируемые поля проекта и его вложения.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project, attachmentIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("project repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		UPDATE projects
		SET title = $1,
		    description = $2,
		    budget = $3,
		    deadline_at = $4,
		    category = $5,
		    skills = $6,
		    status = $7,
		    updated_at = NOW()
		WHERE id = $8 AND client_id = $9
		RETURNING updated_at
	`

	err = tx.QueryRowxContext(
		ctx,
		query,
		project.Title,
		project.Description,
		project.Budget,
		project.DeadlineAt,
		project.Category,
		pq.Array(project.Skills),
		project.Status,
		project.ID,
		project.ClientID,
	).Scan(&project.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("project repository: update project %w", err)
	}

	if attachmentIDs != nil {
		if _, err = tx.ExecContext(ctx, `DELETE FROM project_attachments WHERE project_id = $1`, project.ID); err != nil {
			return fmt.Errorf("project repository: clear attachments %w", err)
		}

		if err = insertAttachmentsTx(ctx, tx, project.ID, attachmentIDs); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("project repository: commit %w", err)
	}

	return nil
}

// ListFilterParams содержит параметры фильтрации и поиска проектов.
type ListFilterParams struct {
	Status    string
	Search    string
	Category  string
	Skills    []string
	BudgetMin *float64
	BudgetMax *float64
	SortBy    string // "date", "budget", "proposals"
	SortOrder string // "asc", "desc"
	Limit     int
	Offset    int
}

// ListResult содержит список проектов и метаданные пагинации.
type ListResult struct {
	Projects []models.Project
	Total    int
	Limit    int
	Offset   int
	HasMore  bool
}

// List возвращает список проектов с пагинацией, фильтрацией и поиском.
// Проекты, где исполнитель уже выбран, не попадают в выдачу.
func (r *ProjectRepository) List(ctx context.Context, params ListFilterParams) (*ListResult, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM projects p
		WHERE p.hired_freelancer_id IS NULL
	`

	query := `
		SELECT p.*,
			COALESCE(proposal_counts.count, 0) AS proposals_count
		FROM projects p
		LEFT JOIN (
			SELECT project_id, COUNT(*) AS count
			FROM proposals
			GROUP BY project_id
		) proposal_counts ON p.id = proposal_counts.project_id
		WHERE p.hired_freelancer_id IS NULL
	`
	args := []interface{}{}
	argIndex := 1

	// Фильтр по статусу; по умолчанию показываем только открытые проекты
	status := params.Status
	if status == "" {
		status = string(models.ProjectStatusOpen)
	}
	clause := fmt.Sprintf(" AND p.status = $%d", argIndex)
	query += clause
	countQuery += clause
	args = append(args, status)
	argIndex++

	// Поиск по тексту
	if params.Search != "" {
		clause := fmt.Sprintf(" AND (p.title ILIKE $%d OR p.description ILIKE $%d)", argIndex, argIndex)
		query += clause
		countQuery += clause
		args = append(args, "%"+params.Search+"%")
		argIndex++
	}

	// Фильтр по категории
	if params.Category != "" {
		clause := fmt.Sprintf(" AND p.category = $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, params.Category)
		argIndex++
	}

	// Фильтр по навыкам (пересечение массивов)
	if len(params.Skills) > 0 {
		clause := fmt.Sprintf(" AND p.skills && $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, pq.Array(params.Skills))
		argIndex++
	}

	// Фильтр по бюджету
	if params.BudgetMin != nil {
		clause := fmt.Sprintf(" AND p.budget >= $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, *params.BudgetMin)
		argIndex++
	}
	if params.BudgetMax != nil {
		clause := fmt.Sprintf(" AND p.budget <= $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, *params.BudgetMax)
		argIndex++
	}

	// Сортировка
	sortBy := params.SortBy
	if sortBy == "" {
		sortBy = "date"
	}
	sortOrder := "DESC"
	if params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	switch sortBy {
	case "budget":
		query += fmt.Sprintf(" ORDER BY p.budget %s", sortOrder)
	case "proposals":
		query += fmt.Sprintf(" ORDER BY COALESCE(proposal_counts.count, 0) %s", sortOrder)
	default: // "date"
		query += fmt.Sprintf(" ORDER BY p.created_at %s", sortOrder)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("project repository: count %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	query += fmt.Sprintf(" LIMIT $%d", argIndex)
	args = append(args, limit)
	argIndex++
	query += fmt.Sprintf(" OFFSET $%d", argIndex)
	args = append(args, offset)

	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("project repository: list %w", err)
	}

	return &ListResult{
		Projects: projects,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
		HasMore:  offset+limit < total,
	}, nil
}

// ListByClient возвращает все проекты клиента с количеством предложений.
func (r *ProjectRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Project, error) {
	query := `
		SELECT p.*,
			COALESCE(proposal_counts.count, 0) AS proposals_count
		FROM projects p
		LEFT JOIN (
			SELECT project_id, COUNT(*) AS count
			FROM proposals
			GROUP BY project_id
		) proposal_counts ON p.id = proposal_counts.project_id
		WHERE p.client_id = $1
		ORDER BY p.created_at DESC
	`

	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, query, clientID); err != nil {
		return nil, fmt.Errorf("project repository: list by client %w", err)
	}

	return projects, nil
}

// ListByHiredFreelancer возвращает проекты, где фрилансер выбран исполнителем.
func (r *ProjectRepository) ListByHiredFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE hired_freelancer_id = $1
		ORDER BY created_at DESC
	`

	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, query, freelancerID); err != nil {
		return nil, fmt.Errorf("project repository: list by hired freelancer %w", err)
	}

	return projects, nil
}

// UpdateStatus условно переводит проект из from в to. Если за это время
// статус проекта изменился, возвращает ErrProjectStateChanged.
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ProjectStatus) error {
	query := `
		UPDATE projects
		SET status = $1,
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END,
		    updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("project repository: update status %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("project repository: update status rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrProjectStateChanged
	}

	return nil
}

// Cancel условно переводит проект в cancelled с указанием причины.
func (r *ProjectRepository) Cancel(ctx context.Context, id uuid.UUID, from models.ProjectStatus, reason *string) error {
	query := `
		UPDATE projects
		SET status = 'cancelled',
		    cancellation_reason = $1,
		    cancelled_at = NOW(),
		    updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, reason, id, from)
	if err != nil {
		return fmt.Errorf("project repository: cancel %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("project repository: cancel rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrProjectStateChanged
	}

	return nil
}

// SetAutoAccept включает или выключает автоприём предложений для проекта.
func (r *ProjectRepository) SetAutoAccept(ctx context.Context, id uuid.UUID, clientID uuid.UUID, enabled bool) error {
	query := `
		UPDATE projects
		SET auto_accept_enabled = $1, updated_at = NOW()
		WHERE id = $2 AND client_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, enabled, id, clientID)
	if err != nil {
		return fmt.Errorf("project repository: set auto accept %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("project repository: set auto accept rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// Delete удаляет проект клиента.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID, clientID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1 AND client_id = $2`, id, clientID)
	if err != nil {
		return fmt.Errorf("project repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("project repository: delete rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// ListAttachments возвращает вложения проекта вместе с данными о файлах.
func (r *ProjectRepository) ListAttachments(ctx context.Context, projectID uuid.UUID) ([]models.MediaAttachment, error) {
	query := `
		SELECT
			pa.project_id,
			pa.media_id,
			pa.created_at,
			mf.id,
			mf.user_id,
			mf.file_path,
			mf.file_type,
			mf.file_size,
			mf.is_public,
			mf.created_at
		FROM project_attachments pa
		JOIN media_files mf ON mf.id = pa.media_id
		WHERE pa.project_id = $1
		ORDER BY pa.created_at
	`

	rows, err := r.db.QueryxContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("project repository: list attachments %w", err)
	}
	defer rows.Close()

	var attachments []models.MediaAttachment

	for rows.Next() {
		var attachment models.MediaAttachment
		var media models.MediaFile
		var mediaUserID *uuid.UUID

		if err := rows.Scan(
			&attachment.ProjectID,
			&attachment.MediaID,
			&attachment.CreatedAt,
			&media.ID,
			&mediaUserID,
			&media.FilePath,
			&media.FileType,
			&media.FileSize,
			&media.IsPublic,
			&media.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("project repository: scan attachment %w", err)
		}

		media.UserID = mediaUserID
		attachment.Media = &media
		attachments = append(attachments, attachment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("project repository: attachments rows %w", err)
	}

	return attachments, nil
}

// GetClientStats возвращает агрегаты по проектам клиента.
func (r *ProjectRepository) GetClientStats(ctx context.Context, clientID uuid.UUID) (*models.ClientProjectStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('open', 'in_progress', 'under_review')) AS active,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COUNT(*) AS total,
			COALESCE(SUM(budget), 0) AS total_budget
		FROM projects
		WHERE client_id = $1
	`

	var stats models.ClientProjectStats
	if err := r.db.GetContext(ctx, &stats, query, clientID); err != nil {
		return nil, fmt.Errorf("project repository: get client stats %w", err)
	}

	return &stats, nil
}

// GetFreelancerStats возвращает агрегаты по назначениям фрилансера.
func (r *ProjectRepository) GetFreelancerStats(ctx context.Context, freelancerID uuid.UUID) (*models.FreelancerAssignmentStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('in_progress', 'under_review')) AS active,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COALESCE(SUM(budget) FILTER (WHERE status = 'completed'), 0) AS total_earned
		FROM projects
		WHERE hired_freelancer_id = $1
	`

	var stats models.FreelancerAssignmentStats
	if err := r.db.GetContext(ctx, &stats, query, freelancerID); err != nil {
		return nil, fmt.Errorf("project repository: get freelancer stats %w", err)
	}

	return &stats, nil
}
