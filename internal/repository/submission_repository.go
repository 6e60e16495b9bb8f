package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/freelance-market/internal/models"
)

// SubmissionRepository отвечает за сдачи работ по проектам.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository создаёт экземпляр репозитория.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create сохраняет новую сдачу работы.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.ProjectSubmission) error {
	query := `
		INSERT INTO project_submissions (project_id, freelancer_id, deliverables, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		submission.ProjectID,
		submission.FreelancerID,
		pq.Array(submission.Deliverables),
		submission.Comment,
	).Scan(&submission.ID, &submission.CreatedAt); err != nil {
		return fmt.Errorf("submission repository: create %w", err)
	}

	return nil
}

// ListByProject возвращает сдачи по проекту, новые первыми.
func (r *SubmissionRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectSubmission, error) {
	query := `
		SELECT * FROM project_submissions
		WHERE project_id = $1
		ORDER BY created_at DESC
	`

	var submissions []models.ProjectSubmission
	if err := r.db.SelectContext(ctx, &submissions, query, projectID); err != nil {
		return nil, fmt.Errorf("submission repository: list by project %w", err)
	}

	return submissions, nil
}
