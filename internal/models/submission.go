package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ProjectSubmission представляет сдачу работы исполнителем.
// Проект может иметь несколько сдач: клиент вправе запросить доработку,
// и исполнитель сдаёт повторно.
type ProjectSubmission struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	ProjectID    uuid.UUID      `db:"project_id" json:"project_id"`
	FreelancerID uuid.UUID      `db:"freelancer_id" json:"freelancer_id"`
	Deliverables pq.StringArray `db:"deliverables" json:"deliverables"`
	Comment      *string        `db:"comment" json:"comment,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
