package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Project описывает размещённый клиентом проект.
//
// Инвариант: HiredFreelancerID заполнен тогда и только тогда, когда проект
// находится в статусе in_progress или дальше по цепочке (completed).
type Project struct {
	ID                 uuid.UUID      `db:"id" json:"id"`
	ClientID           uuid.UUID      `db:"client_id" json:"client_id"`
	Title              string         `db:"title" json:"title"`
	Description        string         `db:"description" json:"description"`
	Budget             float64        `db:"budget" json:"budget"`
	DeadlineAt         *time.Time     `db:"deadline_at" json:"deadline_at,omitempty"`
	Category           string         `db:"category" json:"category"`
	Skills             pq.StringArray `db:"skills" json:"skills"`
	Status             ProjectStatus  `db:"status" json:"status"`
	HiredFreelancerID  *uuid.UUID     `db:"hired_freelancer_id" json:"hired_freelancer_id,omitempty"`
	AutoAcceptEnabled  bool           `db:"auto_accept_enabled" json:"auto_accept_enabled"`
	CancellationReason *string        `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CompletedAt        *time.Time     `db:"completed_at" json:"completed_at,omitempty"`
	CancelledAt        *time.Time     `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`

	Client          *PublicUser       `json:"client,omitempty"`
	HiredFreelancer *PublicUser       `json:"hired_freelancer,omitempty"`
	Attachments     []MediaAttachment `json:"attachments,omitempty"`
	ProposalsCount  *int              `db:"proposals_count" json:"proposals_count,omitempty"`
}

// IsOwnedBy проверяет владельца проекта.
func (p *Project) IsOwnedBy(userID uuid.UUID) bool {
	return p.ClientID == userID
}

// IsOpen сообщает, принимает ли проект предложения.
func (p *Project) IsOpen() bool {
	return p.Status == ProjectStatusOpen
}

// HasHiredFreelancer сообщает, нанят ли исполнитель.
func (p *Project) HasHiredFreelancer() bool {
	return p.HiredFreelancerID != nil
}

// ClientProjectStats агрегаты по проектам клиента для дашборда.
type ClientProjectStats struct {
	Active      int     `db:"active" json:"active"`
	Completed   int     `db:"completed" json:"completed"`
	Total       int     `db:"total" json:"total"`
	TotalBudget float64 `db:"total_budget" json:"total_budget"`
}

// FreelancerAssignmentStats агрегаты по назначениям фрилансера.
type FreelancerAssignmentStats struct {
	Active      int     `db:"active" json:"active"`
	Completed   int     `db:"completed" json:"completed"`
	TotalEarned float64 `db:"total_earned" json:"total_earned"`
}
