package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal представляет отклик фрилансера на проект.
//
// Инварианты:
//   - пара (ProjectID, FreelancerID) уникальна — один отклик на проект;
//   - у проекта не бывает двух предложений в статусе accepted.
type Proposal struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	ProjectID     uuid.UUID      `db:"project_id" json:"project_id"`
	FreelancerID  uuid.UUID      `db:"freelancer_id" json:"freelancer_id"`
	CoverLetter   string         `db:"cover_letter" json:"cover_letter"`
	BidAmount     float64        `db:"bid_amount" json:"bid_amount"`
	DurationValue *int           `db:"duration_value" json:"duration_value,omitempty"`
	DurationUnit  string         `db:"duration_unit" json:"duration_unit"`
	Status        ProposalStatus `db:"status" json:"status"`
	ClientNotes   *string        `db:"client_notes" json:"client_notes,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`

	Freelancer *PublicUser `json:"freelancer,omitempty"`
}

// IsPending сообщает, ожидает ли предложение решения клиента.
func (p *Proposal) IsPending() bool {
	return p.Status == ProposalStatusPending
}

// FreelancerProposalStats агрегаты по предложениям фрилансера.
type FreelancerProposalStats struct {
	Pending int `db:"pending" json:"pending"`
	Total   int `db:"total" json:"total"`
}
