package dto

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest represents the request to register with email and password
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// LoginRequest represents the request to log in with email and password
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// WalletRegisterRequest represents the request to register with a wallet address
type WalletRegisterRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Role          string `json:"role" binding:"required"`
}

// WalletAuthRequest represents the request to authenticate with a wallet address
type WalletAuthRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

// RefreshRequest represents the request to refresh an access token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateProjectRequest represents the request to create a project
type CreateProjectRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Budget      float64  `json:"budget" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Skills      []string `json:"skills"`
	DeadlineAt  *string  `json:"deadline_at"`
	Status      string   `json:"status"`
	Attachments []string `json:"attachment_ids"`
}

// UpdateProjectRequest represents the request to update a project
type UpdateProjectRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Budget      *float64 `json:"budget"`
	Category    *string  `json:"category"`
	Skills      []string `json:"skills"`
	DeadlineAt  *string  `json:"deadline_at"`
	Status      *string  `json:"status"`
	Attachments []string `json:"attachment_ids"`
}

// CancelProjectRequest represents the request to cancel a project
type CancelProjectRequest struct {
	Reason *string `json:"reason"`
}

// AutoAcceptRequest represents the request to toggle auto accept for a project
type AutoAcceptRequest struct {
	Enabled bool `json:"enabled"`
}

// SubmitWorkRequest represents the request to submit completed work
type SubmitWorkRequest struct {
	Deliverables []string `json:"deliverables"`
	Comment      string   `json:"comment"`
}

// EstimatedDuration represents the nested duration estimate of a proposal
type EstimatedDuration struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

// SubmitProposalRequest represents the request to submit a proposal
type SubmitProposalRequest struct {
	ProjectID         string             `json:"project_id" binding:"required"`
	CoverLetter       string             `json:"cover_letter" binding:"required"`
	BidAmount         float64            `json:"bid_amount" binding:"required"`
	EstimatedDuration *EstimatedDuration `json:"estimated_duration"`
}

// UpdateProposalStatusRequest represents the request to update proposal status
type UpdateProposalStatusRequest struct {
	Status      string  `json:"status" binding:"required"`
	ClientNotes *string `json:"client_notes"`
}

// UpdateProfileRequest represents the request to update user profile
type UpdateProfileRequest struct {
	Name             string   `json:"name" binding:"required"`
	Bio              *string  `json:"bio"`
	HourlyRate       *float64 `json:"hourly_rate"`
	Skills           []string `json:"skills"`
	Location         *string  `json:"location"`
	AvailableForHire *bool    `json:"available_for_hire"`
}

// ParseDeadline converts string deadline to time.Time pointer
func (r *CreateProjectRequest) ParseDeadline() (*time.Time, error) {
	return parseDeadline(r.DeadlineAt)
}

// ParseDeadline converts string deadline to time.Time pointer
func (r *UpdateProjectRequest) ParseDeadline() (*time.Time, error) {
	return parseDeadline(r.DeadlineAt)
}

// ParseAttachmentIDs converts string UUIDs to uuid.UUID slice
func (r *CreateProjectRequest) ParseAttachmentIDs() ([]uuid.UUID, error) {
	return parseUUIDSlice(r.Attachments)
}

// ParseAttachmentIDs converts string UUIDs to uuid.UUID slice
func (r *UpdateProjectRequest) ParseAttachmentIDs() ([]uuid.UUID, error) {
	return parseUUIDSlice(r.Attachments)
}

// ParseProjectID converts string project ID to uuid.UUID
func (r *SubmitProposalRequest) ParseProjectID() (uuid.UUID, error) {
	return uuid.Parse(r.ProjectID)
}

// parseDeadline is a helper to parse an RFC3339 deadline string
func parseDeadline(deadlineAt *string) (*time.Time, error) {
	if deadlineAt == nil || *deadlineAt == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *deadlineAt)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseUUIDSlice is a helper to convert string slice to UUID slice
func parseUUIDSlice(strs []string) ([]uuid.UUID, error) {
	if strs == nil {
		return nil, nil
	}

	var uuids []uuid.UUID
	for _, str := range strs {
		if str == "" {
			continue
		}
		parsed, err := uuid.Parse(str)
		if err != nil {
			return nil, err
		}
		uuids = append(uuids, parsed)
	}
	return uuids, nil
}
