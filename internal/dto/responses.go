package dto

import (
	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-market/internal/models"
)

// AuthResponse represents tokens and the user returned after authentication
type AuthResponse struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	User         *models.PublicUser `json:"user"`
}

// ProposalWithProjectResponse represents a proposal with associated project info
type ProposalWithProjectResponse struct {
	*models.Proposal
	Project *ProjectShortInfo `json:"project"`
}

// ProjectShortInfo represents basic project information
type ProjectShortInfo struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Budget      float64   `json:"budget"`
	Status      string    `json:"status"`
	ClientID    uuid.UUID `json:"client_id"`
}

// PaginatedProjectsResponse represents paginated projects list
type PaginatedProjectsResponse struct {
	Data       []models.Project `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// UpdateProposalStatusResponse represents response after updating proposal status
type UpdateProposalStatusResponse struct {
	Proposal *models.Proposal  `json:"proposal"`
	Project  *ProjectShortInfo `json:"project,omitempty"`
}

// AutoAcceptResponse represents the result of an auto accept evaluation
type AutoAcceptResponse struct {
	Triggered bool             `json:"triggered"`
	Proposal  *models.Proposal `json:"proposal,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// ClientStatsResponse represents aggregated stats for a client dashboard
type ClientStatsResponse struct {
	ActiveProjects    int     `json:"active_projects"`
	CompletedProjects int     `json:"completed_projects"`
	TotalProjects     int     `json:"total_projects"`
	TotalBudget       float64 `json:"total_budget"`
}

// FreelancerStatsResponse represents aggregated stats for a freelancer dashboard
type FreelancerStatsResponse struct {
	ActiveAssignments    int     `json:"active_assignments"`
	CompletedAssignments int     `json:"completed_assignments"`
	PendingProposals     int     `json:"pending_proposals"`
	TotalProposals       int     `json:"total_proposals"`
	TotalEarned          float64 `json:"total_earned"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
