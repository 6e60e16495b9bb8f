package models

// ProjectStatus статус жизненного цикла проекта.
type ProjectStatus string

const (
	ProjectStatusDraft       ProjectStatus = "draft"
	ProjectStatusOpen        ProjectStatus = "open"
	ProjectStatusInProgress  ProjectStatus = "in_progress"
	ProjectStatusUnderReview ProjectStatus = "under_review"
	ProjectStatusCompleted   ProjectStatus = "completed"
	ProjectStatusCancelled   ProjectStatus = "cancelled"
	ProjectStatusDisputed    ProjectStatus = "disputed"
)

// IsValid проверяет, что статус известен.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusOpen, ProjectStatusInProgress,
		ProjectStatusUnderReview, ProjectStatusCompleted, ProjectStatusCancelled,
		ProjectStatusDisputed:
		return true
	}
	return false
}

// IsTerminal сообщает, является ли статус конечным для обычного потока.
func (s ProjectStatus) IsTerminal() bool {
	return s == ProjectStatusCompleted || s == ProjectStatusCancelled
}

// projectTransitions — таблица допустимых переходов статусов.
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectStatusDraft:       {ProjectStatusOpen, ProjectStatusCancelled},
	ProjectStatusOpen:        {ProjectStatusInProgress, ProjectStatusCancelled},
	ProjectStatusInProgress:  {ProjectStatusCompleted, ProjectStatusUnderReview, ProjectStatusDisputed, ProjectStatusCancelled},
	ProjectStatusUnderReview: {ProjectStatusCompleted, ProjectStatusInProgress, ProjectStatusDisputed},
	ProjectStatusCompleted:   {},
	ProjectStatusCancelled:   {},
	ProjectStatusDisputed:    {ProjectStatusCancelled, ProjectStatusCompleted},
}

// CanTransitionTo проверяет допустимость перехода в новый статус.
func (s ProjectStatus) CanTransitionTo(next ProjectStatus) bool {
	for _, allowed := range projectTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ProposalStatus статус предложения фрилансера.
type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
)

// IsValid проверяет, что статус известен.
func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalStatusPending, ProposalStatusAccepted, ProposalStatusRejected:
		return true
	}
	return false
}

// IsTerminal сообщает, закрыто ли предложение для изменений.
func (s ProposalStatus) IsTerminal() bool {
	return s == ProposalStatusAccepted || s == ProposalStatusRejected
}

// Роли пользователей.
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
	RoleAdmin      = "admin"
)

// ValidRoles список допустимых ролей.
var ValidRoles = map[string]struct{}{
	RoleClient:     {},
	RoleFreelancer: {},
	RoleAdmin:      {},
}

// Единицы оценки срока выполнения в предложении.
const (
	DurationUnitHours  = "hours"
	DurationUnitDays   = "days"
	DurationUnitWeeks  = "weeks"
	DurationUnitMonths = "months"
)

// ValidDurationUnits список допустимых единиц срока.
var ValidDurationUnits = map[string]struct{}{
	DurationUnitHours:  {},
	DurationUnitDays:   {},
	DurationUnitWeeks:  {},
	DurationUnitMonths: {},
}

// RejectedByAcceptanceNote — пометка, которую получают конкурирующие
// предложения при найме другого исполнителя.
const RejectedByAcceptanceNote = "Another freelancer was selected for this project"
