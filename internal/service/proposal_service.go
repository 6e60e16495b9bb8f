package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-market/internal/logger"
	"github.com/ignatzorin/freelance-market/internal/models"
	"github.com/ignatzorin/freelance-market/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-market/internal/repository"
	"github.com/ignatzorin/freelance-market/internal/validation"
)

// ProposalStore описывает взаимодействие сервиса с хранилищем предложений.
type ProposalStore interface {
	Create(ctx context.Context, proposal *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Proposal, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error)
	Reject(ctx context.Context, id uuid.UUID, clientNotes *string) (*models.Proposal, error)
	Accept(ctx context.Context, proposalID uuid.UUID, rejectionNote string) (*repository.AcceptResult, error)
	GetFreelancerStats(ctx context.Context, freelancerID uuid.UUID) (*models.FreelancerProposalStats, error)
}

// ProposalProjectStore — доступ сервиса предложений к проектам.
type ProposalProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// ProposalUserStore — доступ сервиса предложений к пользователям.
type ProposalUserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AutoAcceptEvaluator запускает политику автоприёма после нового предложения.
type AutoAcceptEvaluator interface {
	Evaluate(ctx context.Context, projectID uuid.UUID) (*models.Proposal, error)
}

// ProposalService содержит бизнес-логику предложений: подача, решение клиента
// и координация атомарного найма.
type ProposalService struct {
	proposals  ProposalStore
	projects   ProposalProjectStore
	users      ProposalUserStore
	notifier   ProjectNotifier
	autoAccept AutoAcceptEvaluator
}

// NewProposalService создаёт новый сервис предложений.
func NewProposalService(proposals ProposalStore, projects ProposalProjectStore, users ProposalUserStore, notifier ProjectNotifier) *ProposalService {
	return &ProposalService{
		proposals: proposals,
		projects:  projects,
		users:     users,
		notifier:  notifier,
	}
}

// SetAutoAccept устанавливает политику автоприёма. Сервис и политика
// ссылаются друг на друга, поэтому связывание идёт через сеттер.
func (s *ProposalService) SetAutoAccept(policy AutoAcceptEvaluator) {
	s.autoAccept = policy
}

// SubmitProposalInput описывает входные данные подачи предложения.
type SubmitProposalInput struct {
	ProjectID     uuid.UUID
	FreelancerID  uuid.UUID
	CoverLetter   string
	BidAmount     float64
	DurationValue *int
	DurationUnit  string
}

// Submit подаёт предложение фрилансера на открытый проект.
func (s *ProposalService) Submit(ctx context.Context, in SubmitProposalInput) (*models.Proposal, error) {
	freelancer, err := s.users.GetByID(ctx, in.FreelancerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	if !freelancer.CanSubmitProposals() {
		return nil, apperror.ErrUserNotAuthorized
	}

	if err := validation.ValidateProposalCoverLetter(in.CoverLetter); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateBidAmount(in.BidAmount); err != nil {
		return nil, apperror.ErrInvalidBid
	}
	if in.DurationValue != nil {
		if err := validation.ValidateDuration(*in.DurationValue, in.DurationUnit); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}

	if project.IsOwnedBy(in.FreelancerID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "нельзя откликаться на собственный проект")
	}
	if project.HasHiredFreelancer() {
		return nil, apperror.ErrAlreadyHired
	}
	if !project.IsOpen() {
		return nil, apperror.ErrProjectNotOpen
	}

	durationUnit := in.DurationUnit
	if durationUnit == "" {
		durationUnit = models.DurationUnitDays
	}

	proposal := &models.Proposal{
		ProjectID:     in.ProjectID,
		FreelancerID:  in.FreelancerID,
		CoverLetter:   strings.TrimSpace(in.CoverLetter),
		BidAmount:     in.BidAmount,
		DurationValue: in.DurationValue,
		DurationUnit:  durationUnit,
		Status:        models.ProposalStatusPending,
	}

	if err := s.proposals.Create(ctx, proposal); err != nil {
		if errors.Is(err, repository.ErrProposalDuplicate) {
			return nil, apperror.ErrDuplicateProposal
		}
		return nil, err
	}

	s.notifier.Notify(ctx, project.ClientID, "proposal.received", map[string]interface{}{
		"project_id":  project.ID,
		"proposal_id": proposal.ID,
		"bid_amount":  proposal.BidAmount,
	})

	// Политика автоприёма оценивается после каждой подачи. Её сбой не
	// отменяет уже созданное предложение.
	if project.AutoAcceptEnabled && s.autoAccept != nil {
		if _, err := s.autoAccept.Evaluate(ctx, project.ID); err != nil {
			logger.Log.WithFields(map[string]interface{}{
				"project_id": project.ID,
				"error":      err.Error(),
			}).Error("proposal service: ошибка политики автоприёма")
		}
	}

	return proposal, nil
}

// ListMy возвращает предложения фрилансера вместе с краткой информацией о
// проектах.
func (s *ProposalService) ListMy(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, map[uuid.UUID]*models.Project, error) {
	proposals, err := s.proposals.ListByFreelancer(ctx, freelancerID)
	if err != nil {
		return nil, nil, err
	}

	projects := make(map[uuid.UUID]*models.Project, len(proposals))
	for _, proposal := range proposals {
		if _, ok := projects[proposal.ProjectID]; ok {
			continue
		}
		project, err := s.projects.GetByID(ctx, proposal.ProjectID)
		if err != nil {
			if errors.Is(err, repository.ErrProjectNotFound) {
				continue
			}
			return nil, nil, err
		}
		projects[proposal.ProjectID] = project
	}

	return proposals, projects, nil
}

// ListByProject возвращает предложения по проекту. Доступно владельцу
// и администратору.
func (s *ProposalService) ListByProject(ctx context.Context, projectID, actorID uuid.UUID) ([]models.Proposal, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}

	if err := s.authorizeProjectManager(ctx, project, actorID); err != nil {
		return nil, err
	}

	return s.proposals.ListByProject(ctx, projectID)
}

// authorizeProjectManager пропускает владельца проекта и администратора,
// остальным возвращает ErrNotProjectOwner.
func (s *ProposalService) authorizeProjectManager(ctx context.Context, project *models.Project, actorID uuid.UUID) error {
	if project.IsOwnedBy(actorID) {
		return nil
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrNotProjectOwner
		}
		return err
	}
	if !actor.IsAdmin() {
		return apperror.ErrNotProjectOwner
	}

	return nil
}

// UpdateStatusInput описывает решение клиента по предложению.
type UpdateStatusInput struct {
	ProposalID  uuid.UUID
	ActorID     uuid.UUID
	Status      models.ProposalStatus
	ClientNotes *string
}

// UpdateStatus принимает или отклоняет предложение от имени владельца проекта.
func (s *ProposalService) UpdateStatus(ctx context.Context, in UpdateStatusInput) (*repository.AcceptResult, *models.Proposal, error) {
	proposal, err := s.proposals.GetByID(ctx, in.ProposalID)
	if err != nil {
		if errors.Is(err, repository.ErrProposalNotFound) {
			return nil, nil, apperror.ErrProposalNotFound
		}
		return nil, nil, err
	}

	project, err := s.projects.GetByID(ctx, proposal.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, nil, apperror.ErrProjectNotFound
		}
		return nil, nil, err
	}

	if err := s.authorizeProjectManager(ctx, project, in.ActorID); err != nil {
		return nil, nil, err
	}

	// Быстрый отказ по уже рассмотренному предложению; гонки закрывает
	// повторная проверка статуса внутри транзакции.
	if !proposal.IsPending() {
		return nil, nil, apperror.ErrProposalNotPending
	}

	switch in.Status {
	case models.ProposalStatusAccepted:
		result, err := s.accept(ctx, in.ProposalID)
		if err != nil {
			return nil, nil, err
		}
		return result, result.Proposal, nil

	case models.ProposalStatusRejected:
		if err := validation.ValidateClientNotes(in.ClientNotes); err != nil {
			return nil, nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}

		rejected, err := s.proposals.Reject(ctx, in.ProposalID, in.ClientNotes)
		if err != nil {
			if errors.Is(err, repository.ErrProposalNotPending) {
				return nil, nil, apperror.ErrProposalNotPending
			}
			return nil, nil, err
		}

		s.notifier.Notify(ctx, rejected.FreelancerID, "proposal.rejected", map[string]interface{}{
			"project_id":  rejected.ProjectID,
			"proposal_id": rejected.ID,
		})

		return nil, rejected, nil

	default:
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "статус предложения должен быть accepted или rejected")
	}
}

// Accept принимает предложение от имени системы. Используется политикой
// автоприёма; проверка владельца здесь не выполняется.
func (s *ProposalService) Accept(ctx context.Context, proposalID uuid.UUID) (*repository.AcceptResult, error) {
	return s.accept(ctx, proposalID)
}

// EvaluateAutoAccept запускает политику автоприёма по запросу владельца,
// например после включения флага на проекте с уже накопленными предложениями.
// Возвращает принятое предложение или nil, если условия не выполнены.
func (s *ProposalService) EvaluateAutoAccept(ctx context.Context, projectID, actorID uuid.UUID) (*models.Proposal, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}

	if err := s.authorizeProjectManager(ctx, project, actorID); err != nil {
		return nil, err
	}

	if s.autoAccept == nil {
		return nil, nil
	}

	return s.autoAccept.Evaluate(ctx, projectID)
}

// GetFreelancerStats возвращает агрегаты по предложениям фрилансера.
func (s *ProposalService) GetFreelancerStats(ctx context.Context, freelancerID uuid.UUID) (*models.FreelancerProposalStats, error) {
	return s.proposals.GetFreelancerStats(ctx, freelancerID)
}

// accept выполняет атомарный наём и рассылает уведомления участникам.
func (s *ProposalService) accept(ctx context.Context, proposalID uuid.UUID) (*repository.AcceptResult, error) {
	result, err := s.proposals.Accept(ctx, proposalID, models.RejectedByAcceptanceNote)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProposalNotFound):
			return nil, apperror.ErrProposalNotFound
		case errors.Is(err, repository.ErrProjectNotFound):
			return nil, apperror.ErrProjectNotFound
		case errors.Is(err, repository.ErrProposalNotPending):
			return nil, apperror.ErrProposalNotPending
		case errors.Is(err, repository.ErrProjectAlreadyHired):
			return nil, apperror.ErrAlreadyHired
		case errors.Is(err, repository.ErrProjectNotOpen):
			return nil, apperror.ErrProjectNotOpen
		default:
			return nil, err
		}
	}

	s.notifier.Notify(ctx, result.Proposal.FreelancerID, "proposal.accepted", map[string]interface{}{
		"project_id":  result.Project.ID,
		"proposal_id": result.Proposal.ID,
		"title":       result.Project.Title,
	})

	for _, sibling := range result.Rejected {
		s.notifier.Notify(ctx, sibling.FreelancerID, "proposal.rejected", map[string]interface{}{
			"project_id":  result.Project.ID,
			"proposal_id": sibling.ProposalID,
			"reason":      models.RejectedByAcceptanceNote,
		})
	}

	return result, nil
}
