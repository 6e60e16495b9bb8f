package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-market/internal/logger"
	"github.com/ignatzorin/freelance-market/internal/models"
	"github.com/ignatzorin/freelance-market/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-market/internal/repository"
)

// AutoAcceptThreshold — число ожидающих предложений, при котором срабатывает
// автоприём: побеждает минимальная ставка.
const AutoAcceptThreshold = 5

// AutoAcceptProposalStore — доступ политики к предложениям.
type AutoAcceptProposalStore interface {
	ListPendingForSelection(ctx context.Context, projectID uuid.UUID) ([]models.Proposal, error)
}

// AutoAcceptProjectStore — доступ политики к проектам.
type AutoAcceptProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// ProposalAcceptor выполняет фактический наём. Реализуется сервисом
// предложений, связывание идёт через сеттер из-за взаимной зависимости.
type ProposalAcceptor interface {
	Accept(ctx context.Context, proposalID uuid.UUID) (*repository.AcceptResult, error)
}

// AutoAcceptPolicy автоматически принимает предложение с минимальной ставкой,
// когда у открытого проекта накопилось ровно AutoAcceptThreshold ожидающих
// предложений. При равных ставках побеждает более раннее предложение.
type AutoAcceptPolicy struct {
	proposals AutoAcceptProposalStore
	projects  AutoAcceptProjectStore
	acceptor  ProposalAcceptor
}

// NewAutoAcceptPolicy создаёт политику автоприёма.
func NewAutoAcceptPolicy(proposals AutoAcceptProposalStore, projects AutoAcceptProjectStore) *AutoAcceptPolicy {
	return &AutoAcceptPolicy{
		proposals: proposals,
		projects:  projects,
	}
}

// SetAcceptor устанавливает исполнителя найма.
func (p *AutoAcceptPolicy) SetAcceptor(acceptor ProposalAcceptor) {
	p.acceptor = acceptor
}

// Evaluate проверяет условия автоприёма и, если они выполнены, нанимает
// автора предложения с минимальной ставкой. Возвращает принятое предложение
// или nil, если политика не сработала.
//
// Проигрыш гонки с конкурирующим принятием не считается ошибкой: проект уже
// разрешился, и политике нечего делать.
func (p *AutoAcceptPolicy) Evaluate(ctx context.Context, projectID uuid.UUID) (*models.Proposal, error) {
	if p.acceptor == nil {
		return nil, errors.New("auto accept policy: acceptor не установлен")
	}

	project, err := p.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}

	if !project.AutoAcceptEnabled || !project.IsOpen() || project.HasHiredFreelancer() {
		return nil, nil
	}

	pending, err := p.proposals.ListPendingForSelection(ctx, projectID)
	if err != nil {
		return nil, err
	}

	// Порог строгий: политика срабатывает на пятом предложении, а не на
	// каждом следующем после него.
	if len(pending) != AutoAcceptThreshold {
		return nil, nil
	}

	winner := pending[0]

	result, err := p.acceptor.Accept(ctx, winner.ID)
	if err != nil {
		if apperror.IsConflict(err) || errors.Is(err, apperror.ErrProjectNotOpen) || errors.Is(err, apperror.ErrProposalNotPending) {
			logger.Log.WithFields(map[string]interface{}{
				"project_id":  projectID,
				"proposal_id": winner.ID,
			}).Info("auto accept policy: проект уже разрешён конкурирующим принятием")
			return nil, nil
		}
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"project_id":  projectID,
		"proposal_id": result.Proposal.ID,
		"bid_amount":  result.Proposal.BidAmount,
	}).Info("auto accept policy: предложение принято автоматически")

	return result.Proposal, nil
}
