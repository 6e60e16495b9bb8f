package service

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-market/internal/logger"
	"github.com/ignatzorin/freelance-market/internal/models"
	"github.com/ignatzorin/freelance-market/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-market/internal/repository"
)

func TestMain(m *testing.M) {
	logger.Init("error")
	os.Exit(m.Run())
}

// memProjectStore хранит проекты в памяти.
type memProjectStore struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*models.Project
}

func newMemProjectStore() *memProjectStore {
	return &memProjectStore{projects: make(map[uuid.UUID]*models.Project)}
}

func (s *memProjectStore) add(project *models.Project) *models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	s.projects[project.ID] = project
	return project
}

func (s *memProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[id]
	if !ok {
		return nil, repository.ErrProjectNotFound
	}
	copied := *project
	return &copied, nil
}

// memUserStore хранит пользователей в памяти.
type memUserStore struct {
	users map[uuid.UUID]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *memUserStore) add(role string) *models.User {
	user := &models.User{ID: uuid.New(), Name: "user", Role: role}
	s.users[user.ID] = user
	return user
}

func (s *memUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

// memProposalStore воспроизводит поведение репозитория предложений,
// включая атомарный наём.
type memProposalStore struct {
	mu        sync.Mutex
	projects  *memProjectStore
	proposals map[uuid.UUID]*models.Proposal
	clock     time.Time
}

func newMemProposalStore(projects *memProjectStore) *memProposalStore {
	return &memProposalStore{
		projects:  projects,
		proposals: make(map[uuid.UUID]*models.Proposal),
		clock:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memProposalStore) Create(ctx context.Context, proposal *models.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.proposals {
		if existing.ProjectID == proposal.ProjectID && existing.FreelancerID == proposal.FreelancerID {
			return repository.ErrProposalDuplicate
		}
	}
	proposal.ID = uuid.New()
	s.clock = s.clock.Add(time.Second)
	proposal.CreatedAt = s.clock
	proposal.UpdatedAt = s.clock
	copied := *proposal
	s.proposals[proposal.ID] = &copied
	return nil
}

func (s *memProposalStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proposal, ok := s.proposals[id]
	if !ok {
		return nil, repository.ErrProposalNotFound
	}
	copied := *proposal
	return &copied, nil
}

func (s *memProposalStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Proposal
	for _, p := range s.proposals {
		if p.ProjectID == projectID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memProposalStore) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Proposal
	for _, p := range s.proposals {
		if p.FreelancerID == freelancerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memProposalStore) ListPendingForSelection(ctx context.Context, projectID uuid.UUID) ([]models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Proposal
	for _, p := range s.proposals {
		if p.ProjectID == projectID && p.Status == models.ProposalStatusPending {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BidAmount != out[j].BidAmount {
			return out[i].BidAmount < out[j].BidAmount
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *memProposalStore) Reject(ctx context.Context, id uuid.UUID, clientNotes *string) (*models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proposal, ok := s.proposals[id]
	if !ok || proposal.Status != models.ProposalStatusPending {
		return nil, repository.ErrProposalNotPending
	}
	proposal.Status = models.ProposalStatusRejected
	proposal.ClientNotes = clientNotes
	copied := *proposal
	return &copied, nil
}

func (s *memProposalStore) Accept(ctx context.Context, proposalID uuid.UUID, rejectionNote string) (*repository.AcceptResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	proposal, ok := s.proposals[proposalID]
	if !ok {
		return nil, repository.ErrProposalNotFound
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, repository.ErrProposalNotPending
	}

	s.projects.mu.Lock()
	project, ok := s.projects.projects[proposal.ProjectID]
	if !ok {
		s.projects.mu.Unlock()
		return nil, repository.ErrProjectNotFound
	}
	if project.HiredFreelancerID != nil {
		s.projects.mu.Unlock()
		return nil, repository.ErrProjectAlreadyHired
	}
	if project.Status != models.ProjectStatusOpen {
		s.projects.mu.Unlock()
		return nil, repository.ErrProjectNotOpen
	}

	freelancerID := proposal.FreelancerID
	project.HiredFreelancerID = &freelancerID
	project.Status = models.ProjectStatusInProgress
	projectCopy := *project
	s.projects.mu.Unlock()

	proposal.Status = models.ProposalStatusAccepted
	proposalCopy := *proposal

	var rejected []repository.RejectedSibling
	for _, sibling := range s.proposals {
		if sibling.ProjectID == proposal.ProjectID && sibling.ID != proposalID && sibling.Status == models.ProposalStatusPending {
			sibling.Status = models.ProposalStatusRejected
			note := rejectionNote
			sibling.ClientNotes = &note
			rejected = append(rejected, repository.RejectedSibling{
				ProposalID:   sibling.ID,
				FreelancerID: sibling.FreelancerID,
			})
		}
	}

	return &repository.AcceptResult{
		Proposal: &proposalCopy,
		Project:  &projectCopy,
		Rejected: rejected,
	}, nil
}

func (s *memProposalStore) GetFreelancerStats(ctx context.Context, freelancerID uuid.UUID) (*models.FreelancerProposalStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &models.FreelancerProposalStats{}
	for _, p := range s.proposals {
		if p.FreelancerID != freelancerID {
			continue
		}
		stats.Total++
		if p.Status == models.ProposalStatusPending {
			stats.Pending++
		}
	}
	return stats, nil
}

// notifyEvent фиксирует отправленное уведомление.
type notifyEvent struct {
	UserID uuid.UUID
	Event  string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifyEvent
}

func (n *recordingNotifier) Notify(ctx context.Context, userID uuid.UUID, event string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifyEvent{UserID: userID, Event: event})
}

func (n *recordingNotifier) countFor(userID uuid.UUID, event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, e := range n.events {
		if e.UserID == userID && e.Event == event {
			count++
		}
	}
	return count
}

// proposalFixture собирает сервис предложений на in-memory хранилищах.
type proposalFixture struct {
	projects  *memProjectStore
	proposals *memProposalStore
	users     *memUserStore
	notifier  *recordingNotifier
	service   *ProposalService
}

func newProposalFixture() *proposalFixture {
	projects := newMemProjectStore()
	proposals := newMemProposalStore(projects)
	users := newMemUserStore()
	notifier := &recordingNotifier{}
	svc := NewProposalService(proposals, projects, users, notifier)
	return &proposalFixture{
		projects:  projects,
		proposals: proposals,
		users:     users,
		notifier:  notifier,
		service:   svc,
	}
}

func (f *proposalFixture) openProject(clientID uuid.UUID, autoAccept bool) *models.Project {
	return f.projects.add(&models.Project{
		ClientID:          clientID,
		Title:             "Разработка API",
		Description:       "Нужен REST API для маркетплейса",
		Budget:            1000,
		Category:          "backend",
		Status:            models.ProjectStatusOpen,
		AutoAcceptEnabled: autoAccept,
	})
}

const validCoverLetter = "Готов выполнить работу качественно и в срок."

func TestProposalService_Submit(t *testing.T) {
	f := newProposalFixture()
	client := f.users.add(models.RoleClient)
	freelancer := f.users.add(models.RoleFreelancer)
	project := f.openProject(client.ID, false)

	proposal, err := f.service.Submit(context.Background(), SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: freelancer.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    500,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusPending, proposal.Status)
	assert.NotEqual(t, uuid.Nil, proposal.ID)

	// Единица срока по умолчанию - дни
	assert.Equal(t, models.DurationUnitDays, proposal.DurationUnit)

	// Клиент получает уведомление о новом предложении
	assert.Equal(t, 1, f.notifier.countFor(client.ID, "proposal.received"))
}

func TestProposalService_Submit_Duplicate(t *testing.T) {
	f := newProposalFixture()
	client := f.users.add(models.RoleClient)
	freelancer := f.users.add(models.RoleFreelancer)
	project := f.openProject(client.ID, false)

	in := SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: freelancer.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    500,
	}
	_, err := f.service.Submit(context.Background(), in)
	require.NoError(t, err)

	in.BidAmount = 400
	_, err = f.service.Submit(context.Background(), in)
	assert.ErrorIs(t, err, apperror.ErrDuplicateProposal)
}

func TestProposalService_Submit_OwnProject(t *testing.T) {
	f := newProposalFixture()
	client := f.users.add(models.RoleAdmin)
	project := f.openProject(client.ID, false)

	_, err := f.service.Submit(context.Background(), SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: client.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    500,
	})
	assert.True(t, apperror.IsForbidden(err), "ожидался запрет отклика на собственный проект, получили %v", err)
}

func TestProposalService_Submit_ClientRole(t *testing.T) {
	f := newProposalFixture()
	owner := f.users.add(models.RoleClient)
	otherClient := f.users.add(models.RoleClient)
	project := f.openProject(owner.ID, false)

	_, err := f.service.Submit(context.Background(), SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: otherClient.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    500,
	})
	assert.ErrorIs(t, err, apperror.ErrUserNotAuthorized)
}

func TestProposalService_Submit_ProjectNotOpen(t *testing.T) {
	f := newProposalFixture()
	client := f.users.add(models.RoleClient)
	freelancer := f.users.add(models.RoleFreelancer)

	project := f.projects.add(&models.Project{
		ClientID: client.ID,
		Title:    "Закрытый проект",
		Status:   models.ProjectStatusCancelled,
	})

	_, err := f.service.Submit(context.Background(), SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: freelancer.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    500,
	})
	assert.ErrorIs(t, err, apperror.ErrProjectNotOpen)
}

func TestProposalService_Submit_AlreadyHired(t *testing.T) {
	f := newProposalFixture()
	client := f.users.add(models.RoleClient)
	freelancer := f.users.add(models.RoleFreelancer)
	hired := f.users.add(models.RoleFreelancer)

	project := f.openProject(client.ID, false)
	project.HiredFreelancerID = &hired.ID
	project.Status = models.ProjectStatusInProgress

	_, err := f.service.Submit(context.Background(), SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: freelancer.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    500,
	})
	assert.ErrorIs(t, err, apperror.ErrAlreadyHired)
}

func TestProposalService_Submit_InvalidBid(t *testing.T) {
	f := newProposalFixture()
	client := f.users.add(models.RoleClient)
	freelancer := f.users.add(models.RoleFreelancer)
	project := f.openProject(client.ID, false)

	_, err := f.service.Submit(context.Background(), SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: freelancer.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    0,
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidBid)
}

func TestProposalService_UpdateStatus_NotOwner(t *testing.T) {
	f := newProposalFixture()
	client := f.users.add(models.RoleClient)
	stranger := f.users.add(models.RoleClient)
	freelancer := f.users.add(models.RoleFreelancer)
	project := f.openProject(client.ID, false)

	proposal, err := f.service.Submit(context.Background(), SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: freelancer.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    500,
	})
	require.NoError(t, err)

	_, _, err = f.service.UpdateStatus(context.Background(), UpdateStatusInput{
		ProposalID: proposal.ID,
		ActorID:    stranger.ID,
		Status:     models.ProposalStatusAccepted,
	})
	assert.ErrorIs(t, err, apperror.ErrNotProjectOwner)
}

func TestProposalService_UpdateStatus_Reject(t *testing.T) {
	f := newProposalFixture()
	client := f.users.add(models.RoleClient)
	freelancer := f.users.add(models.RoleFreelancer)
	project := f.openProject(client.ID, false)

	proposal, err := f.service.Submit(context.Background(), SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: freelancer.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    500,
	})
	require.NoError(t, err)

	notes := "Слишком высокая ставка"
	_, rejected, err := f.service.UpdateStatus(context.Background(), UpdateStatusInput{
		ProposalID:  proposal.ID,
		ActorID:     client.ID,
		Status:      models.ProposalStatusRejected,
		ClientNotes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusRejected, rejected.Status)
	require.NotNil(t, rejected.ClientNotes)
	assert.Equal(t, notes, *rejected.ClientNotes)
	assert.Equal(t, 1, f.notifier.countFor(freelancer.ID, "proposal.rejected"))
}

func TestProposalService_UpdateStatus_UnknownStatus(t *testing.T) {
	f := newProposalFixture()
	client := f.users.add(models.RoleClient)
	freelancer := f.users.add(models.RoleFreelancer)
	project := f.openProject(client.ID, false)

	proposal, err := f.service.Submit(context.Background(), SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: freelancer.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    500,
	})
	require.NoError(t, err)

	_, _, err = f.service.UpdateStatus(context.Background(), UpdateStatusInput{
		ProposalID: proposal.ID,
		ActorID:    client.ID,
		Status:     models.ProposalStatusPending,
	})
	assert.True(t, apperror.IsValidation(err), "ожидалась ошибка валидации, получили %v", err)
}

func TestProposalService_Accept_RejectsSiblings(t *testing.T) {
	f := newProposalFixture()
	client := f.users.add(models.RoleClient)
	project := f.openProject(client.ID, false)

	var proposals []*models.Proposal
	var freelancers []*models.User
	for i := 0; i < 3; i++ {
		freelancer := f.users.add(models.RoleFreelancer)
		freelancers = append(freelancers, freelancer)
		proposal, err := f.service.Submit(context.Background(), SubmitProposalInput{
			ProjectID:    project.ID,
			FreelancerID: freelancer.ID,
			CoverLetter:  validCoverLetter,
			BidAmount:    float64(100 * (i + 1)),
		})
		require.NoError(t, err)
		proposals = append(proposals, proposal)
	}

	result, accepted, err := f.service.UpdateStatus(context.Background(), UpdateStatusInput{
		ProposalID: proposals[1].ID,
		ActorID:    client.ID,
		Status:     models.ProposalStatusAccepted,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, models.ProposalStatusAccepted, accepted.Status)

	// Проект перешёл в работу с выбранным исполнителем
	assert.Equal(t, models.ProjectStatusInProgress, result.Project.Status)
	require.NotNil(t, result.Project.HiredFreelancerID)
	assert.Equal(t, freelancers[1].ID, *result.Project.HiredFreelancerID)

	// Конкуренты отклонены с пометкой о выборе другого исполнителя
	assert.Len(t, result.Rejected, 2)
	for i, p := range proposals {
		if i == 1 {
			continue
		}
		stored, err := f.proposals.GetByID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ProposalStatusRejected, stored.Status)
		require.NotNil(t, stored.ClientNotes)
		assert.Equal(t, models.RejectedByAcceptanceNote, *stored.ClientNotes)
	}

	assert.Equal(t, 1, f.notifier.countFor(freelancers[1].ID, "proposal.accepted"))
	assert.Equal(t, 1, f.notifier.countFor(freelancers[0].ID, "proposal.rejected"))
	assert.Equal(t, 1, f.notifier.countFor(freelancers[2].ID, "proposal.rejected"))
}

func TestProposalService_Accept_NotPending(t *testing.T) {
	f := newProposalFixture()
	client := f.users.add(models.RoleClient)
	first := f.users.add(models.RoleFreelancer)
	second := f.users.add(models.RoleFreelancer)
	project := f.openProject(client.ID, false)

	firstProposal, err := f.service.Submit(context.Background(), SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: first.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    300,
	})
	require.NoError(t, err)

	secondProposal, err := f.service.Submit(context.Background(), SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: second.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    400,
	})
	require.NoError(t, err)

	_, _, err = f.service.UpdateStatus(context.Background(), UpdateStatusInput{
		ProposalID: firstProposal.ID,
		ActorID:    client.ID,
		Status:     models.ProposalStatusAccepted,
	})
	require.NoError(t, err)

	// Второе предложение уже отклонено наймом первого
	_, _, err = f.service.UpdateStatus(context.Background(), UpdateStatusInput{
		ProposalID: secondProposal.ID,
		ActorID:    client.ID,
		Status:     models.ProposalStatusAccepted,
	})
	assert.ErrorIs(t, err, apperror.ErrProposalNotPending)
}

func TestProposalService_UpdateStatus_ConcurrentAccepts(t *testing.T) {
	f := newProposalFixture()
	client := f.users.add(models.RoleClient)
	project := f.openProject(client.ID, false)

	var proposals []*models.Proposal
	for i := 0; i < 5; i++ {
		freelancer := f.users.add(models.RoleFreelancer)
		proposal, err := f.service.Submit(context.Background(), SubmitProposalInput{
			ProjectID:    project.ID,
			FreelancerID: freelancer.ID,
			CoverLetter:  validCoverLetter,
			BidAmount:    float64(100 * (i + 1)),
		})
		require.NoError(t, err)
		proposals = append(proposals, proposal)
	}

	// Клиент принимает все предложения одновременно: нанят должен быть
	// ровно один исполнитель
	errs := make([]error, len(proposals))
	var wg sync.WaitGroup
	for i, proposal := range proposals {
		wg.Add(1)
		go func(i int, proposalID uuid.UUID) {
			defer wg.Done()
			_, _, errs[i] = f.service.UpdateStatus(context.Background(), UpdateStatusInput{
				ProposalID: proposalID,
				ActorID:    client.ID,
				Status:     models.ProposalStatusAccepted,
			})
		}(i, proposal.ID)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		losing := errors.Is(err, apperror.ErrProposalNotPending) ||
			errors.Is(err, apperror.ErrAlreadyHired) ||
			errors.Is(err, apperror.ErrProjectNotOpen)
		assert.True(t, losing, "неожиданная ошибка проигравшего: %v", err)
	}
	assert.Equal(t, 1, winners)

	stored, err := f.projects.GetByID(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusInProgress, stored.Status)
	require.NotNil(t, stored.HiredFreelancerID)

	accepted := 0
	for _, p := range proposals {
		latest, err := f.proposals.GetByID(context.Background(), p.ID)
		require.NoError(t, err)
		if latest.Status == models.ProposalStatusAccepted {
			accepted++
			assert.Equal(t, latest.FreelancerID, *stored.HiredFreelancerID)
		}
	}
	assert.Equal(t, 1, accepted)
}

func TestProposalService_Submit_AfterRejection(t *testing.T) {
	f := newProposalFixture()
	client := f.users.add(models.RoleClient)
	first := f.users.add(models.RoleFreelancer)
	second := f.users.add(models.RoleFreelancer)
	project := f.openProject(client.ID, false)

	proposal, err := f.service.Submit(context.Background(), SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: first.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    500,
	})
	require.NoError(t, err)

	notes := "Не подходит по срокам"
	_, _, err = f.service.UpdateStatus(context.Background(), UpdateStatusInput{
		ProposalID:  proposal.ID,
		ActorID:     client.ID,
		Status:      models.ProposalStatusRejected,
		ClientNotes: &notes,
	})
	require.NoError(t, err)

	// Отклонённое предложение не освобождает слот: повторная подача
	// тем же фрилансером остаётся дубликатом
	_, err = f.service.Submit(context.Background(), SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: first.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    400,
	})
	assert.ErrorIs(t, err, apperror.ErrDuplicateProposal)

	// Другие фрилансеры продолжают откликаться свободно
	_, err = f.service.Submit(context.Background(), SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: second.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    450,
	})
	assert.NoError(t, err)
}

func TestProposalService_UpdateStatus_AdminActs(t *testing.T) {
	f := newProposalFixture()
	client := f.users.add(models.RoleClient)
	freelancer := f.users.add(models.RoleFreelancer)
	admin := f.users.add(models.RoleAdmin)
	project := f.openProject(client.ID, false)

	proposal, err := f.service.Submit(context.Background(), SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: freelancer.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    500,
	})
	require.NoError(t, err)

	result, accepted, err := f.service.UpdateStatus(context.Background(), UpdateStatusInput{
		ProposalID: proposal.ID,
		ActorID:    admin.ID,
		Status:     models.ProposalStatusAccepted,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, models.ProposalStatusAccepted, accepted.Status)
}

func TestProposalService_ListMy(t *testing.T) {
	f := newProposalFixture()
	client := f.users.add(models.RoleClient)
	freelancer := f.users.add(models.RoleFreelancer)
	project := f.openProject(client.ID, false)

	_, err := f.service.Submit(context.Background(), SubmitProposalInput{
		ProjectID:    project.ID,
		FreelancerID: freelancer.ID,
		CoverLetter:  validCoverLetter,
		BidAmount:    500,
	})
	require.NoError(t, err)

	proposals, projects, err := f.service.ListMy(context.Background(), freelancer.ID)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	require.Contains(t, projects, project.ID)
	assert.Equal(t, project.Title, projects[project.ID].Title)
}

func TestProposalService_ListByProject_OwnerOnly(t *testing.T) {
	f := newProposalFixture()
	client := f.users.add(models.RoleClient)
	stranger := f.users.add(models.RoleClient)
	project := f.openProject(client.ID, false)

	_, err := f.service.ListByProject(context.Background(), project.ID, stranger.ID)
	assert.ErrorIs(t, err, apperror.ErrNotProjectOwner)

	_, err = f.service.ListByProject(context.Background(), project.ID, client.ID)
	assert.NoError(t, err)

	// Администратор видит предложения любого проекта
	admin := f.users.add(models.RoleAdmin)
	_, err = f.service.ListByProject(context.Background(), project.ID, admin.ID)
	assert.NoError(t, err)
}
