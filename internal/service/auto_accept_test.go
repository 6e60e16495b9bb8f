package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-market/internal/models"
	"github.com/ignatzorin/freelance-market/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-market/internal/repository"
)

// errAcceptor всегда возвращает заданную ошибку вместо найма.
type errAcceptor struct {
	err error
}

func (a *errAcceptor) Accept(ctx context.Context, proposalID uuid.UUID) (*repository.AcceptResult, error) {
	return nil, a.err
}

// autoAcceptFixture — сервис предложений и политика, связанные как в main.
type autoAcceptFixture struct {
	*proposalFixture
	policy *AutoAcceptPolicy
}

func newAutoAcceptFixture() *autoAcceptFixture {
	f := newProposalFixture()
	policy := NewAutoAcceptPolicy(f.proposals, f.projects)
	policy.SetAcceptor(f.service)
	f.service.SetAutoAccept(policy)
	return &autoAcceptFixture{proposalFixture: f, policy: policy}
}

// submitBids подаёт по одному предложению от новых фрилансеров с заданными
// ставками и возвращает их в порядке подачи.
func (f *autoAcceptFixture) submitBids(t *testing.T, projectID uuid.UUID, bids ...float64) []*models.Proposal {
	t.Helper()
	var out []*models.Proposal
	for _, bid := range bids {
		freelancer := f.users.add(models.RoleFreelancer)
		proposal, err := f.service.Submit(context.Background(), SubmitProposalInput{
			ProjectID:    projectID,
			FreelancerID: freelancer.ID,
			CoverLetter:  validCoverLetter,
			BidAmount:    bid,
		})
		require.NoError(t, err)
		out = append(out, proposal)
	}
	return out
}

func TestAutoAccept_FiresOnThresholdWithLowestBid(t *testing.T) {
	f := newAutoAcceptFixture()
	client := f.users.add(models.RoleClient)
	project := f.openProject(client.ID, true)

	proposals := f.submitBids(t, project.ID, 80, 95, 60, 100, 75)

	// Пятая подача запустила политику: победила минимальная ставка
	winner, err := f.proposals.GetByID(context.Background(), proposals[2].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusAccepted, winner.Status)

	updated, err := f.projects.GetByID(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusInProgress, updated.Status)
	require.NotNil(t, updated.HiredFreelancerID)
	assert.Equal(t, proposals[2].FreelancerID, *updated.HiredFreelancerID)

	// Остальные отклонены
	for i, p := range proposals {
		if i == 2 {
			continue
		}
		stored, err := f.proposals.GetByID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ProposalStatusRejected, stored.Status)
	}
}

func TestAutoAccept_NotBeforeThreshold(t *testing.T) {
	f := newAutoAcceptFixture()
	client := f.users.add(models.RoleClient)
	project := f.openProject(client.ID, true)

	proposals := f.submitBids(t, project.ID, 80, 95, 60, 100)

	for _, p := range proposals {
		stored, err := f.proposals.GetByID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ProposalStatusPending, stored.Status)
	}

	updated, err := f.projects.GetByID(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusOpen, updated.Status)
	assert.Nil(t, updated.HiredFreelancerID)
}

func TestAutoAccept_StrictThreshold(t *testing.T) {
	f := newAutoAcceptFixture()
	client := f.users.add(models.RoleClient)
	project := f.openProject(client.ID, true)

	// Шесть ожидающих предложений при отключённой политике
	project.AutoAcceptEnabled = false
	f.submitBids(t, project.ID, 80, 95, 60, 100, 75, 50)
	project.AutoAcceptEnabled = true

	// Шесть — не пять: политика молчит
	accepted, err := f.policy.Evaluate(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Nil(t, accepted)

	updated, err := f.projects.GetByID(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusOpen, updated.Status)
}

func TestAutoAccept_DisabledProject(t *testing.T) {
	f := newAutoAcceptFixture()
	client := f.users.add(models.RoleClient)
	project := f.openProject(client.ID, false)

	proposals := f.submitBids(t, project.ID, 80, 95, 60, 100, 75)

	for _, p := range proposals {
		stored, err := f.proposals.GetByID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ProposalStatusPending, stored.Status)
	}

	// Прямой вызов политики тоже не срабатывает
	accepted, err := f.policy.Evaluate(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Nil(t, accepted)
}

func TestAutoAccept_ResolvedProject(t *testing.T) {
	f := newAutoAcceptFixture()
	client := f.users.add(models.RoleClient)
	hired := f.users.add(models.RoleFreelancer)
	project := f.openProject(client.ID, true)
	project.Status = models.ProjectStatusInProgress
	project.HiredFreelancerID = &hired.ID

	accepted, err := f.policy.Evaluate(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Nil(t, accepted)
}

func TestAutoAccept_TieBreakEarliest(t *testing.T) {
	f := newAutoAcceptFixture()
	client := f.users.add(models.RoleClient)
	project := f.openProject(client.ID, true)

	// Две минимальные ставки: побеждает поданная раньше
	proposals := f.submitBids(t, project.ID, 60, 90, 60, 100, 75)

	winner, err := f.proposals.GetByID(context.Background(), proposals[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusAccepted, winner.Status)

	loser, err := f.proposals.GetByID(context.Background(), proposals[2].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusRejected, loser.Status)
}

func TestAutoAccept_RaceLossIsSwallowed(t *testing.T) {
	f := newAutoAcceptFixture()
	client := f.users.add(models.RoleClient)
	project := f.openProject(client.ID, true)

	// Отключаем политику на время наполнения, затем включаем
	project.AutoAcceptEnabled = false
	f.submitBids(t, project.ID, 80, 95, 60, 100, 75)
	project.AutoAcceptEnabled = true

	for _, raceErr := range []error{
		apperror.ErrAlreadyHired,
		apperror.ErrProjectNotOpen,
		apperror.ErrProposalNotPending,
	} {
		t.Run(raceErr.Error(), func(t *testing.T) {
			f.policy.SetAcceptor(&errAcceptor{err: raceErr})
			accepted, err := f.policy.Evaluate(context.Background(), project.ID)
			assert.NoError(t, err)
			assert.Nil(t, accepted)
		})
	}
}

func TestAutoAccept_UnexpectedErrorPropagates(t *testing.T) {
	f := newAutoAcceptFixture()
	client := f.users.add(models.RoleClient)
	project := f.openProject(client.ID, true)

	project.AutoAcceptEnabled = false
	f.submitBids(t, project.ID, 80, 95, 60, 100, 75)
	project.AutoAcceptEnabled = true

	failure := fmt.Errorf("обрыв соединения с базой")
	f.policy.SetAcceptor(&errAcceptor{err: failure})

	_, err := f.policy.Evaluate(context.Background(), project.ID)
	assert.ErrorIs(t, err, failure)
}

func TestProposalService_EvaluateAutoAccept(t *testing.T) {
	f := newAutoAcceptFixture()
	client := f.users.add(models.RoleClient)
	stranger := f.users.add(models.RoleClient)
	project := f.openProject(client.ID, false)

	// Пять предложений накопились до включения автоприёма
	proposals := f.submitBids(t, project.ID, 80, 95, 60, 100, 75)
	project.AutoAcceptEnabled = true

	_, err := f.service.EvaluateAutoAccept(context.Background(), project.ID, stranger.ID)
	assert.ErrorIs(t, err, apperror.ErrNotProjectOwner)

	accepted, err := f.service.EvaluateAutoAccept(context.Background(), project.ID, client.ID)
	require.NoError(t, err)
	require.NotNil(t, accepted)
	assert.Equal(t, proposals[2].ID, accepted.ID)

	// Повторный запуск после разрешения — no-op
	again, err := f.service.EvaluateAutoAccept(context.Background(), project.ID, client.ID)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestAutoAccept_ProjectNotFound(t *testing.T) {
	f := newAutoAcceptFixture()

	_, err := f.policy.Evaluate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrProjectNotFound)
}
