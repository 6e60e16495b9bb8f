package models

import "testing"

func TestProjectStatusTransitions(t *testing.T) {
	cases := []struct {
		from    ProjectStatus
		to      ProjectStatus
		allowed bool
	}{
		{ProjectStatusDraft, ProjectStatusOpen, true},
		{ProjectStatusDraft, ProjectStatusCancelled, true},
		{ProjectStatusDraft, ProjectStatusInProgress, false},
		{ProjectStatusDraft, ProjectStatusCompleted, false},

		{ProjectStatusOpen, ProjectStatusInProgress, true},
		{ProjectStatusOpen, ProjectStatusCancelled, true},
		{ProjectStatusOpen, ProjectStatusCompleted, false},
		{ProjectStatusOpen, ProjectStatusDraft, false},

		{ProjectStatusInProgress, ProjectStatusCompleted, true},
		{ProjectStatusInProgress, ProjectStatusUnderReview, true},
		{ProjectStatusInProgress, ProjectStatusDisputed, true},
		{ProjectStatusInProgress, ProjectStatusCancelled, true},
		{ProjectStatusInProgress, ProjectStatusOpen, false},

		{ProjectStatusUnderReview, ProjectStatusCompleted, true},
		{ProjectStatusUnderReview, ProjectStatusInProgress, true},
		{ProjectStatusUnderReview, ProjectStatusDisputed, true},
		{ProjectStatusUnderReview, ProjectStatusCancelled, false},

		{ProjectStatusDisputed, ProjectStatusCancelled, true},
		{ProjectStatusDisputed, ProjectStatusCompleted, true},
		{ProjectStatusDisputed, ProjectStatusInProgress, false},

		// Конечные статусы
		{ProjectStatusCompleted, ProjectStatusOpen, false},
		{ProjectStatusCompleted, ProjectStatusInProgress, false},
		{ProjectStatusCancelled, ProjectStatusOpen, false},
		{ProjectStatusCancelled, ProjectStatusDraft, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: ожидалось %v, получили %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestProjectStatusIsTerminal(t *testing.T) {
	terminal := map[ProjectStatus]bool{
		ProjectStatusDraft:       false,
		ProjectStatusOpen:        false,
		ProjectStatusInProgress:  false,
		ProjectStatusUnderReview: false,
		ProjectStatusCompleted:   true,
		ProjectStatusCancelled:   true,
		ProjectStatusDisputed:    false,
	}
	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s: IsTerminal = %v, ожидалось %v", status, got, want)
		}
	}
}

func TestProjectStatusIsValid(t *testing.T) {
	for _, status := range []ProjectStatus{
		ProjectStatusDraft, ProjectStatusOpen, ProjectStatusInProgress,
		ProjectStatusUnderReview, ProjectStatusCompleted, ProjectStatusCancelled,
		ProjectStatusDisputed,
	} {
		if !status.IsValid() {
			t.Errorf("%s: статус должен быть валиден", status)
		}
	}
	if ProjectStatus("archived").IsValid() {
		t.Error("archived: неизвестный статус прошёл проверку")
	}
}

func TestProposalStatus(t *testing.T) {
	if !ProposalStatusPending.IsValid() || ProposalStatusPending.IsTerminal() {
		t.Error("pending: должен быть валиден и не терминален")
	}
	if !ProposalStatusAccepted.IsTerminal() || !ProposalStatusRejected.IsTerminal() {
		t.Error("accepted и rejected должны быть терминальны")
	}
	if ProposalStatus("withdrawn").IsValid() {
		t.Error("withdrawn: неизвестный статус прошёл проверку")
	}
}
