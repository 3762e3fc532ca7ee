package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

var (
	verifiedDocs = &model.CaseOutcome{Decision: valueobject.DecisionApproved, DecidedAt: &reviewTime}
	verifiedKYC  = &model.CaseOutcome{Decision: valueobject.DecisionApproved, DecidedAt: &reviewTime}
)

func sanctionFor(t *testing.T, principal int64) model.Sanction {
	t.Helper()
	return openSanction(t, model.SubmittedApplication{ID: "app-7", LoanRequest: principalOf(principal)}, verifiedDocs, verifiedKYC)
}

func TestOpenSanction(t *testing.T) {
	s := sanctionFor(t, 500_000)
	assert.Equal(t, "app-7", s.ApplicationID())
	assert.True(t, s.Status().Equal(valueobject.SanctionAwaitingManager))
	assert.Equal(t, "500000", s.Principal().String())
	assert.Equal(t, 1, s.Version())
	assert.Empty(t, s.DomainEvents())
	assert.Nil(t, s.ApprovedAt())

	pending := &model.CaseOutcome{Decision: valueobject.DecisionPending}
	app := model.SubmittedApplication{ID: "app-7", LoanRequest: principalOf(500_000)}
	for name, outcomes := range map[string][2]*model.CaseOutcome{
		"kyc pending":    {verifiedDocs, pending},
		"documents open": {pending, verifiedKYC},
		"nothing opened": {nil, nil},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := model.OpenSanction(app, outcomes[0], outcomes[1], reviewTime)
			assert.ErrorIs(t, err, valueobject.ErrApprovalPreconditionUnmet)
		})
	}
}

func TestSanction_ManagerDecide(t *testing.T) {
	decidedAt := reviewTime.Add(time.Hour)

	tests := []struct {
		name       string
		principal  int64
		approve    bool
		wantStatus valueobject.SanctionStatus
	}{
		{"within limit is final", 900_000, true, valueobject.SanctionApproved},
		{"exactly at the limit is final", 1_500_000, true, valueobject.SanctionApproved},
		{"above the limit goes to an admin", 1_500_001, true, valueobject.SanctionAwaitingAdmin},
		{"declined", 900_000, false, valueobject.SanctionRejected},
		{"declined above the limit", 2_000_000, false, valueobject.SanctionRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := sanctionFor(t, tt.principal)
			s, err := before.ManagerDecide("mgr-1", tt.approve, "checked", decidedAt)
			require.NoError(t, err)

			assert.True(t, s.Status().Equal(tt.wantStatus), "got %s", s.Status())
			assert.Equal(t, "mgr-1", s.ManagerID())
			assert.Equal(t, decidedAt, *s.ManagerDecidedAt())
			assert.Equal(t, "checked", s.Notes())
			assert.Equal(t, 2, s.Version())
			assert.True(t, before.Status().Equal(valueobject.SanctionAwaitingManager), "original is unchanged")

			require.Len(t, s.DomainEvents(), 1)
			assert.Equal(t, "lending.sanction.decided", s.DomainEvents()[0].EventType())
			assert.Equal(t, "app-7", s.DomainEvents()[0].AggregateID())
		})
	}

	t.Run("needs an approver", func(t *testing.T) {
		_, err := sanctionFor(t, 900_000).ManagerDecide("", true, "", decidedAt)
		assert.ErrorIs(t, err, valueobject.ErrInvalidValue)
	})

	t.Run("only once", func(t *testing.T) {
		s, err := sanctionFor(t, 900_000).ManagerDecide("mgr-1", true, "", decidedAt)
		require.NoError(t, err)
		_, err = s.ManagerDecide("mgr-2", false, "", decidedAt)
		assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
	})
}

func TestSanction_AdminDecide(t *testing.T) {
	managerAt := reviewTime.Add(time.Hour)
	adminAt := reviewTime.Add(2 * time.Hour)

	referred := func(t *testing.T) model.Sanction {
		t.Helper()
		s, err := sanctionFor(t, 2_500_000).ManagerDecide("mgr-1", true, "looks fine", managerAt)
		require.NoError(t, err)
		return s.ClearEvents()
	}

	t.Run("approves a referred sanction", func(t *testing.T) {
		s, err := referred(t).AdminDecide("adm-1", true, "", adminAt)
		require.NoError(t, err)

		assert.True(t, s.Status().Equal(valueobject.SanctionApproved))
		assert.Equal(t, "adm-1", s.AdminID())
		assert.Equal(t, "looks fine", s.Notes(), "empty admin notes keep the manager's")
		assert.Equal(t, adminAt, *s.ApprovedAt())
		require.Len(t, s.DomainEvents(), 1)
		assert.Equal(t, "lending.sanction.decided", s.DomainEvents()[0].EventType())
	})

	t.Run("rejects a referred sanction", func(t *testing.T) {
		s, err := referred(t).AdminDecide("adm-1", false, "exposure too high", adminAt)
		require.NoError(t, err)
		assert.True(t, s.Status().Equal(valueobject.SanctionRejected))
		assert.Equal(t, "exposure too high", s.Notes())
		assert.Nil(t, s.ApprovedAt())
	})

	t.Run("within the manager's limit", func(t *testing.T) {
		s, err := sanctionFor(t, 1_500_000).ManagerDecide("mgr-1", true, "", managerAt)
		require.NoError(t, err)
		_, err = s.AdminDecide("adm-1", true, "", adminAt)
		assert.ErrorIs(t, err, valueobject.ErrAdminApprovalNotRequired)
	})

	t.Run("before the manager", func(t *testing.T) {
		_, err := sanctionFor(t, 2_500_000).AdminDecide("adm-1", true, "", adminAt)
		assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
	})

	t.Run("needs an approver", func(t *testing.T) {
		_, err := referred(t).AdminDecide("", true, "", adminAt)
		assert.ErrorIs(t, err, valueobject.ErrInvalidValue)
	})
}

func TestSanction_LetterAndDisbursement(t *testing.T) {
	at := reviewTime.Add(time.Hour)
	s, err := sanctionFor(t, 900_000).ManagerDecide("mgr-1", true, "", at)
	require.NoError(t, err)
	assert.Equal(t, at, *s.ApprovedAt())
	s = s.ClearEvents()

	_, err = s.MarkSignedReceived(at)
	assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition, "letter must go out first")
	_, err = s.Disburse(at)
	assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)

	s, err = s.SendLetter(at)
	require.NoError(t, err)
	assert.True(t, s.Status().Equal(valueobject.SanctionLetterSent))
	assert.Equal(t, at, *s.LetterSentAt())

	s, err = s.MarkSignedReceived(at)
	require.NoError(t, err)
	assert.True(t, s.Status().Equal(valueobject.SanctionSignedReceived))
	assert.Equal(t, at, *s.SignedReceivedAt())

	s, err = s.Disburse(at)
	require.NoError(t, err)
	assert.True(t, s.Status().Equal(valueobject.SanctionDisbursed))
	assert.Equal(t, at, *s.DisbursedAt())
	assert.True(t, s.Status().Reached(valueobject.SanctionApproved))

	types := make([]string, 0, len(s.DomainEvents()))
	for _, e := range s.DomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{"lending.sanction.advanced", "lending.sanction.advanced"}, types)

	_, err = s.SendLetter(at)
	assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
}

func TestSanction_RejectedCannotAdvance(t *testing.T) {
	s, err := sanctionFor(t, 900_000).ManagerDecide("mgr-1", false, "", reviewTime)
	require.NoError(t, err)
	_, err = s.SendLetter(reviewTime)
	assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
	assert.False(t, s.Status().Reached(valueobject.SanctionApproved))
}

func TestNewSanctionStatus(t *testing.T) {
	for _, raw := range []string{"awaiting-manager", "awaiting-admin", "approved", "rejected", "letter-sent", "signed-received", "disbursed"} {
		st, err := valueobject.NewSanctionStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, st.String())
	}
	_, err := valueobject.NewSanctionStatus("sanctioned")
	assert.ErrorIs(t, err, valueobject.ErrInvalidValue)
}
