package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/application/usecase"
	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

func TestDisburseLoan_Execute(t *testing.T) {
	t.Run("signed sanction becomes an active loan", func(t *testing.T) {
		f := newReviewFixture()
		f.verifyApplication(t)
		f.managerDecides(t, true)
		f.advanceSanction(t, dto.SanctionActionSendLetter, dto.SanctionActionSignedReceived)
		f.publisher.publishedEvents = nil

		resp, err := f.disburse.Execute(context.Background(), dto.DisburseLoanRequest{ApplicationID: "app-1"})
		require.NoError(t, err)

		assert.Equal(t, "disbursed", resp.Sanction.Status)
		loan := resp.Loan
		assert.NotEmpty(t, loan.ID)
		assert.Equal(t, "app-1", loan.ApplicationID)
		assert.Equal(t, "home", loan.LoanType)
		assert.Equal(t, "active", loan.Status)
		assert.Equal(t, 240, loan.RemainingTenure)
		assert.True(t, loan.OutstandingBalance.Equal(decimal.NewFromInt(900_000)))
		require.Len(t, loan.Schedule, 240)
		require.NotNil(t, loan.NextPaymentDue)
		assert.Equal(t, loan.Schedule[0].DueDate, *loan.NextPaymentDue)
		assert.Empty(t, loan.Payments)

		assert.Equal(t, []string{"lending.loan.disbursed"}, f.publisher.types())
		assert.Equal(t, []string{"home"}, f.metrics.disbursed)

		track, err := f.track.Execute(context.Background(), dto.TrackApplicationRequest{ApplicationID: "app-1"})
		require.NoError(t, err)
		assert.Equal(t, 6, track.LastCompletedIndex)
	})

	t.Run("repeating returns the same loan", func(t *testing.T) {
		f := newReviewFixture()
		first := f.disbursed(t)

		again, err := f.disburse.Execute(context.Background(), dto.DisburseLoanRequest{ApplicationID: "app-1"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.Loan.ID)
		assert.Len(t, f.loans.loans, 1)
		assert.Len(t, f.metrics.disbursed, 1)
	})

	t.Run("retry after sanction save failure reuses the loan", func(t *testing.T) {
		f := newReviewFixture()
		f.verifyApplication(t)
		f.managerDecides(t, true)
		f.advanceSanction(t, dto.SanctionActionSendLetter, dto.SanctionActionSignedReceived)

		f.sanctions.saveFunc = func(context.Context, model.Sanction) error { return valueobject.ErrVersionConflict }
		_, err := f.disburse.Execute(context.Background(), dto.DisburseLoanRequest{ApplicationID: "app-1"})
		assert.ErrorContains(t, err, "save sanction")
		require.Len(t, f.loans.loans, 1)

		f.sanctions.saveFunc = nil
		resp, err := f.disburse.Execute(context.Background(), dto.DisburseLoanRequest{ApplicationID: "app-1"})
		require.NoError(t, err)
		assert.Len(t, f.loans.loans, 1)
		_, ok := f.loans.loans[resp.Loan.ID]
		assert.True(t, ok)
	})

	t.Run("unsigned sanction", func(t *testing.T) {
		f := newReviewFixture()
		f.verifyApplication(t)
		f.managerDecides(t, true)

		_, err := f.disburse.Execute(context.Background(), dto.DisburseLoanRequest{ApplicationID: "app-1"})
		assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
		assert.Empty(t, f.loans.loans)
	})

	t.Run("no sanction", func(t *testing.T) {
		f := newReviewFixture()
		_, err := f.disburse.Execute(context.Background(), dto.DisburseLoanRequest{ApplicationID: "app-1"})
		assert.ErrorIs(t, err, valueobject.ErrNotFound)
	})
}

func TestMakePayment_Execute(t *testing.T) {
	t.Run("pays the installment due", func(t *testing.T) {
		f := newReviewFixture()
		loan := f.disbursed(t)
		f.publisher.publishedEvents = nil

		resp, err := f.pay.Execute(context.Background(), dto.MakePaymentRequest{LoanID: loan.ID})
		require.NoError(t, err)

		assert.Equal(t, 1, resp.Payment.Sequence)
		assert.True(t, resp.Payment.Amount.Equal(loan.Schedule[0].Total))
		assert.Equal(t, 239, resp.Loan.RemainingTenure)
		assert.True(t, resp.Loan.OutstandingBalance.Equal(loan.Schedule[0].RemainingBalance))
		assert.Equal(t, loan.Schedule[1].DueDate, *resp.Loan.NextPaymentDue)
		assert.Equal(t, []string{"lending.loan.payment_received"}, f.publisher.types())
		assert.Equal(t, []string{"home"}, f.metrics.payments)
	})

	t.Run("explicit amount must match", func(t *testing.T) {
		f := newReviewFixture()
		loan := f.disbursed(t)

		short := loan.Schedule[0].Total.Sub(decimal.NewFromInt(100))
		_, err := f.pay.Execute(context.Background(), dto.MakePaymentRequest{LoanID: loan.ID, Amount: &short})
		assert.ErrorIs(t, err, valueobject.ErrInvalidPaymentAmount)

		exact := loan.Schedule[0].Total
		_, err = f.pay.Execute(context.Background(), dto.MakePaymentRequest{LoanID: loan.ID, Amount: &exact})
		assert.NoError(t, err)
	})

	t.Run("completed loans take no payments", func(t *testing.T) {
		f := newReviewFixture()
		app := f.apps.apps["app-1"]
		app.LoanRequest.TenureMonths = 2
		f.apps.apps["app-1"] = app
		loan := f.disbursed(t)

		for i := 0; i < 2; i++ {
			_, err := f.pay.Execute(context.Background(), dto.MakePaymentRequest{LoanID: loan.ID})
			require.NoError(t, err)
		}
		got, err := f.loan.Execute(context.Background(), dto.GetLoanRequest{LoanID: loan.ID})
		require.NoError(t, err)
		assert.Equal(t, "completed", got.Status)
		assert.Nil(t, got.NextPaymentDue)
		assert.True(t, got.OutstandingBalance.IsZero())

		_, err = f.pay.Execute(context.Background(), dto.MakePaymentRequest{LoanID: loan.ID})
		assert.ErrorIs(t, err, valueobject.ErrLoanNotActive)
	})

	t.Run("save failure publishes nothing", func(t *testing.T) {
		f := newReviewFixture()
		loan := f.disbursed(t)
		f.publisher.publishedEvents = nil
		f.loans.saveFunc = func(context.Context, model.Loan) error { return valueobject.ErrVersionConflict }

		_, err := f.pay.Execute(context.Background(), dto.MakePaymentRequest{LoanID: loan.ID})
		assert.ErrorIs(t, err, valueobject.ErrVersionConflict)
		assert.Empty(t, f.publisher.publishedEvents)
		assert.Empty(t, f.metrics.payments)
	})

	t.Run("unknown loan", func(t *testing.T) {
		f := newReviewFixture()
		_, err := f.pay.Execute(context.Background(), dto.MakePaymentRequest{LoanID: "nope"})
		assert.ErrorIs(t, err, valueobject.ErrNotFound)
	})
}

func TestGetLoan_Execute(t *testing.T) {
	f := newReviewFixture()
	loan := f.disbursed(t)

	byID, err := f.loan.Execute(context.Background(), dto.GetLoanRequest{LoanID: loan.ID})
	require.NoError(t, err)
	byApp, err := f.loan.Execute(context.Background(), dto.GetLoanRequest{ApplicationID: "app-1"})
	require.NoError(t, err)
	assert.Equal(t, byID, byApp)

	_, err = f.loan.Execute(context.Background(), dto.GetLoanRequest{})
	assert.ErrorIs(t, err, usecase.ErrInvalidRequest)

	_, err = f.loan.Execute(context.Background(), dto.GetLoanRequest{ApplicationID: "app-9"})
	assert.ErrorIs(t, err, valueobject.ErrNotFound)
}
