package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

var disbursedAt = time.Date(2025, 1, 31, 11, 0, 0, 0, time.UTC)

func newLoan(t *testing.T, tenure int) model.Loan {
	t.Helper()
	loan, err := model.NewLoan(model.SubmittedApplication{
		ID:       "app-7",
		LoanType: valueobject.LoanTypePersonal,
		LoanRequest: model.LoanRequest{
			Principal:         decimal.NewFromInt(120_000),
			AnnualRatePercent: decimal.NewFromInt(12),
			TenureMonths:      tenure,
		},
	}, disbursedAt)
	require.NoError(t, err)
	return loan
}

func payNext(t *testing.T, loan model.Loan, at time.Time) model.Loan {
	t.Helper()
	due, ok := loan.NextInstallment()
	require.True(t, ok)
	next, err := loan.MakePayment(due.Total, at)
	require.NoError(t, err)
	return next
}

func TestNewLoan(t *testing.T) {
	loan := newLoan(t, 12)

	assert.NotEmpty(t, loan.ID())
	assert.Equal(t, "app-7", loan.ApplicationID())
	assert.True(t, loan.Status().Equal(valueobject.LoanStatusActive))
	assert.Equal(t, 12, loan.RemainingTenure())
	assert.True(t, loan.OutstandingBalance().Equal(decimal.NewFromInt(120_000)))
	assert.True(t, loan.TotalPaid().IsZero())
	assert.Empty(t, loan.Payments())

	// January 31st rolls to the last day of February.
	require.NotNil(t, loan.NextPaymentDue())
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), *loan.NextPaymentDue())

	require.Len(t, loan.DomainEvents(), 1)
	assert.Equal(t, "lending.loan.disbursed", loan.DomainEvents()[0].EventType())
	assert.Equal(t, loan.ID(), loan.DomainEvents()[0].AggregateID())

	_, err := model.NewLoan(model.SubmittedApplication{LoanRequest: principalOf(1000)}, disbursedAt)
	assert.ErrorIs(t, err, valueobject.ErrInvalidValue)
}

func TestLoan_MakePayment(t *testing.T) {
	loan := newLoan(t, 12).ClearEvents()
	first, _ := loan.NextInstallment()
	paidAt := disbursedAt.AddDate(0, 1, 0)

	next, err := loan.MakePayment(first.Total, paidAt)
	require.NoError(t, err)

	assert.Equal(t, 11, next.RemainingTenure())
	assert.Equal(t, 12, loan.RemainingTenure(), "original is unchanged")
	assert.True(t, next.OutstandingBalance().Equal(first.RemainingBalance))
	assert.True(t, next.TotalPaid().Equal(first.Total))
	assert.Equal(t, loan.Version()+1, next.Version())

	payments := next.Payments()
	require.Len(t, payments, 1)
	assert.Equal(t, 1, payments[0].Sequence)
	assert.Equal(t, first.DueDate, payments[0].DueDate)
	assert.Equal(t, paidAt, payments[0].PaidAt)
	assert.True(t, payments[0].Interest.Equal(decimal.NewFromInt(1200)))

	second := next.Schedule().Installments()[1]
	assert.Equal(t, second.DueDate, *next.NextPaymentDue())

	require.Len(t, next.DomainEvents(), 1)
	assert.Equal(t, "lending.loan.payment_received", next.DomainEvents()[0].EventType())
}

func TestLoan_MakePaymentWrongAmount(t *testing.T) {
	loan := newLoan(t, 12)
	due, _ := loan.NextInstallment()

	for _, amount := range []decimal.Decimal{
		due.Total.Sub(decimal.NewFromInt(1)),
		due.Total.Mul(decimal.NewFromInt(2)),
		decimal.Zero,
	} {
		_, err := loan.MakePayment(amount, disbursedAt)
		assert.ErrorIs(t, err, valueobject.ErrInvalidPaymentAmount, "amount %s", amount)
	}
}

func TestLoan_RepaidInFull(t *testing.T) {
	loan := newLoan(t, 3).ClearEvents()
	expected := loan.RemainingAmount()

	at := disbursedAt
	for i := 0; i < 3; i++ {
		at = at.AddDate(0, 1, 0)
		loan = payNext(t, loan, at)
	}

	assert.True(t, loan.Status().Equal(valueobject.LoanStatusCompleted))
	assert.Equal(t, 0, loan.RemainingTenure())
	assert.True(t, loan.OutstandingBalance().IsZero())
	assert.True(t, loan.RemainingAmount().IsZero())
	assert.True(t, loan.TotalPaid().Equal(expected))
	assert.Nil(t, loan.NextPaymentDue())

	types := make([]string, 0)
	for _, e := range loan.DomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{
		"lending.loan.payment_received",
		"lending.loan.payment_received",
		"lending.loan.payment_received",
		"lending.loan.completed",
	}, types)

	_, err := loan.MakePayment(decimal.NewFromInt(1), at)
	assert.ErrorIs(t, err, valueobject.ErrLoanNotActive)
}

func TestReconstructLoan(t *testing.T) {
	original := payNext(t, newLoan(t, 12), disbursedAt.AddDate(0, 1, 0))

	loan, err := model.ReconstructLoan(
		original.ID(), original.ApplicationID(), original.LoanType(), original.Request(),
		original.DisbursedAt(), original.Status(), original.Payments(),
		original.Version(), original.CreatedAt(), original.UpdatedAt(),
	)
	require.NoError(t, err)

	assert.Equal(t, original.Schedule().Installments(), loan.Schedule().Installments())
	assert.Equal(t, 11, loan.RemainingTenure())
	assert.Equal(t, original.NextPaymentDue(), loan.NextPaymentDue())
	assert.Empty(t, loan.DomainEvents())

	tooMany := make([]model.Payment, 13)
	_, err = model.ReconstructLoan("loan-1", "app-7", valueobject.LoanTypePersonal, original.Request(),
		disbursedAt, valueobject.LoanStatusActive, tooMany, 1, disbursedAt, disbursedAt)
	assert.ErrorIs(t, err, valueobject.ErrInvalidValue)
}
