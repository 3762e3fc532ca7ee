package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-lifecycle/internal/domain/event"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Loan aggregate root (repayment tracking)
// ---------------------------------------------------------------------------

// Payment is one installment paid against a loan.
type Payment struct {
	Sequence     int
	Amount       decimal.Decimal
	Principal    decimal.Decimal
	Interest     decimal.Decimal
	BalanceAfter decimal.Decimal
	DueDate      time.Time
	PaidAt       time.Time
}

// Loan is a disbursed application being repaid installment by installment.
// The schedule is regenerated from the request and the disbursement date and
// is never stored. Mutations return a new copy.
type Loan struct {
	id            string
	applicationID string
	loanType      valueobject.LoanType
	schedule      AmortizationSchedule
	disbursedAt   time.Time
	status        valueobject.LoanStatus
	payments      []Payment
	version       int
	createdAt     time.Time
	updatedAt     time.Time
	domainEvents  []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoan creates an active loan for a sanctioned application. The first
// installment falls due a month after disbursement.
func NewLoan(app SubmittedApplication, now time.Time) (Loan, error) {
	if app.ID == "" {
		return Loan{}, fmt.Errorf("%w: application ID is required", valueobject.ErrInvalidValue)
	}
	schedule, err := GenerateSchedule(app.LoanRequest, now)
	if err != nil {
		return Loan{}, err
	}

	loan := Loan{
		id:            uuid.New().String(),
		applicationID: app.ID,
		loanType:      app.LoanType,
		schedule:      schedule,
		disbursedAt:   now,
		status:        valueobject.LoanStatusActive,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}

	first := schedule.installments[0]
	loan.domainEvents = append(loan.domainEvents, event.NewLoanDisbursed(
		loan.id, app.ID, app.LoanType.String(),
		app.LoanRequest.Principal, schedule.MonthlyInstallment(), app.LoanRequest.TenureMonths,
		first.DueDate, now,
	))
	return loan, nil
}

// ReconstructLoan rebuilds a Loan from persistence.
func ReconstructLoan(
	id, applicationID string,
	loanType valueobject.LoanType,
	request LoanRequest,
	disbursedAt time.Time,
	status valueobject.LoanStatus,
	payments []Payment,
	version int,
	createdAt, updatedAt time.Time,
) (Loan, error) {
	schedule, err := GenerateSchedule(request, disbursedAt)
	if err != nil {
		return Loan{}, err
	}
	if len(payments) > len(schedule.installments) {
		return Loan{}, fmt.Errorf("%w: loan %s has %d payments for %d installments",
			valueobject.ErrInvalidValue, id, len(payments), len(schedule.installments))
	}
	return Loan{
		id:            id,
		applicationID: applicationID,
		loanType:      loanType,
		schedule:      schedule,
		disbursedAt:   disbursedAt,
		status:        status,
		payments:      payments,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}, nil
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// MakePayment settles the next installment due. amount must equal that
// installment's total. Paying the last installment completes the loan.
func (l Loan) MakePayment(amount decimal.Decimal, now time.Time) (Loan, error) {
	due, ok := l.NextInstallment()
	if !ok || !l.status.Equal(valueobject.LoanStatusActive) {
		return l, fmt.Errorf("%w: loan %s is %s", valueobject.ErrLoanNotActive, l.id, l.status)
	}
	if !amount.Equal(due.Total) {
		return l, fmt.Errorf("%w: installment %d is %s, got %s",
			valueobject.ErrInvalidPaymentAmount, due.Sequence, due.Total, amount)
	}

	next := l
	next.updatedAt = now
	next.version++
	next.domainEvents = copyEvents(l.domainEvents)
	next.payments = append(append([]Payment(nil), l.payments...), Payment{
		Sequence:     due.Sequence,
		Amount:       amount,
		Principal:    due.Principal,
		Interest:     due.Interest,
		BalanceAfter: due.RemainingBalance,
		DueDate:      due.DueDate,
		PaidAt:       now,
	})
	next.domainEvents = append(next.domainEvents, event.NewPaymentReceived(
		l.id, due.Sequence, amount, next.OutstandingBalance(), next.RemainingTenure(), now,
	))

	if next.RemainingTenure() == 0 {
		next.status = valueobject.LoanStatusCompleted
		next.domainEvents = append(next.domainEvents, event.NewLoanCompleted(l.id, next.TotalPaid(), now))
	}
	return next, nil
}

// ---------------------------------------------------------------------------
// Repayment position
// ---------------------------------------------------------------------------

// NextInstallment is the first unpaid schedule row. ok is false once every
// installment is paid.
func (l Loan) NextInstallment() (Installment, bool) {
	if len(l.payments) >= len(l.schedule.installments) {
		return Installment{}, false
	}
	return l.schedule.installments[len(l.payments)], true
}

// NextPaymentDue is the due date of the next installment, or nil when the
// loan is repaid.
func (l Loan) NextPaymentDue() *time.Time {
	due, ok := l.NextInstallment()
	if !ok {
		return nil
	}
	return &due.DueDate
}

// RemainingTenure is the number of unpaid installments.
func (l Loan) RemainingTenure() int {
	return len(l.schedule.installments) - len(l.payments)
}

// OutstandingBalance is the principal still owed.
func (l Loan) OutstandingBalance() decimal.Decimal {
	if len(l.payments) == 0 {
		return l.schedule.request.Principal
	}
	return l.payments[len(l.payments)-1].BalanceAfter
}

// RemainingAmount is principal plus interest across the unpaid installments.
func (l Loan) RemainingAmount() decimal.Decimal {
	total := decimal.Zero
	for _, row := range l.schedule.installments[len(l.payments):] {
		total = total.Add(row.Total)
	}
	return total
}

// TotalPaid sums every payment made.
func (l Loan) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range l.payments {
		total = total.Add(p.Amount)
	}
	return total
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() string                          { return l.id }
func (l Loan) ApplicationID() string               { return l.applicationID }
func (l Loan) LoanType() valueobject.LoanType      { return l.loanType }
func (l Loan) Request() LoanRequest                { return l.schedule.request }
func (l Loan) Schedule() AmortizationSchedule      { return l.schedule }
func (l Loan) MonthlyInstallment() decimal.Decimal { return l.schedule.monthlyInstallment }
func (l Loan) DisbursedAt() time.Time              { return l.disbursedAt }
func (l Loan) Status() valueobject.LoanStatus      { return l.status }
func (l Loan) Version() int                        { return l.version }
func (l Loan) CreatedAt() time.Time                { return l.createdAt }
func (l Loan) UpdatedAt() time.Time                { return l.updatedAt }
func (l Loan) DomainEvents() []event.DomainEvent   { return l.domainEvents }

// Payments returns a copy of the payment history, oldest first.
func (l Loan) Payments() []Payment {
	out := make([]Payment, len(l.payments))
	copy(out, l.payments)
	return out
}

// ClearEvents returns a copy with an empty event list.
func (l Loan) ClearEvents() Loan {
	next := l
	next.domainEvents = nil
	return next
}
