package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-lifecycle/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// TypeApplicationSubmitted is the event type carried by ApplicationSubmitted.
const TypeApplicationSubmitted = "lending.application.submitted"

const (
	aggregateApplication = "LoanApplication"
	aggregateCase        = "VerificationCase"
	aggregateSanction    = "Sanction"
	aggregateLoan        = "Loan"
)

// ---------------------------------------------------------------------------
// Application Events
// ---------------------------------------------------------------------------

// ApplicationSubmitted is raised when the applicant confirms step 4.
type ApplicationSubmitted struct {
	events.BaseEvent
	LoanType           string          `json:"loan_type"`
	Purpose            string          `json:"purpose"`
	Principal          decimal.Decimal `json:"principal"`
	AnnualRatePercent  decimal.Decimal `json:"annual_rate_percent"`
	TenureMonths       int             `json:"tenure_months"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
}

func NewApplicationSubmitted(
	applicationID, loanType, purpose string,
	principal, ratePercent decimal.Decimal, tenureMonths int,
	emi decimal.Decimal, now time.Time,
) ApplicationSubmitted {
	return ApplicationSubmitted{
		BaseEvent:          events.NewBaseEvent(TypeApplicationSubmitted, applicationID, aggregateApplication, now),
		LoanType:           loanType,
		Purpose:            purpose,
		Principal:          principal,
		AnnualRatePercent:  ratePercent,
		TenureMonths:       tenureMonths,
		MonthlyInstallment: emi,
	}
}

// ---------------------------------------------------------------------------
// Verification Events
// ---------------------------------------------------------------------------

// VerificationCaseOpened is raised when a case enters the reviewer queue.
type VerificationCaseOpened struct {
	events.BaseEvent
	SubjectType   string `json:"subject_type"`
	ApplicationID string `json:"application_id,omitempty"`
	ItemCount     int    `json:"item_count"`
}

func NewVerificationCaseOpened(caseID, subjectType, applicationID string, itemCount int, now time.Time) VerificationCaseOpened {
	return VerificationCaseOpened{
		BaseEvent:     events.NewBaseEvent("verification.case.opened", caseID, aggregateCase, now),
		SubjectType:   subjectType,
		ApplicationID: applicationID,
		ItemCount:     itemCount,
	}
}

// ScoreSubmitted is raised when the reviewer freezes the scorecard.
type ScoreSubmitted struct {
	events.BaseEvent
	Overall     int `json:"overall"`
	BureauScore int `json:"bureau_score"`
}

func NewScoreSubmitted(caseID string, overall, bureauScore int, now time.Time) ScoreSubmitted {
	return ScoreSubmitted{
		BaseEvent:   events.NewBaseEvent("verification.case.score_submitted", caseID, aggregateCase, now),
		Overall:     overall,
		BureauScore: bureauScore,
	}
}

// VerificationCaseApproved is raised when a case is approved.
type VerificationCaseApproved struct {
	events.BaseEvent
	SubjectType   string `json:"subject_type"`
	ApplicationID string `json:"application_id,omitempty"`
	Notes         string `json:"notes,omitempty"`
	BureauScore   *int   `json:"bureau_score,omitempty"`
}

func NewVerificationCaseApproved(caseID, subjectType, applicationID, notes string, bureauScore *int, now time.Time) VerificationCaseApproved {
	return VerificationCaseApproved{
		BaseEvent:     events.NewBaseEvent("verification.case.approved", caseID, aggregateCase, now),
		SubjectType:   subjectType,
		ApplicationID: applicationID,
		Notes:         notes,
		BureauScore:   bureauScore,
	}
}

// VerificationCaseRejected is raised when a case is rejected.
type VerificationCaseRejected struct {
	events.BaseEvent
	SubjectType   string `json:"subject_type"`
	ApplicationID string `json:"application_id,omitempty"`
	Reason        string `json:"reason"`
	Notes         string `json:"notes,omitempty"`
}

func NewVerificationCaseRejected(caseID, subjectType, applicationID, reason, notes string, now time.Time) VerificationCaseRejected {
	return VerificationCaseRejected{
		BaseEvent:     events.NewBaseEvent("verification.case.rejected", caseID, aggregateCase, now),
		SubjectType:   subjectType,
		ApplicationID: applicationID,
		Reason:        reason,
		Notes:         notes,
	}
}

// ---------------------------------------------------------------------------
// Sanction Events
// ---------------------------------------------------------------------------

// SanctionDecided is raised for every manager or admin decision. Status is
// the sanction status the decision produced.
type SanctionDecided struct {
	events.BaseEvent
	Stage      string          `json:"stage"`
	Approved   bool            `json:"approved"`
	Status     string          `json:"status"`
	ApproverID string          `json:"approver_id"`
	Principal  decimal.Decimal `json:"principal"`
	Notes      string          `json:"notes,omitempty"`
}

func NewSanctionDecided(
	applicationID, stage string, approved bool, status, approverID string,
	principal decimal.Decimal, notes string, now time.Time,
) SanctionDecided {
	return SanctionDecided{
		BaseEvent:  events.NewBaseEvent("lending.sanction.decided", applicationID, aggregateSanction, now),
		Stage:      stage,
		Approved:   approved,
		Status:     status,
		ApproverID: approverID,
		Principal:  principal,
		Notes:      notes,
	}
}

// SanctionAdvanced is raised when the sanction letter goes out or its signed
// copy comes back.
type SanctionAdvanced struct {
	events.BaseEvent
	Status string `json:"status"`
}

func NewSanctionAdvanced(applicationID, status string, now time.Time) SanctionAdvanced {
	return SanctionAdvanced{
		BaseEvent: events.NewBaseEvent("lending.sanction.advanced", applicationID, aggregateSanction, now),
		Status:    status,
	}
}

// ---------------------------------------------------------------------------
// Loan Events
// ---------------------------------------------------------------------------

// LoanDisbursed is raised when a sanctioned application becomes a loan.
type LoanDisbursed struct {
	events.BaseEvent
	ApplicationID      string          `json:"application_id"`
	LoanType           string          `json:"loan_type"`
	Principal          decimal.Decimal `json:"principal"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	TenureMonths       int             `json:"tenure_months"`
	FirstDueDate       time.Time       `json:"first_due_date"`
}

func NewLoanDisbursed(
	loanID, applicationID, loanType string,
	principal, emi decimal.Decimal, tenureMonths int,
	firstDue, now time.Time,
) LoanDisbursed {
	return LoanDisbursed{
		BaseEvent:          events.NewBaseEvent("lending.loan.disbursed", loanID, aggregateLoan, now),
		ApplicationID:      applicationID,
		LoanType:           loanType,
		Principal:          principal,
		MonthlyInstallment: emi,
		TenureMonths:       tenureMonths,
		FirstDueDate:       firstDue,
	}
}

// PaymentReceived is raised for each installment paid.
type PaymentReceived struct {
	events.BaseEvent
	Sequence           int             `json:"sequence"`
	Amount             decimal.Decimal `json:"amount"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	RemainingTenure    int             `json:"remaining_tenure"`
}

func NewPaymentReceived(loanID string, sequence int, amount, outstanding decimal.Decimal, remainingTenure int, now time.Time) PaymentReceived {
	return PaymentReceived{
		BaseEvent:          events.NewBaseEvent("lending.loan.payment_received", loanID, aggregateLoan, now),
		Sequence:           sequence,
		Amount:             amount,
		OutstandingBalance: outstanding,
		RemainingTenure:    remainingTenure,
	}
}

// LoanCompleted is raised with the final installment.
type LoanCompleted struct {
	events.BaseEvent
	TotalPaid decimal.Decimal `json:"total_paid"`
}

func NewLoanCompleted(loanID string, totalPaid decimal.Decimal, now time.Time) LoanCompleted {
	return LoanCompleted{
		BaseEvent: events.NewBaseEvent("lending.loan.completed", loanID, aggregateLoan, now),
		TotalPaid: totalPaid,
	}
}
