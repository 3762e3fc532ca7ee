package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-lifecycle/internal/domain/model"
)

// ---------------------------------------------------------------------------
// EligibilityEvaluator – affordability rule for a proposed installment
// ---------------------------------------------------------------------------

// DefaultObligationRatio caps combined monthly obligations at half of income.
var DefaultObligationRatio = decimal.RequireFromString("0.5")

// Eligibility is the outcome of one affordability check.
type Eligibility struct {
	// Ceiling is income × ratio: the most the applicant may owe per month.
	Ceiling decimal.Decimal
	// Headroom is Ceiling minus obligations and the proposed installment.
	// It is negative when the applicant cannot afford the loan.
	Headroom decimal.Decimal
	Eligible bool
}

// EligibilityEvaluator decides whether an applicant can afford an installment.
// It holds no state between calls.
type EligibilityEvaluator struct {
	ratio decimal.Decimal
}

// NewEligibilityEvaluator returns an evaluator using DefaultObligationRatio.
func NewEligibilityEvaluator() *EligibilityEvaluator {
	return &EligibilityEvaluator{ratio: DefaultObligationRatio}
}

// Evaluate applies the rule:
//
//	eligible  iff  income > 0  and  income × ratio > obligations + installment
//
// The comparison is strict; sitting exactly on the ceiling is ineligible.
func (e *EligibilityEvaluator) Evaluate(income, obligations, installment decimal.Decimal) Eligibility {
	ceiling := income.Mul(e.ratio)
	committed := obligations.Add(installment)
	return Eligibility{
		Ceiling:  ceiling,
		Headroom: ceiling.Sub(committed),
		Eligible: income.GreaterThan(decimal.Zero) && ceiling.GreaterThan(committed),
	}
}

// LoanPreview is what the loan-details step shows after every edit.
type LoanPreview struct {
	Schedule    model.AmortizationSchedule
	Eligibility Eligibility
}

// Preview computes the live installment and affordability for a draft, with
// the schedule starting at start. Ineligibility is reported, never enforced:
// the wizard lets the applicant move on regardless.
func (e *EligibilityEvaluator) Preview(w model.ApplicationWizard, start time.Time) (LoanPreview, error) {
	schedule, err := model.GenerateSchedule(w.LoanRequest(), start)
	if err != nil {
		return LoanPreview{}, err
	}
	applicant := w.Applicant()
	return LoanPreview{
		Schedule: schedule,
		Eligibility: e.Evaluate(
			applicant.MonthlyIncome,
			applicant.ExistingMonthlyObligations,
			schedule.MonthlyInstallment(),
		),
	}, nil
}
