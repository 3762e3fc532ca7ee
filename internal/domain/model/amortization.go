package model

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

var hundred = decimal.NewFromInt(100)

// LoanRequest is the applicant's requested loan configuration. It is a value:
// callers replace it wholesale whenever an input changes.
type LoanRequest struct {
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	TenureMonths      int
}

// NewLoanRequest builds a validated LoanRequest.
func NewLoanRequest(principal, annualRatePercent decimal.Decimal, tenureMonths int) (LoanRequest, error) {
	req := LoanRequest{
		Principal:         principal,
		AnnualRatePercent: annualRatePercent,
		TenureMonths:      tenureMonths,
	}
	if err := req.Validate(); err != nil {
		return LoanRequest{}, err
	}
	return req, nil
}

// Validate rejects non-positive principal or tenure and negative rates.
func (r LoanRequest) Validate() error {
	if r.Principal.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: principal must be positive, got %s", valueobject.ErrInvalidLoanParameters, r.Principal)
	}
	if r.TenureMonths <= 0 {
		return fmt.Errorf("%w: tenure must be positive, got %d", valueobject.ErrInvalidLoanParameters, r.TenureMonths)
	}
	if r.AnnualRatePercent.LessThan(decimal.Zero) {
		return fmt.Errorf("%w: rate must not be negative, got %s", valueobject.ErrInvalidLoanParameters, r.AnnualRatePercent)
	}
	return nil
}

// MonthlyRate is annualRatePercent / 12 / 100.
func (r LoanRequest) MonthlyRate() decimal.Decimal {
	return r.AnnualRatePercent.Div(decimal.NewFromInt(12)).Div(hundred)
}

// Installment is one row of an amortization schedule. RemainingBalance is the
// principal still owed once this row is paid.
type Installment struct {
	Sequence         int
	DueDate          time.Time
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	Total            decimal.Decimal
	RemainingBalance decimal.Decimal
}

// AmortizationSchedule is derived from a LoanRequest and a start date and
// never stored on its own.
type AmortizationSchedule struct {
	request            LoanRequest
	startDate          time.Time
	monthlyInstallment decimal.Decimal
	installments       []Installment
}

func (s AmortizationSchedule) Request() LoanRequest                { return s.request }
func (s AmortizationSchedule) StartDate() time.Time                { return s.startDate }
func (s AmortizationSchedule) MonthlyInstallment() decimal.Decimal { return s.monthlyInstallment }

// Installments returns a copy of the schedule rows.
func (s AmortizationSchedule) Installments() []Installment {
	out := make([]Installment, len(s.installments))
	copy(out, s.installments)
	return out
}

// TotalInterest sums the interest component of every row.
func (s AmortizationSchedule) TotalInterest() decimal.Decimal {
	total := decimal.Zero
	for _, in := range s.installments {
		total = total.Add(in.Interest)
	}
	return total
}

// TotalPayable is principal plus total interest.
func (s AmortizationSchedule) TotalPayable() decimal.Decimal {
	return s.request.Principal.Add(s.TotalInterest())
}

// MonthlyInstallment computes the EMI for req, rounded to whole currency units.
//
//	r   = annualRatePercent / 12 / 100
//	EMI = round(P * r * (1+r)^N / ((1+r)^N - 1))
//
// A zero rate degenerates to P / N.
func MonthlyInstallment(req LoanRequest) (decimal.Decimal, error) {
	if err := req.Validate(); err != nil {
		return decimal.Zero, err
	}

	r := req.MonthlyRate()
	if r.IsZero() {
		return req.Principal.Div(decimal.NewFromInt(int64(req.TenureMonths))).Round(0), nil
	}

	// The power term goes through float64; everything monetary stays decimal.
	rf := r.InexactFloat64()
	factor := math.Pow(1+rf, float64(req.TenureMonths))
	emi := req.Principal.InexactFloat64() * rf * factor / (factor - 1)
	return decimal.NewFromFloat(emi).Round(0), nil
}

// GenerateSchedule builds the full repayment schedule for req. Interest is
// rounded to whole units each month and the final row's principal clears the
// remaining balance, so the principal column always sums to req.Principal.
//
// Row k falls due k months after the calendar day of start, on the same day
// of the month or that month's last day when it is shorter.
func GenerateSchedule(req LoanRequest, start time.Time) (AmortizationSchedule, error) {
	emi, err := MonthlyInstallment(req)
	if err != nil {
		return AmortizationSchedule{}, err
	}

	start = startOfDay(start)
	r := req.MonthlyRate()
	remaining := req.Principal
	rows := make([]Installment, 0, req.TenureMonths)

	for k := 1; k <= req.TenureMonths; k++ {
		interest := remaining.Mul(r).Round(0)
		principal := emi.Sub(interest)

		if k == req.TenureMonths || principal.GreaterThan(remaining) {
			principal = remaining
		}
		if principal.LessThan(decimal.Zero) {
			principal = decimal.Zero
		}

		remaining = remaining.Sub(principal)
		rows = append(rows, Installment{
			Sequence:         k,
			DueDate:          AddMonths(start, k),
			Principal:        principal,
			Interest:         interest,
			Total:            principal.Add(interest),
			RemainingBalance: remaining,
		})
	}

	return AmortizationSchedule{
		request:            req,
		startDate:          start,
		monthlyInstallment: emi,
		installments:       rows,
	}, nil
}

// AddMonths moves t forward n calendar months, clamping to the last day of
// the target month. Jan 31 plus one month is Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(t.Day(), lastDay)-1)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
