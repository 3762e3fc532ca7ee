package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// Applicant holds the step-1 details of an application draft.
type Applicant struct {
	FullName                   string
	Age                        int
	EmploymentType             valueobject.EmploymentType
	MonthlyIncome              decimal.Decimal
	ExistingMonthlyObligations decimal.Decimal
}

// Validate enforces the non-negativity of the numeric fields. Completeness is
// not checked here; step 1 deliberately lets the applicant move on.
func (a Applicant) Validate() error {
	if a.Age < 0 {
		return fmt.Errorf("%w: age must not be negative, got %d", valueobject.ErrInvalidApplicant, a.Age)
	}
	if a.MonthlyIncome.LessThan(decimal.Zero) {
		return fmt.Errorf("%w: monthly income must not be negative, got %s", valueobject.ErrInvalidApplicant, a.MonthlyIncome)
	}
	if a.ExistingMonthlyObligations.LessThan(decimal.Zero) {
		return fmt.Errorf("%w: existing obligations must not be negative, got %s", valueobject.ErrInvalidApplicant, a.ExistingMonthlyObligations)
	}
	return nil
}
