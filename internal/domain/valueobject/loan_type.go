package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// LoanType – immutable value object
// ---------------------------------------------------------------------------

// LoanType identifies the loan product an applicant is applying for. Each
// product carries a fixed interest rate, a list of purposes and the set of
// documents the applicant has to upload.
type LoanType struct {
	value string
}

const (
	loanTypePersonal  = "personal"
	loanTypeHome      = "home"
	loanTypeVehicle   = "vehicle"
	loanTypeEducation = "education"
)

var (
	LoanTypePersonal  = LoanType{value: loanTypePersonal}
	LoanTypeHome      = LoanType{value: loanTypeHome}
	LoanTypeVehicle   = LoanType{value: loanTypeVehicle}
	LoanTypeEducation = LoanType{value: loanTypeEducation}
)

type loanProduct struct {
	ratePercent decimal.Decimal
	purposes    []string
	documents   []productDocument
}

type productDocument struct {
	name     string
	category DocumentCategory
}

var loanCatalog = map[string]loanProduct{
	loanTypePersonal: {
		ratePercent: decimal.RequireFromString("12.5"),
		purposes:    []string{"Medical Expenses", "Wedding", "Travel", "Personal Use"},
		documents: []productDocument{
			{"PAN Card", CategoryIdentity},
			{"Salary Slip", CategoryIncome},
			{"Bank Statement", CategoryFinancial},
		},
	},
	loanTypeHome: {
		ratePercent: decimal.RequireFromString("8.75"),
		purposes:    []string{"Home Purchase", "Construction", "Renovation"},
		documents: []productDocument{
			{"Property Documents", CategoryProperty},
			{"Sale Agreement", CategoryProperty},
		},
	},
	loanTypeVehicle: {
		ratePercent: decimal.RequireFromString("9.5"),
		purposes:    []string{"Two Wheeler Purchase", "Four Wheeler Purchase"},
		documents: []productDocument{
			{"Vehicle Quotation", CategoryFinancial},
			{"Invoice", CategoryFinancial},
		},
	},
	loanTypeEducation: {
		ratePercent: decimal.RequireFromString("7.9"),
		purposes:    []string{"Tuition Fees", "Overseas Education", "Exam Fees"},
		documents: []productDocument{
			{"Admission Letter", CategoryFinancial},
			{"Fee Structure", CategoryFinancial},
		},
	},
}

// NewLoanType creates a LoanType from a raw string.
func NewLoanType(s string) (LoanType, error) {
	if _, ok := loanCatalog[s]; !ok {
		return LoanType{}, fmt.Errorf("%w: %q", ErrUnknownLoanType, s)
	}
	return LoanType{value: s}, nil
}

// String returns the string representation of the loan type.
func (t LoanType) String() string { return t.value }

// IsZero returns true if the loan type has not been initialised.
func (t LoanType) IsZero() bool { return t.value == "" }

// Equal returns true when both loan types carry the same value.
func (t LoanType) Equal(other LoanType) bool { return t.value == other.value }

// AnnualRatePercent is the product's fixed annual interest rate.
func (t LoanType) AnnualRatePercent() decimal.Decimal {
	return loanCatalog[t.value].ratePercent
}

// Purposes lists the purposes an applicant may pick for this product.
func (t LoanType) Purposes() []string {
	return append([]string(nil), loanCatalog[t.value].purposes...)
}

// RequiredDocuments lists the document labels the applicant must upload.
func (t LoanType) RequiredDocuments() []string {
	docs := loanCatalog[t.value].documents
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.name
	}
	return out
}

// RequiresDocument reports whether name is one of the product's document labels.
func (t LoanType) RequiresDocument(name string) bool {
	_, ok := t.DocumentCategory(name)
	return ok
}

// DocumentCategory reports the review category of one of the product's
// document labels.
func (t LoanType) DocumentCategory(name string) (DocumentCategory, bool) {
	for _, d := range loanCatalog[t.value].documents {
		if d.name == name {
			return d.category, true
		}
	}
	return DocumentCategory{}, false
}
