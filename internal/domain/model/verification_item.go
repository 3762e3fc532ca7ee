package model

import (
	"fmt"
	"time"

	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// VerificationItem is a child entity of VerificationCase: one document or
// identity artefact under review.
type VerificationItem struct {
	name       string
	category   valueobject.DocumentCategory
	status     valueobject.ItemStatus
	reviewedAt *time.Time
}

// NewVerificationItem creates an item in pending status.
func NewVerificationItem(name string, category valueobject.DocumentCategory) VerificationItem {
	return VerificationItem{
		name:     name,
		category: category,
		status:   valueobject.ItemStatusPending,
	}
}

// ReconstructVerificationItem recreates an item from persistence (no validation).
func ReconstructVerificationItem(
	name string,
	category valueobject.DocumentCategory,
	status valueobject.ItemStatus,
	reviewedAt *time.Time,
) VerificationItem {
	return VerificationItem{
		name:       name,
		category:   category,
		status:     status,
		reviewedAt: reviewedAt,
	}
}

// review moves a pending item to a reviewed status. Reviewed items stay put;
// only reset brings them back to pending.
func (i VerificationItem) review(to valueobject.ItemStatus, now time.Time) (VerificationItem, error) {
	if i.status.IsReviewed() {
		return i, fmt.Errorf("%w: %q is %s", valueobject.ErrItemAlreadyReviewed, i.name, i.status)
	}
	next := i
	next.status = to
	at := now
	next.reviewedAt = &at
	return next, nil
}

func (i VerificationItem) reset() VerificationItem {
	next := i
	next.status = valueobject.ItemStatusPending
	next.reviewedAt = nil
	return next
}

// Accessors

func (i VerificationItem) Name() string                           { return i.name }
func (i VerificationItem) Category() valueobject.DocumentCategory { return i.category }
func (i VerificationItem) Status() valueobject.ItemStatus         { return i.status }
func (i VerificationItem) ReviewedAt() *time.Time                 { return i.reviewedAt }

// ItemSpec names an item and its category when opening a case.
type ItemSpec struct {
	Name     string
	Category valueobject.DocumentCategory
}

// LoanDocumentSpecs is the loan-document checklist for a submitted
// application: the documents the applicant uploaded, or the product's full
// document list when nothing was uploaded.
func LoanDocumentSpecs(app SubmittedApplication) []ItemSpec {
	names := app.Documents
	if len(names) == 0 {
		names = app.LoanType.RequiredDocuments()
	}
	specs := make([]ItemSpec, 0, len(names))
	for _, name := range names {
		category, ok := app.LoanType.DocumentCategory(name)
		if !ok {
			category = valueobject.CategoryFinancial
		}
		specs = append(specs, ItemSpec{Name: name, Category: category})
	}
	return specs
}

// DefaultItemSpecs is the standard checklist for a subject type.
func DefaultItemSpecs(subject valueobject.SubjectType) []ItemSpec {
	if subject.Equal(valueobject.SubjectKYC) {
		return []ItemSpec{
			{Name: "PAN Card", Category: valueobject.CategoryIdentity},
			{Name: "Aadhaar Card", Category: valueobject.CategoryIdentity},
			{Name: "Salary Slip", Category: valueobject.CategoryIncome},
			{Name: "Form 16", Category: valueobject.CategoryIncome},
			{Name: "Utility Bill (Address Proof)", Category: valueobject.CategoryAddress},
		}
	}
	return []ItemSpec{
		{Name: "Sale Deed", Category: valueobject.CategoryProperty},
		{Name: "Encumbrance Certificate", Category: valueobject.CategoryProperty},
		{Name: "Bank Statement", Category: valueobject.CategoryFinancial},
		{Name: "Income Tax Returns", Category: valueobject.CategoryFinancial},
	}
}
