package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// ItemStatus – review state of a single verification item
// ---------------------------------------------------------------------------

// ItemStatus is the review state of one document or identity item.
type ItemStatus struct {
	value string
}

const (
	itemStatusPending  = "pending"
	itemStatusVerified = "verified"
	itemStatusRejected = "rejected"
)

var (
	ItemStatusPending  = ItemStatus{value: itemStatusPending}
	ItemStatusVerified = ItemStatus{value: itemStatusVerified}
	ItemStatusRejected = ItemStatus{value: itemStatusRejected}
)

var validItemStatuses = map[string]ItemStatus{
	itemStatusPending:  ItemStatusPending,
	itemStatusVerified: ItemStatusVerified,
	itemStatusRejected: ItemStatusRejected,
}

// NewItemStatus creates an ItemStatus from a raw string.
func NewItemStatus(s string) (ItemStatus, error) {
	v, ok := validItemStatuses[s]
	if !ok {
		return ItemStatus{}, fmt.Errorf("%w: item status %q", ErrInvalidValue, s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s ItemStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s ItemStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s ItemStatus) Equal(other ItemStatus) bool { return s.value == other.value }

// IsReviewed is true once a reviewer has verified or rejected the item.
func (s ItemStatus) IsReviewed() bool {
	return s.value == itemStatusVerified || s.value == itemStatusRejected
}

// ---------------------------------------------------------------------------
// CaseDecision – outcome of a verification case
// ---------------------------------------------------------------------------

// CaseDecision is the reviewer's verdict on a whole verification case.
type CaseDecision struct {
	value string
}

const (
	decisionPending  = "pending"
	decisionApproved = "approved"
	decisionRejected = "rejected"
)

var (
	DecisionPending  = CaseDecision{value: decisionPending}
	DecisionApproved = CaseDecision{value: decisionApproved}
	DecisionRejected = CaseDecision{value: decisionRejected}
)

var validDecisions = map[string]CaseDecision{
	decisionPending:  DecisionPending,
	decisionApproved: DecisionApproved,
	decisionRejected: DecisionRejected,
}

// NewCaseDecision creates a CaseDecision from a raw string.
func NewCaseDecision(s string) (CaseDecision, error) {
	v, ok := validDecisions[s]
	if !ok {
		return CaseDecision{}, fmt.Errorf("%w: case decision %q", ErrInvalidValue, s)
	}
	return v, nil
}

func (d CaseDecision) String() string                { return d.value }
func (d CaseDecision) IsZero() bool                  { return d.value == "" }
func (d CaseDecision) Equal(other CaseDecision) bool { return d.value == other.value }

// IsFinal is true for approved and rejected.
func (d CaseDecision) IsFinal() bool {
	return d.value == decisionApproved || d.value == decisionRejected
}

// ---------------------------------------------------------------------------
// SubjectType – what a verification case reviews
// ---------------------------------------------------------------------------

// SubjectType distinguishes identity (KYC) review from loan-document review.
type SubjectType struct {
	value string
}

const (
	subjectKYC           = "kyc"
	subjectLoanDocuments = "loan-documents"
)

var (
	SubjectKYC           = SubjectType{value: subjectKYC}
	SubjectLoanDocuments = SubjectType{value: subjectLoanDocuments}
)

// NewSubjectType creates a SubjectType from a raw string.
func NewSubjectType(s string) (SubjectType, error) {
	switch s {
	case subjectKYC:
		return SubjectKYC, nil
	case subjectLoanDocuments:
		return SubjectLoanDocuments, nil
	default:
		return SubjectType{}, fmt.Errorf("%w: subject type %q", ErrInvalidValue, s)
	}
}

func (t SubjectType) String() string               { return t.value }
func (t SubjectType) IsZero() bool                 { return t.value == "" }
func (t SubjectType) Equal(other SubjectType) bool { return t.value == other.value }

// RequiresScore reports whether a submitted score breakdown is a
// precondition for approving cases of this type. Only KYC cases are scored.
func (t SubjectType) RequiresScore() bool { return t.value == subjectKYC }

// RejectionReasons returns the closed set of reasons a reviewer may give
// when rejecting a case of this type.
func (t SubjectType) RejectionReasons() []RejectionReason {
	return append([]RejectionReason(nil), rejectionReasons[t.value]...)
}

// ---------------------------------------------------------------------------
// DocumentCategory – grouping for progress reporting
// ---------------------------------------------------------------------------

// DocumentCategory groups verification items for per-category progress.
type DocumentCategory struct {
	value string
}

const (
	categoryIdentity  = "identity"
	categoryIncome    = "income"
	categoryAddress   = "address"
	categoryProperty  = "property"
	categoryFinancial = "financial"
)

var (
	CategoryIdentity  = DocumentCategory{value: categoryIdentity}
	CategoryIncome    = DocumentCategory{value: categoryIncome}
	CategoryAddress   = DocumentCategory{value: categoryAddress}
	CategoryProperty  = DocumentCategory{value: categoryProperty}
	CategoryFinancial = DocumentCategory{value: categoryFinancial}
)

var validCategories = map[string]DocumentCategory{
	categoryIdentity:  CategoryIdentity,
	categoryIncome:    CategoryIncome,
	categoryAddress:   CategoryAddress,
	categoryProperty:  CategoryProperty,
	categoryFinancial: CategoryFinancial,
}

// NewDocumentCategory creates a DocumentCategory from a raw string.
func NewDocumentCategory(s string) (DocumentCategory, error) {
	v, ok := validCategories[s]
	if !ok {
		return DocumentCategory{}, fmt.Errorf("%w: document category %q", ErrInvalidValue, s)
	}
	return v, nil
}

func (c DocumentCategory) String() string                    { return c.value }
func (c DocumentCategory) Equal(other DocumentCategory) bool { return c.value == other.value }

// ---------------------------------------------------------------------------
// RejectionReason
// ---------------------------------------------------------------------------

// RejectionReason is a reviewer-selected reason from a closed set.
type RejectionReason string

const (
	ReasonIncomplete       RejectionReason = "incomplete"
	ReasonIllegible        RejectionReason = "illegible"
	ReasonMismatch         RejectionReason = "mismatch"
	ReasonSuspectedForgery RejectionReason = "suspected-forgery"

	ReasonIdentityMismatch       RejectionReason = "identity-mismatch"
	ReasonForgedDocument         RejectionReason = "forged-document"
	ReasonEmploymentUnverifiable RejectionReason = "employment-unverifiable"
	ReasonAddressInvalid         RejectionReason = "address-invalid"
)

var rejectionReasons = map[string][]RejectionReason{
	subjectLoanDocuments: {ReasonIncomplete, ReasonIllegible, ReasonMismatch, ReasonSuspectedForgery},
	subjectKYC:           {ReasonIdentityMismatch, ReasonForgedDocument, ReasonEmploymentUnverifiable, ReasonAddressInvalid},
}

// Label is the human readable wording shown to reviewers and applicants.
func (r RejectionReason) Label() string {
	switch r {
	case ReasonIncomplete:
		return "Incomplete document set"
	case ReasonIllegible:
		return "Low quality/not readable"
	case ReasonMismatch:
		return "Mismatch with loan details"
	case ReasonSuspectedForgery:
		return "Suspected forgery"
	case ReasonIdentityMismatch:
		return "Identity mismatch"
	case ReasonForgedDocument:
		return "Fraudulent/forged document"
	case ReasonEmploymentUnverifiable:
		return "Employment not verifiable"
	case ReasonAddressInvalid:
		return "Address not valid"
	default:
		return string(r)
	}
}

// ValidateRejectionReason checks reason against the closed set for subject.
func ValidateRejectionReason(subject SubjectType, reason RejectionReason) error {
	if reason == "" {
		return ErrMissingRejectionReason
	}
	for _, r := range rejectionReasons[subject.value] {
		if r == reason {
			return nil
		}
	}
	return fmt.Errorf("%w: %q for %s case", ErrUnknownRejectionReason, reason, subject.value)
}
