package valueobject

import "errors"

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

// Every transition that fails with one of these leaves its aggregate unchanged.
var (
	ErrInvalidLoanParameters     = errors.New("invalid loan parameters")
	ErrConsentIncomplete         = errors.New("consent incomplete")
	ErrApprovalPreconditionUnmet = errors.New("approval precondition unmet")
	ErrScoreImmutable            = errors.New("score already submitted")
	ErrCaseAlreadyDecided        = errors.New("case already decided")
	ErrMissingRejectionReason    = errors.New("rejection reason is required")

	ErrUnknownRejectionReason  = errors.New("unknown rejection reason")
	ErrItemAlreadyReviewed     = errors.New("verification item already reviewed")
	ErrItemNotFound            = errors.New("verification item not found")
	ErrUnknownDocument         = errors.New("document is not required for this loan type")
	ErrApplicationSubmitted    = errors.New("application already submitted")
	ErrApplicationNotSubmitted = errors.New("application not submitted")
	ErrUnknownLoanType         = errors.New("unknown loan type")
	ErrUnknownPurpose          = errors.New("purpose is not offered for this loan type")
	ErrInvalidApplicant        = errors.New("invalid applicant details")
	ErrDuplicateCase           = errors.New("subject already has an open verification case")
	ErrNotFound                = errors.New("not found")
	ErrVersionConflict         = errors.New("concurrent modification")
	ErrInvalidValue            = errors.New("invalid value")

	ErrInvalidStatusTransition  = errors.New("invalid status transition")
	ErrAdminApprovalNotRequired = errors.New("admin approval not required for this amount")
	ErrInvalidPaymentAmount     = errors.New("payment does not match the installment due")
	ErrLoanNotActive            = errors.New("loan is not active")
)
