package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// SanctionStatus – approval and disbursement stage of a verified application
// ---------------------------------------------------------------------------

// SanctionStatus tracks an application from manager review to disbursement.
type SanctionStatus struct {
	value string
}

const (
	sanctionAwaitingManager = "awaiting-manager"
	sanctionAwaitingAdmin   = "awaiting-admin"
	sanctionApproved        = "approved"
	sanctionRejected        = "rejected"
	sanctionLetterSent      = "letter-sent"
	sanctionSignedReceived  = "signed-received"
	sanctionDisbursed       = "disbursed"
)

var (
	SanctionAwaitingManager = SanctionStatus{value: sanctionAwaitingManager}
	SanctionAwaitingAdmin   = SanctionStatus{value: sanctionAwaitingAdmin}
	SanctionApproved        = SanctionStatus{value: sanctionApproved}
	SanctionRejected        = SanctionStatus{value: sanctionRejected}
	SanctionLetterSent      = SanctionStatus{value: sanctionLetterSent}
	SanctionSignedReceived  = SanctionStatus{value: sanctionSignedReceived}
	SanctionDisbursed       = SanctionStatus{value: sanctionDisbursed}
)

var validSanctionStatuses = map[string]SanctionStatus{
	sanctionAwaitingManager: SanctionAwaitingManager,
	sanctionAwaitingAdmin:   SanctionAwaitingAdmin,
	sanctionApproved:        SanctionApproved,
	sanctionRejected:        SanctionRejected,
	sanctionLetterSent:      SanctionLetterSent,
	sanctionSignedReceived:  SanctionSignedReceived,
	sanctionDisbursed:       SanctionDisbursed,
}

// sanctionRank orders the approved path. Rejected and the waiting states sit
// below approval.
var sanctionRank = map[string]int{
	sanctionApproved:       1,
	sanctionLetterSent:     2,
	sanctionSignedReceived: 3,
	sanctionDisbursed:      4,
}

// NewSanctionStatus creates a SanctionStatus from a raw string.
func NewSanctionStatus(s string) (SanctionStatus, error) {
	v, ok := validSanctionStatuses[s]
	if !ok {
		return SanctionStatus{}, fmt.Errorf("%w: sanction status %q", ErrInvalidValue, s)
	}
	return v, nil
}

func (s SanctionStatus) String() string                  { return s.value }
func (s SanctionStatus) IsZero() bool                    { return s.value == "" }
func (s SanctionStatus) Equal(other SanctionStatus) bool { return s.value == other.value }

// Reached reports whether s is at or beyond other on the approved path.
// Only approved, letter-sent, signed-received and disbursed are ordered.
func (s SanctionStatus) Reached(other SanctionStatus) bool {
	want, ok := sanctionRank[other.value]
	return ok && sanctionRank[s.value] >= want
}

// ---------------------------------------------------------------------------
// LoanStatus – servicing state of a disbursed loan
// ---------------------------------------------------------------------------

// LoanStatus is active until the last installment is paid.
type LoanStatus struct {
	value string
}

const (
	loanStatusActive    = "active"
	loanStatusCompleted = "completed"
)

var (
	LoanStatusActive    = LoanStatus{value: loanStatusActive}
	LoanStatusCompleted = LoanStatus{value: loanStatusCompleted}
)

// NewLoanStatus creates a LoanStatus from a raw string.
func NewLoanStatus(s string) (LoanStatus, error) {
	switch s {
	case loanStatusActive:
		return LoanStatusActive, nil
	case loanStatusCompleted:
		return LoanStatusCompleted, nil
	default:
		return LoanStatus{}, fmt.Errorf("%w: loan status %q", ErrInvalidValue, s)
	}
}

func (s LoanStatus) String() string              { return s.value }
func (s LoanStatus) IsZero() bool                { return s.value == "" }
func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }
