package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-lifecycle/internal/domain/event"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Sanction aggregate root
// ---------------------------------------------------------------------------

// AdminApprovalThreshold is the largest principal a manager may sanction
// alone. Anything above it also needs an admin.
var AdminApprovalThreshold = decimal.NewFromInt(1_500_000)

// Decision stages of a sanction.
const (
	StageManager = "manager"
	StageAdmin   = "admin"
)

// Sanction carries a verified application through approval, the sanction
// letter and disbursement. There is at most one per application and it is
// keyed by the application ID. Mutations return a new copy.
type Sanction struct {
	applicationID    string
	principal        decimal.Decimal
	status           valueobject.SanctionStatus
	managerID        string
	managerDecidedAt *time.Time
	adminID          string
	adminDecidedAt   *time.Time
	notes            string
	letterSentAt     *time.Time
	signedAt         *time.Time
	disbursedAt      *time.Time
	version          int
	createdAt        time.Time
	updatedAt        time.Time
	domainEvents     []event.DomainEvent
}

// OpenSanction puts app in front of a manager. Both its loan-document and
// KYC cases must be approved.
func OpenSanction(app SubmittedApplication, documents, kyc *CaseOutcome, now time.Time) (Sanction, error) {
	if !approved(documents) || !approved(kyc) {
		return Sanction{}, fmt.Errorf("%w: application %s is not fully verified",
			valueobject.ErrApprovalPreconditionUnmet, app.ID)
	}
	return Sanction{
		applicationID: app.ID,
		principal:     app.LoanRequest.Principal,
		status:        valueobject.SanctionAwaitingManager,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructSanction rebuilds a Sanction from persistence.
func ReconstructSanction(
	applicationID string,
	principal decimal.Decimal,
	status valueobject.SanctionStatus,
	managerID string, managerDecidedAt *time.Time,
	adminID string, adminDecidedAt *time.Time,
	notes string,
	letterSentAt, signedAt, disbursedAt *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) Sanction {
	return Sanction{
		applicationID:    applicationID,
		principal:        principal,
		status:           status,
		managerID:        managerID,
		managerDecidedAt: managerDecidedAt,
		adminID:          adminID,
		adminDecidedAt:   adminDecidedAt,
		notes:            notes,
		letterSentAt:     letterSentAt,
		signedAt:         signedAt,
		disbursedAt:      disbursedAt,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// ---------------------------------------------------------------------------
// Decisions
// ---------------------------------------------------------------------------

// RequiresAdminApproval is true when the principal exceeds
// AdminApprovalThreshold.
func (s Sanction) RequiresAdminApproval() bool {
	return s.principal.GreaterThan(AdminApprovalThreshold)
}

// ManagerDecide records the manager's decision. An approval is final up to
// AdminApprovalThreshold and otherwise refers the sanction to an admin.
func (s Sanction) ManagerDecide(managerID string, approve bool, notes string, now time.Time) (Sanction, error) {
	if managerID == "" {
		return s, fmt.Errorf("%w: approver ID is required", valueobject.ErrInvalidValue)
	}
	if !s.status.Equal(valueobject.SanctionAwaitingManager) {
		return s, fmt.Errorf("%w: sanction %s is %s, not awaiting a manager",
			valueobject.ErrInvalidStatusTransition, s.applicationID, s.status)
	}

	next := s.touch(now)
	at := now
	next.managerID = managerID
	next.managerDecidedAt = &at
	next.notes = notes
	switch {
	case !approve:
		next.status = valueobject.SanctionRejected
	case s.RequiresAdminApproval():
		next.status = valueobject.SanctionAwaitingAdmin
	default:
		next.status = valueobject.SanctionApproved
	}
	next.domainEvents = append(next.domainEvents, event.NewSanctionDecided(
		s.applicationID, StageManager, approve, next.status.String(), managerID, s.principal, notes, now,
	))
	return next, nil
}

// AdminDecide records the final decision on a sanction above the threshold.
// Sanctions within the manager's limit cannot be overridden.
func (s Sanction) AdminDecide(adminID string, approve bool, notes string, now time.Time) (Sanction, error) {
	if adminID == "" {
		return s, fmt.Errorf("%w: approver ID is required", valueobject.ErrInvalidValue)
	}
	if !s.RequiresAdminApproval() {
		return s, fmt.Errorf("%w: principal %s is within the manager's limit",
			valueobject.ErrAdminApprovalNotRequired, s.principal)
	}
	if !s.status.Equal(valueobject.SanctionAwaitingAdmin) {
		return s, fmt.Errorf("%w: sanction %s is %s, not awaiting an admin",
			valueobject.ErrInvalidStatusTransition, s.applicationID, s.status)
	}

	next := s.touch(now)
	at := now
	next.adminID = adminID
	next.adminDecidedAt = &at
	if notes != "" {
		next.notes = notes
	}
	next.status = valueobject.SanctionRejected
	if approve {
		next.status = valueobject.SanctionApproved
	}
	next.domainEvents = append(next.domainEvents, event.NewSanctionDecided(
		s.applicationID, StageAdmin, approve, next.status.String(), adminID, s.principal, notes, now,
	))
	return next, nil
}

// ---------------------------------------------------------------------------
// After approval
// ---------------------------------------------------------------------------

// SendLetter moves approved to letter-sent.
func (s Sanction) SendLetter(now time.Time) (Sanction, error) {
	next, err := s.advance(valueobject.SanctionApproved, valueobject.SanctionLetterSent, now)
	if err != nil {
		return s, err
	}
	at := now
	next.letterSentAt = &at
	next.domainEvents = append(next.domainEvents, event.NewSanctionAdvanced(s.applicationID, next.status.String(), now))
	return next, nil
}

// MarkSignedReceived moves letter-sent to signed-received.
func (s Sanction) MarkSignedReceived(now time.Time) (Sanction, error) {
	next, err := s.advance(valueobject.SanctionLetterSent, valueobject.SanctionSignedReceived, now)
	if err != nil {
		return s, err
	}
	at := now
	next.signedAt = &at
	next.domainEvents = append(next.domainEvents, event.NewSanctionAdvanced(s.applicationID, next.status.String(), now))
	return next, nil
}

// Disburse moves signed-received to disbursed. The loan itself is created by
// NewLoan.
func (s Sanction) Disburse(now time.Time) (Sanction, error) {
	next, err := s.advance(valueobject.SanctionSignedReceived, valueobject.SanctionDisbursed, now)
	if err != nil {
		return s, err
	}
	at := now
	next.disbursedAt = &at
	return next, nil
}

func (s Sanction) advance(from, to valueobject.SanctionStatus, now time.Time) (Sanction, error) {
	if !s.status.Equal(from) {
		return s, fmt.Errorf("%w: sanction %s is %s, want %s",
			valueobject.ErrInvalidStatusTransition, s.applicationID, s.status, from)
	}
	next := s.touch(now)
	next.status = to
	return next, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (s Sanction) ApplicationID() string              { return s.applicationID }
func (s Sanction) Principal() decimal.Decimal         { return s.principal }
func (s Sanction) Status() valueobject.SanctionStatus { return s.status }
func (s Sanction) ManagerID() string                  { return s.managerID }
func (s Sanction) ManagerDecidedAt() *time.Time       { return s.managerDecidedAt }
func (s Sanction) AdminID() string                    { return s.adminID }
func (s Sanction) AdminDecidedAt() *time.Time         { return s.adminDecidedAt }
func (s Sanction) Notes() string                      { return s.notes }
func (s Sanction) LetterSentAt() *time.Time           { return s.letterSentAt }
func (s Sanction) SignedReceivedAt() *time.Time       { return s.signedAt }
func (s Sanction) DisbursedAt() *time.Time            { return s.disbursedAt }
func (s Sanction) Version() int                       { return s.version }
func (s Sanction) CreatedAt() time.Time               { return s.createdAt }
func (s Sanction) UpdatedAt() time.Time               { return s.updatedAt }
func (s Sanction) DomainEvents() []event.DomainEvent  { return s.domainEvents }

// ApprovedAt is when the final approving decision was made, or nil.
func (s Sanction) ApprovedAt() *time.Time {
	if !s.status.Reached(valueobject.SanctionApproved) {
		return nil
	}
	if s.RequiresAdminApproval() {
		return s.adminDecidedAt
	}
	return s.managerDecidedAt
}

// ClearEvents returns a copy with an empty event list.
func (s Sanction) ClearEvents() Sanction {
	next := s
	next.domainEvents = nil
	return next
}

func (s Sanction) touch(now time.Time) Sanction {
	next := s
	next.updatedAt = now
	next.version++
	next.domainEvents = copyEvents(s.domainEvents)
	return next
}
