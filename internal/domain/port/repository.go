package port

import (
	"context"

	"github.com/bibbank/loan-lifecycle/internal/domain/event"
	"github.com/bibbank/loan-lifecycle/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// ApplicationRepository stores finalized applications. Lookups of unknown IDs
// fail with valueobject.ErrNotFound.
type ApplicationRepository interface {
	Save(ctx context.Context, app model.SubmittedApplication) error
	FindByID(ctx context.Context, id string) (model.SubmittedApplication, error)
}

// VerificationCaseRepository persists and retrieves verification cases.
type VerificationCaseRepository interface {
	Save(ctx context.Context, c model.VerificationCase) error
	FindByID(ctx context.Context, id string) (model.VerificationCase, error)
	FindByApplicationID(ctx context.Context, applicationID string) ([]model.VerificationCase, error)
}

// SanctionRepository persists the approval workflow of verified
// applications, keyed by application ID.
type SanctionRepository interface {
	Save(ctx context.Context, s model.Sanction) error
	FindByApplicationID(ctx context.Context, applicationID string) (model.Sanction, error)
}

// LoanRepository persists disbursed loans and their payment history.
type LoanRepository interface {
	Save(ctx context.Context, l model.Loan) error
	FindByID(ctx context.Context, id string) (model.Loan, error)
	FindByApplicationID(ctx context.Context, applicationID string) (model.Loan, error)
}

// DraftStore holds in-progress application drafts between requests.
type DraftStore interface {
	Save(ctx context.Context, w model.ApplicationWizard) error
	Load(ctx context.Context, id string) (model.ApplicationWizard, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// Outbound collaborators
// ---------------------------------------------------------------------------

// DecisionNotifier tells downstream collaborators that a case was decided.
type DecisionNotifier interface {
	NotifyDecision(ctx context.Context, record model.DecisionRecord) error
}

// LifecycleMetrics records business counters.
type LifecycleMetrics interface {
	ApplicationSubmitted(ctx context.Context, loanType string)
	CaseDecided(ctx context.Context, subjectType, decision string)
	SanctionDecided(ctx context.Context, stage, status string)
	LoanDisbursed(ctx context.Context, loanType string)
	PaymentReceived(ctx context.Context, loanType string)
}
