package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// DecideCaseUseCase approves or rejects a verification case and hands the
// decision record to downstream collaborators.
type DecideCaseUseCase struct {
	cases     port.VerificationCaseRepository
	publisher port.EventPublisher
	notifier  port.DecisionNotifier
	metrics   port.LifecycleMetrics
}

// NewDecideCaseUseCase wires dependencies.
func NewDecideCaseUseCase(
	cases port.VerificationCaseRepository,
	publisher port.EventPublisher,
	notifier port.DecisionNotifier,
	metrics port.LifecycleMetrics,
) *DecideCaseUseCase {
	return &DecideCaseUseCase{
		cases:     cases,
		publisher: publisher,
		notifier:  notifier,
		metrics:   metrics,
	}
}

// Execute applies the decision. Each collaborator is called once; a failure
// is returned as-is for the caller to act on.
func (uc *DecideCaseUseCase) Execute(
	ctx context.Context,
	req dto.DecideCaseRequest,
) (dto.DecisionRecordResponse, error) {
	now := time.Now().UTC()

	// 1. Retrieve the case.
	c, err := uc.cases.FindByID(ctx, req.CaseID)
	if err != nil {
		return dto.DecisionRecordResponse{}, fmt.Errorf("find case: %w", err)
	}

	// 2. Decide.
	var decided model.VerificationCase
	switch req.Decision {
	case dto.DecisionApprove:
		decided, err = c.Approve(req.Notes, now)
	case dto.DecisionReject:
		decided, err = c.Reject(valueobject.RejectionReason(req.Reason), req.Notes, now)
	default:
		return dto.DecisionRecordResponse{}, fmt.Errorf("%w: unknown decision %q", ErrInvalidRequest, req.Decision)
	}
	if err != nil {
		return dto.DecisionRecordResponse{}, fmt.Errorf("%s case: %w", req.Decision, err)
	}

	// 3. Persist.
	if err := uc.cases.Save(ctx, decided); err != nil {
		return dto.DecisionRecordResponse{}, fmt.Errorf("save case: %w", err)
	}

	// 4. Publish domain events.
	if err := uc.publisher.Publish(ctx, decided.DomainEvents()...); err != nil {
		return dto.DecisionRecordResponse{}, fmt.Errorf("publish events: %w", err)
	}

	// 5. Notify.
	record := decided.DecisionRecord()
	if err := uc.notifier.NotifyDecision(ctx, record); err != nil {
		return dto.DecisionRecordResponse{}, fmt.Errorf("notify decision: %w", err)
	}

	uc.metrics.CaseDecided(ctx, record.SubjectType, record.Decision)

	return toDecisionRecordResponse(record), nil
}
