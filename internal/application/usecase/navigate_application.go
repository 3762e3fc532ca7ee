package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
	"github.com/bibbank/loan-lifecycle/internal/domain/service"
)

// NavigateApplicationUseCase moves a draft through the wizard. Leaving the
// review step submits the application: it is finalized, persisted and
// announced before the draft itself is stored at step 5.
type NavigateApplicationUseCase struct {
	drafts       port.DraftStore
	applications port.ApplicationRepository
	publisher    port.EventPublisher
	metrics      port.LifecycleMetrics
	evaluator    *service.EligibilityEvaluator
}

// NewNavigateApplicationUseCase wires dependencies.
func NewNavigateApplicationUseCase(
	drafts port.DraftStore,
	applications port.ApplicationRepository,
	publisher port.EventPublisher,
	metrics port.LifecycleMetrics,
	evaluator *service.EligibilityEvaluator,
) *NavigateApplicationUseCase {
	return &NavigateApplicationUseCase{
		drafts:       drafts,
		applications: applications,
		publisher:    publisher,
		metrics:      metrics,
		evaluator:    evaluator,
	}
}

// Execute applies one navigation action.
func (uc *NavigateApplicationUseCase) Execute(
	ctx context.Context,
	req dto.NavigateApplicationRequest,
) (dto.ApplicationDraftResponse, error) {
	now := time.Now().UTC()

	// 1. Load the draft.
	w, err := uc.drafts.Load(ctx, req.ApplicationID)
	if err != nil {
		return dto.ApplicationDraftResponse{}, fmt.Errorf("load draft: %w", err)
	}
	wasSubmitted := w.IsSubmitted()

	// 2. Transition.
	var next model.ApplicationWizard
	switch req.Action {
	case dto.NavigateNext:
		next, err = w.Next(now)
	case dto.NavigateBack:
		next, err = w.Back(now)
	case dto.NavigateShowTimeline:
		next, err = w.ShowTimeline(now)
	case dto.NavigateShowConfirmation:
		next, err = w.ShowConfirmation(now)
	default:
		return dto.ApplicationDraftResponse{}, fmt.Errorf("%w: unknown navigation action %q", ErrInvalidRequest, req.Action)
	}
	if err != nil {
		return dto.ApplicationDraftResponse{}, fmt.Errorf("navigate %s: %w", req.Action, err)
	}

	// 3. Hand a fresh submission to persistence before the draft records it,
	//    so a failed save leaves the draft on the review step.
	if next.IsSubmitted() && !wasSubmitted {
		app, err := next.Finalize()
		if err != nil {
			return dto.ApplicationDraftResponse{}, fmt.Errorf("finalize application: %w", err)
		}
		if err := uc.applications.Save(ctx, app); err != nil {
			return dto.ApplicationDraftResponse{}, fmt.Errorf("save application: %w", err)
		}
	}

	// 4. Announce before the draft moves on. If publishing fails the draft
	//    stays on the review step and the caller can submit again; intake
	//    tolerates the repeated event.
	evts := next.DomainEvents()
	if len(evts) > 0 {
		if err := uc.publisher.Publish(ctx, evts...); err != nil {
			return dto.ApplicationDraftResponse{}, fmt.Errorf("publish events: %w", err)
		}
	}

	// 5. Store the draft.
	if err := uc.drafts.Save(ctx, next); err != nil {
		return dto.ApplicationDraftResponse{}, fmt.Errorf("save draft: %w", err)
	}
	if len(evts) > 0 {
		uc.metrics.ApplicationSubmitted(ctx, next.LoanType().String())
	}

	return toDraftResponse(next, uc.evaluator), nil
}
