package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// DecideSanctionUseCase records a manager or admin decision on a verified
// application. The first manager decision opens the sanction.
type DecideSanctionUseCase struct {
	applications port.ApplicationRepository
	cases        port.VerificationCaseRepository
	sanctions    port.SanctionRepository
	publisher    port.EventPublisher
	metrics      port.LifecycleMetrics
}

// NewDecideSanctionUseCase wires dependencies.
func NewDecideSanctionUseCase(
	applications port.ApplicationRepository,
	cases port.VerificationCaseRepository,
	sanctions port.SanctionRepository,
	publisher port.EventPublisher,
	metrics port.LifecycleMetrics,
) *DecideSanctionUseCase {
	return &DecideSanctionUseCase{
		applications: applications,
		cases:        cases,
		sanctions:    sanctions,
		publisher:    publisher,
		metrics:      metrics,
	}
}

// Execute applies the decision for req.Stage.
func (uc *DecideSanctionUseCase) Execute(
	ctx context.Context,
	req dto.DecideSanctionRequest,
) (dto.SanctionResponse, error) {
	now := time.Now().UTC()

	var decide func(model.Sanction) (model.Sanction, error)
	switch req.Stage {
	case dto.SanctionStageManager:
		decide = func(s model.Sanction) (model.Sanction, error) {
			return s.ManagerDecide(req.ApproverID, req.Approve, req.Notes, now)
		}
	case dto.SanctionStageAdmin:
		decide = func(s model.Sanction) (model.Sanction, error) {
			return s.AdminDecide(req.ApproverID, req.Approve, req.Notes, now)
		}
	default:
		return dto.SanctionResponse{}, fmt.Errorf("%w: unknown sanction stage %q", ErrInvalidRequest, req.Stage)
	}

	// 1. Retrieve the sanction, opening it on first review.
	sanction, err := uc.sanctions.FindByApplicationID(ctx, req.ApplicationID)
	switch {
	case errors.Is(err, valueobject.ErrNotFound):
		if sanction, err = uc.open(ctx, req.ApplicationID, now); err != nil {
			return dto.SanctionResponse{}, err
		}
	case err != nil:
		return dto.SanctionResponse{}, fmt.Errorf("find sanction: %w", err)
	}

	// 2. Decide.
	sanction, err = decide(sanction)
	if err != nil {
		return dto.SanctionResponse{}, fmt.Errorf("%s decision: %w", req.Stage, err)
	}

	// 3. Persist.
	if err := uc.sanctions.Save(ctx, sanction); err != nil {
		return dto.SanctionResponse{}, fmt.Errorf("save sanction: %w", err)
	}

	// 4. Publish domain events.
	if err := uc.publisher.Publish(ctx, sanction.DomainEvents()...); err != nil {
		return dto.SanctionResponse{}, fmt.Errorf("publish events: %w", err)
	}

	uc.metrics.SanctionDecided(ctx, req.Stage, sanction.Status().String())

	return toSanctionResponse(sanction), nil
}

func (uc *DecideSanctionUseCase) open(ctx context.Context, applicationID string, now time.Time) (model.Sanction, error) {
	app, err := uc.applications.FindByID(ctx, applicationID)
	if err != nil {
		return model.Sanction{}, fmt.Errorf("find application: %w", err)
	}
	cases, err := uc.cases.FindByApplicationID(ctx, applicationID)
	if err != nil {
		return model.Sanction{}, fmt.Errorf("find cases: %w", err)
	}
	documents := latestOutcome(cases, valueobject.SubjectLoanDocuments)
	kyc := latestOutcome(cases, valueobject.SubjectKYC)
	s, err := model.OpenSanction(app, documents, kyc, now)
	if err != nil {
		return model.Sanction{}, fmt.Errorf("open sanction: %w", err)
	}
	return s, nil
}
