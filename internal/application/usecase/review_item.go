package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
)

// ReviewItemUseCase verifies, rejects or resets one item of a case.
type ReviewItemUseCase struct {
	cases port.VerificationCaseRepository
}

// NewReviewItemUseCase wires dependencies.
func NewReviewItemUseCase(cases port.VerificationCaseRepository) *ReviewItemUseCase {
	return &ReviewItemUseCase{cases: cases}
}

// Execute applies the reviewer action and stores the case.
func (uc *ReviewItemUseCase) Execute(
	ctx context.Context,
	req dto.ReviewItemRequest,
) (dto.VerificationCaseResponse, error) {
	now := time.Now().UTC()

	c, err := uc.cases.FindByID(ctx, req.CaseID)
	if err != nil {
		return dto.VerificationCaseResponse{}, fmt.Errorf("find case: %w", err)
	}

	var updated model.VerificationCase
	switch req.Action {
	case dto.ItemActionVerify:
		updated, err = c.VerifyItem(req.ItemName, now)
	case dto.ItemActionReject:
		updated, err = c.RejectItem(req.ItemName, now)
	case dto.ItemActionReset:
		updated, err = c.ResetItem(req.ItemName, now)
	default:
		return dto.VerificationCaseResponse{}, fmt.Errorf("%w: unknown item action %q", ErrInvalidRequest, req.Action)
	}
	if err != nil {
		return dto.VerificationCaseResponse{}, fmt.Errorf("%s item: %w", req.Action, err)
	}

	if err := uc.cases.Save(ctx, updated); err != nil {
		return dto.VerificationCaseResponse{}, fmt.Errorf("save case: %w", err)
	}

	return toCaseResponse(updated), nil
}
