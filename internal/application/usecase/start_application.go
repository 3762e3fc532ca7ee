package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
	"github.com/bibbank/loan-lifecycle/internal/domain/service"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// StartApplicationUseCase opens a new application draft.
type StartApplicationUseCase struct {
	drafts    port.DraftStore
	evaluator *service.EligibilityEvaluator
}

// NewStartApplicationUseCase wires dependencies.
func NewStartApplicationUseCase(
	drafts port.DraftStore,
	evaluator *service.EligibilityEvaluator,
) *StartApplicationUseCase {
	return &StartApplicationUseCase{drafts: drafts, evaluator: evaluator}
}

// Execute creates a draft at step 1 and stores it.
func (uc *StartApplicationUseCase) Execute(
	ctx context.Context,
	req dto.StartApplicationRequest,
) (dto.ApplicationDraftResponse, error) {
	loanType, err := valueobject.NewLoanType(req.LoanType)
	if err != nil {
		return dto.ApplicationDraftResponse{}, fmt.Errorf("parse loan type: %w", err)
	}

	w, err := model.NewApplicationWizard(loanType, time.Now().UTC())
	if err != nil {
		return dto.ApplicationDraftResponse{}, fmt.Errorf("create draft: %w", err)
	}

	if err := uc.drafts.Save(ctx, w); err != nil {
		return dto.ApplicationDraftResponse{}, fmt.Errorf("save draft: %w", err)
	}

	return toDraftResponse(w, uc.evaluator), nil
}

// GetApplicationDraftUseCase retrieves a draft by ID.
type GetApplicationDraftUseCase struct {
	drafts    port.DraftStore
	evaluator *service.EligibilityEvaluator
}

// NewGetApplicationDraftUseCase wires dependencies.
func NewGetApplicationDraftUseCase(
	drafts port.DraftStore,
	evaluator *service.EligibilityEvaluator,
) *GetApplicationDraftUseCase {
	return &GetApplicationDraftUseCase{drafts: drafts, evaluator: evaluator}
}

// Execute returns the draft with its live preview.
func (uc *GetApplicationDraftUseCase) Execute(
	ctx context.Context,
	req dto.GetApplicationDraftRequest,
) (dto.ApplicationDraftResponse, error) {
	w, err := uc.drafts.Load(ctx, req.ApplicationID)
	if err != nil {
		return dto.ApplicationDraftResponse{}, fmt.Errorf("load draft: %w", err)
	}
	return toDraftResponse(w, uc.evaluator), nil
}
