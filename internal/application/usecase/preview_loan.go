package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/service"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// PreviewLoanUseCase computes an EMI, schedule and affordability check
// without touching any stored state.
type PreviewLoanUseCase struct {
	evaluator *service.EligibilityEvaluator
}

// NewPreviewLoanUseCase wires dependencies.
func NewPreviewLoanUseCase(evaluator *service.EligibilityEvaluator) *PreviewLoanUseCase {
	return &PreviewLoanUseCase{evaluator: evaluator}
}

// Execute runs the calculation.
func (uc *PreviewLoanUseCase) Execute(
	_ context.Context,
	req dto.PreviewLoanRequest,
) (dto.LoanPreviewResponse, error) {
	rate := valueobject.LoanTypePersonal.AnnualRatePercent()
	if req.LoanType != "" {
		loanType, err := valueobject.NewLoanType(req.LoanType)
		if err != nil {
			return dto.LoanPreviewResponse{}, fmt.Errorf("parse loan type: %w", err)
		}
		rate = loanType.AnnualRatePercent()
	}
	if req.AnnualRatePercent != nil {
		rate = *req.AnnualRatePercent
	}

	loanReq, err := model.NewLoanRequest(req.Principal, rate, req.TenureMonths)
	if err != nil {
		return dto.LoanPreviewResponse{}, fmt.Errorf("build loan request: %w", err)
	}

	schedule, err := model.GenerateSchedule(loanReq, time.Now())
	if err != nil {
		return dto.LoanPreviewResponse{}, fmt.Errorf("generate schedule: %w", err)
	}

	eligibility := uc.evaluator.Evaluate(req.MonthlyIncome, req.ExistingObligations, schedule.MonthlyInstallment())

	return toPreviewResponse(service.LoanPreview{
		Schedule:    schedule,
		Eligibility: eligibility,
	}, req.IncludeSchedule), nil
}
