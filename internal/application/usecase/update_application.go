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

// UpdateApplicationUseCase applies a typed delta to a draft and returns the
// recomputed preview.
type UpdateApplicationUseCase struct {
	drafts    port.DraftStore
	evaluator *service.EligibilityEvaluator
}

// NewUpdateApplicationUseCase wires dependencies.
func NewUpdateApplicationUseCase(
	drafts port.DraftStore,
	evaluator *service.EligibilityEvaluator,
) *UpdateApplicationUseCase {
	return &UpdateApplicationUseCase{drafts: drafts, evaluator: evaluator}
}

// Execute applies every section present in req. The delta is all-or-nothing:
// if any section fails nothing is stored.
func (uc *UpdateApplicationUseCase) Execute(
	ctx context.Context,
	req dto.UpdateApplicationRequest,
) (dto.ApplicationDraftResponse, error) {
	now := time.Now().UTC()

	w, err := uc.drafts.Load(ctx, req.ApplicationID)
	if err != nil {
		return dto.ApplicationDraftResponse{}, fmt.Errorf("load draft: %w", err)
	}

	w, err = applyDelta(w, req, now)
	if err != nil {
		return dto.ApplicationDraftResponse{}, err
	}

	if err := uc.drafts.Save(ctx, w); err != nil {
		return dto.ApplicationDraftResponse{}, fmt.Errorf("save draft: %w", err)
	}

	return toDraftResponse(w, uc.evaluator), nil
}

func applyDelta(w model.ApplicationWizard, req dto.UpdateApplicationRequest, now time.Time) (model.ApplicationWizard, error) {
	var err error

	if req.Applicant != nil {
		employment, perr := valueobject.NewEmploymentType(req.Applicant.EmploymentType)
		if perr != nil {
			return w, fmt.Errorf("parse employment type: %w", perr)
		}
		w, err = w.UpdateApplicant(model.Applicant{
			FullName:                   req.Applicant.FullName,
			Age:                        req.Applicant.Age,
			EmploymentType:             employment,
			MonthlyIncome:              req.Applicant.MonthlyIncome,
			ExistingMonthlyObligations: req.Applicant.ExistingMonthlyObligations,
		}, now)
		if err != nil {
			return w, fmt.Errorf("update applicant: %w", err)
		}
	}

	if req.LoanRequest != nil {
		w, err = w.UpdateLoanRequest(model.LoanRequest{
			Principal:         req.LoanRequest.Principal,
			AnnualRatePercent: req.LoanRequest.AnnualRatePercent,
			TenureMonths:      req.LoanRequest.TenureMonths,
		}, now)
		if err != nil {
			return w, fmt.Errorf("update loan request: %w", err)
		}
	}

	if req.Purpose != "" {
		if w, err = w.SelectPurpose(req.Purpose, now); err != nil {
			return w, fmt.Errorf("select purpose: %w", err)
		}
	}

	if req.UploadDocument != "" {
		if w, err = w.MarkDocumentUploaded(req.UploadDocument, now); err != nil {
			return w, fmt.Errorf("mark document uploaded: %w", err)
		}
	}

	if req.RemoveDocument != "" {
		if w, err = w.RemoveDocument(req.RemoveDocument, now); err != nil {
			return w, fmt.Errorf("remove document: %w", err)
		}
	}

	if req.Consents != nil {
		w, err = w.UpdateConsents(model.Consents{
			ConfirmInfo:    req.Consents.ConfirmInfo,
			AgreeTerms:     req.Consents.AgreeTerms,
			AuthorizeCheck: req.Consents.AuthorizeCheck,
		}, now)
		if err != nil {
			return w, fmt.Errorf("update consents: %w", err)
		}
	}

	return w, nil
}
