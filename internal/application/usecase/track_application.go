package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// TrackApplicationUseCase projects the status timeline of a submitted
// application from its verification cases and sanction.
type TrackApplicationUseCase struct {
	applications port.ApplicationRepository
	cases        port.VerificationCaseRepository
	sanctions    port.SanctionRepository
}

// NewTrackApplicationUseCase wires dependencies.
func NewTrackApplicationUseCase(
	applications port.ApplicationRepository,
	cases port.VerificationCaseRepository,
	sanctions port.SanctionRepository,
) *TrackApplicationUseCase {
	return &TrackApplicationUseCase{applications: applications, cases: cases, sanctions: sanctions}
}

// Execute builds the timeline. When a subject has several cases, the most
// recently opened one counts.
func (uc *TrackApplicationUseCase) Execute(
	ctx context.Context,
	req dto.TrackApplicationRequest,
) (dto.TrackApplicationResponse, error) {
	app, err := uc.applications.FindByID(ctx, req.ApplicationID)
	if err != nil {
		return dto.TrackApplicationResponse{}, fmt.Errorf("find application: %w", err)
	}

	cases, err := uc.cases.FindByApplicationID(ctx, req.ApplicationID)
	if err != nil {
		return dto.TrackApplicationResponse{}, fmt.Errorf("find cases: %w", err)
	}

	documents := latestOutcome(cases, valueobject.SubjectLoanDocuments)
	kyc := latestOutcome(cases, valueobject.SubjectKYC)

	var sanction *model.Sanction
	s, err := uc.sanctions.FindByApplicationID(ctx, req.ApplicationID)
	switch {
	case err == nil:
		sanction = &s
	case !errors.Is(err, valueobject.ErrNotFound):
		return dto.TrackApplicationResponse{}, fmt.Errorf("find sanction: %w", err)
	}

	return toTrackResponse(app.ID, model.ProjectLifecycle(app, documents, kyc, sanction)), nil
}

func latestOutcome(cases []model.VerificationCase, subject valueobject.SubjectType) *model.CaseOutcome {
	var latest *model.VerificationCase
	for i := range cases {
		c := &cases[i]
		if !c.SubjectType().Equal(subject) {
			continue
		}
		if latest == nil || c.CreatedAt().After(latest.CreatedAt()) {
			latest = c
		}
	}
	if latest == nil {
		return nil
	}
	outcome := model.OutcomeOf(*latest)
	return &outcome
}
