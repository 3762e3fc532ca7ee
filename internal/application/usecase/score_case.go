package usecase

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
)

// ScoreCaseUseCase edits and submits a case's scorecard.
type ScoreCaseUseCase struct {
	cases     port.VerificationCaseRepository
	publisher port.EventPublisher
}

// NewScoreCaseUseCase wires dependencies.
func NewScoreCaseUseCase(
	cases port.VerificationCaseRepository,
	publisher port.EventPublisher,
) *ScoreCaseUseCase {
	return &ScoreCaseUseCase{cases: cases, publisher: publisher}
}

// Execute sets every supplied component from its raw input, then submits the
// scorecard if asked to. Components are applied in display order so the
// outcome does not depend on map iteration.
func (uc *ScoreCaseUseCase) Execute(
	ctx context.Context,
	req dto.ScoreCaseRequest,
) (dto.ScoreCaseResponse, error) {
	now := time.Now().UTC()

	for name := range req.Components {
		if !slices.Contains(model.ScoreComponents(), model.ScoreComponent(name)) {
			return dto.ScoreCaseResponse{}, fmt.Errorf("%w: unknown score component %q", ErrInvalidRequest, name)
		}
	}

	c, err := uc.cases.FindByID(ctx, req.CaseID)
	if err != nil {
		return dto.ScoreCaseResponse{}, fmt.Errorf("find case: %w", err)
	}

	for _, component := range model.ScoreComponents() {
		raw, ok := req.Components[string(component)]
		if !ok {
			continue
		}
		if c, err = c.SetScoreComponentInput(component, raw, now); err != nil {
			return dto.ScoreCaseResponse{}, fmt.Errorf("set %s: %w", component, err)
		}
	}

	alreadySubmitted := false
	if req.Submit {
		var outcome model.SubmitOutcome
		c, outcome, err = c.SubmitScore(now)
		if err != nil {
			return dto.ScoreCaseResponse{}, fmt.Errorf("submit score: %w", err)
		}
		alreadySubmitted = outcome == model.SubmitOutcomeAlreadySubmitted
	}

	if err := uc.cases.Save(ctx, c); err != nil {
		return dto.ScoreCaseResponse{}, fmt.Errorf("save case: %w", err)
	}

	if evts := c.DomainEvents(); len(evts) > 0 {
		if err := uc.publisher.Publish(ctx, evts...); err != nil {
			return dto.ScoreCaseResponse{}, fmt.Errorf("publish events: %w", err)
		}
	}

	return dto.ScoreCaseResponse{
		Case:             toCaseResponse(c),
		AlreadySubmitted: alreadySubmitted,
	}, nil
}
