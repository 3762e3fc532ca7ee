package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
)

// AdvanceSanctionUseCase sends the sanction letter and records the signed
// copy coming back.
type AdvanceSanctionUseCase struct {
	sanctions port.SanctionRepository
	publisher port.EventPublisher
}

// NewAdvanceSanctionUseCase wires dependencies.
func NewAdvanceSanctionUseCase(sanctions port.SanctionRepository, publisher port.EventPublisher) *AdvanceSanctionUseCase {
	return &AdvanceSanctionUseCase{sanctions: sanctions, publisher: publisher}
}

// Execute applies req.Action.
func (uc *AdvanceSanctionUseCase) Execute(
	ctx context.Context,
	req dto.AdvanceSanctionRequest,
) (dto.SanctionResponse, error) {
	now := time.Now().UTC()

	sanction, err := uc.sanctions.FindByApplicationID(ctx, req.ApplicationID)
	if err != nil {
		return dto.SanctionResponse{}, fmt.Errorf("find sanction: %w", err)
	}

	switch req.Action {
	case dto.SanctionActionSendLetter:
		sanction, err = sanction.SendLetter(now)
	case dto.SanctionActionSignedReceived:
		sanction, err = sanction.MarkSignedReceived(now)
	default:
		return dto.SanctionResponse{}, fmt.Errorf("%w: unknown sanction action %q", ErrInvalidRequest, req.Action)
	}
	if err != nil {
		return dto.SanctionResponse{}, fmt.Errorf("%s: %w", req.Action, err)
	}

	if err := uc.sanctions.Save(ctx, sanction); err != nil {
		return dto.SanctionResponse{}, fmt.Errorf("save sanction: %w", err)
	}
	if err := uc.publisher.Publish(ctx, sanction.DomainEvents()...); err != nil {
		return dto.SanctionResponse{}, fmt.Errorf("publish events: %w", err)
	}
	return toSanctionResponse(sanction), nil
}
