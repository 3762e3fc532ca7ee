package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/domain/event"
	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// DisburseLoanUseCase turns a sanction whose signed letter is back into an
// active loan.
type DisburseLoanUseCase struct {
	applications port.ApplicationRepository
	sanctions    port.SanctionRepository
	loans        port.LoanRepository
	publisher    port.EventPublisher
	metrics      port.LifecycleMetrics
}

// NewDisburseLoanUseCase wires dependencies.
func NewDisburseLoanUseCase(
	applications port.ApplicationRepository,
	sanctions port.SanctionRepository,
	loans port.LoanRepository,
	publisher port.EventPublisher,
	metrics port.LifecycleMetrics,
) *DisburseLoanUseCase {
	return &DisburseLoanUseCase{
		applications: applications,
		sanctions:    sanctions,
		loans:        loans,
		publisher:    publisher,
		metrics:      metrics,
	}
}

// Execute disburses the loan. Repeating it for a disbursed sanction returns
// the existing loan. A loan left behind by an earlier attempt whose sanction
// save failed is reused rather than duplicated.
func (uc *DisburseLoanUseCase) Execute(
	ctx context.Context,
	req dto.DisburseLoanRequest,
) (dto.DisburseLoanResponse, error) {
	now := time.Now().UTC()

	// 1. Retrieve the sanction.
	sanction, err := uc.sanctions.FindByApplicationID(ctx, req.ApplicationID)
	if err != nil {
		return dto.DisburseLoanResponse{}, fmt.Errorf("find sanction: %w", err)
	}
	if sanction.Status().Equal(valueobject.SanctionDisbursed) {
		loan, err := uc.loans.FindByApplicationID(ctx, req.ApplicationID)
		if err != nil {
			return dto.DisburseLoanResponse{}, fmt.Errorf("find loan: %w", err)
		}
		return dto.DisburseLoanResponse{Sanction: toSanctionResponse(sanction), Loan: toLoanResponse(loan)}, nil
	}

	// 2. Only a signed sanction can be disbursed.
	sanction, err = sanction.Disburse(now)
	if err != nil {
		return dto.DisburseLoanResponse{}, fmt.Errorf("disburse: %w", err)
	}

	// 3. Create the loan unless an earlier attempt already stored it.
	loan, err := uc.loans.FindByApplicationID(ctx, req.ApplicationID)
	switch {
	case errors.Is(err, valueobject.ErrNotFound):
		app, err := uc.applications.FindByID(ctx, req.ApplicationID)
		if err != nil {
			return dto.DisburseLoanResponse{}, fmt.Errorf("find application: %w", err)
		}
		if loan, err = model.NewLoan(app, now); err != nil {
			return dto.DisburseLoanResponse{}, fmt.Errorf("create loan: %w", err)
		}
		if err := uc.loans.Save(ctx, loan); err != nil {
			return dto.DisburseLoanResponse{}, fmt.Errorf("save loan: %w", err)
		}
	case err != nil:
		return dto.DisburseLoanResponse{}, fmt.Errorf("find loan: %w", err)
	}

	// 4. Persist the sanction.
	if err := uc.sanctions.Save(ctx, sanction); err != nil {
		return dto.DisburseLoanResponse{}, fmt.Errorf("save sanction: %w", err)
	}

	// 5. Publish domain events.
	evts := append([]event.DomainEvent{}, sanction.DomainEvents()...)
	evts = append(evts, loan.DomainEvents()...)
	if err := uc.publisher.Publish(ctx, evts...); err != nil {
		return dto.DisburseLoanResponse{}, fmt.Errorf("publish events: %w", err)
	}

	uc.metrics.LoanDisbursed(ctx, loan.LoanType().String())

	return dto.DisburseLoanResponse{Sanction: toSanctionResponse(sanction), Loan: toLoanResponse(loan)}, nil
}
