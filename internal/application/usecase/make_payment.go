package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
)

// MakePaymentUseCase pays the next installment of an active loan.
type MakePaymentUseCase struct {
	loans     port.LoanRepository
	publisher port.EventPublisher
	metrics   port.LifecycleMetrics
}

// NewMakePaymentUseCase wires dependencies.
func NewMakePaymentUseCase(
	loans port.LoanRepository,
	publisher port.EventPublisher,
	metrics port.LifecycleMetrics,
) *MakePaymentUseCase {
	return &MakePaymentUseCase{
		loans:     loans,
		publisher: publisher,
		metrics:   metrics,
	}
}

// Execute processes one installment payment.
func (uc *MakePaymentUseCase) Execute(
	ctx context.Context,
	req dto.MakePaymentRequest,
) (dto.MakePaymentResponse, error) {
	now := time.Now().UTC()

	// 1. Retrieve the loan.
	loan, err := uc.loans.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.MakePaymentResponse{}, fmt.Errorf("find loan: %w", err)
	}

	// 2. Apply payment.
	due, _ := loan.NextInstallment()
	paid := due.Total
	if req.Amount != nil {
		paid = *req.Amount
	}
	loan, err = loan.MakePayment(paid, now)
	if err != nil {
		return dto.MakePaymentResponse{}, fmt.Errorf("make payment: %w", err)
	}

	// 3. Persist updated loan.
	if err := uc.loans.Save(ctx, loan); err != nil {
		return dto.MakePaymentResponse{}, fmt.Errorf("save loan: %w", err)
	}

	// 4. Publish events.
	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		return dto.MakePaymentResponse{}, fmt.Errorf("publish events: %w", err)
	}

	uc.metrics.PaymentReceived(ctx, loan.LoanType().String())

	resp := toLoanResponse(loan)
	return dto.MakePaymentResponse{
		Payment: resp.Payments[len(resp.Payments)-1],
		Loan:    resp,
	}, nil
}
