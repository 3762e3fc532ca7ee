package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
)

// GetLoanUseCase returns a loan's repayment position.
type GetLoanUseCase struct {
	loans port.LoanRepository
}

// NewGetLoanUseCase wires dependencies.
func NewGetLoanUseCase(loans port.LoanRepository) *GetLoanUseCase {
	return &GetLoanUseCase{loans: loans}
}

// Execute looks the loan up by ID, or by application when no ID is given.
func (uc *GetLoanUseCase) Execute(ctx context.Context, req dto.GetLoanRequest) (dto.LoanResponse, error) {
	var (
		loan model.Loan
		err  error
	)
	switch {
	case req.LoanID != "":
		loan, err = uc.loans.FindByID(ctx, req.LoanID)
	case req.ApplicationID != "":
		loan, err = uc.loans.FindByApplicationID(ctx, req.ApplicationID)
	default:
		return dto.LoanResponse{}, fmt.Errorf("%w: loan ID or application ID is required", ErrInvalidRequest)
	}
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}
	return toLoanResponse(loan), nil
}
