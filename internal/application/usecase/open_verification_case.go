package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// OpenVerificationCaseUseCase puts a KYC or loan-document bundle in the
// reviewer queue.
type OpenVerificationCaseUseCase struct {
	cases        port.VerificationCaseRepository
	applications port.ApplicationRepository
	publisher    port.EventPublisher
}

// NewOpenVerificationCaseUseCase wires dependencies.
func NewOpenVerificationCaseUseCase(
	cases port.VerificationCaseRepository,
	applications port.ApplicationRepository,
	publisher port.EventPublisher,
) *OpenVerificationCaseUseCase {
	return &OpenVerificationCaseUseCase{
		cases:        cases,
		applications: applications,
		publisher:    publisher,
	}
}

// Execute opens the case. When an application ID is given the application
// must exist.
func (uc *OpenVerificationCaseUseCase) Execute(
	ctx context.Context,
	req dto.OpenVerificationCaseRequest,
) (dto.VerificationCaseResponse, error) {
	subject, err := valueobject.NewSubjectType(req.SubjectType)
	if err != nil {
		return dto.VerificationCaseResponse{}, fmt.Errorf("parse subject type: %w", err)
	}

	specs := make([]model.ItemSpec, 0, len(req.Items))
	for _, in := range req.Items {
		category, err := valueobject.NewDocumentCategory(in.Category)
		if err != nil {
			return dto.VerificationCaseResponse{}, fmt.Errorf("parse category of %q: %w", in.Name, err)
		}
		specs = append(specs, model.ItemSpec{Name: in.Name, Category: category})
	}

	if req.ApplicationID != "" {
		if _, err := uc.applications.FindByID(ctx, req.ApplicationID); err != nil {
			return dto.VerificationCaseResponse{}, fmt.Errorf("find application: %w", err)
		}
	}

	c, err := model.OpenVerificationCase(subject, req.ApplicationID, specs, time.Now().UTC())
	if err != nil {
		return dto.VerificationCaseResponse{}, fmt.Errorf("open case: %w", err)
	}

	if err := uc.cases.Save(ctx, c); err != nil {
		return dto.VerificationCaseResponse{}, fmt.Errorf("save case: %w", err)
	}

	if err := uc.publisher.Publish(ctx, c.DomainEvents()...); err != nil {
		return dto.VerificationCaseResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return toCaseResponse(c), nil
}

// GetVerificationCaseUseCase retrieves a case by ID.
type GetVerificationCaseUseCase struct {
	cases port.VerificationCaseRepository
}

// NewGetVerificationCaseUseCase wires dependencies.
func NewGetVerificationCaseUseCase(cases port.VerificationCaseRepository) *GetVerificationCaseUseCase {
	return &GetVerificationCaseUseCase{cases: cases}
}

// Execute returns the case with its progress.
func (uc *GetVerificationCaseUseCase) Execute(
	ctx context.Context,
	req dto.GetVerificationCaseRequest,
) (dto.VerificationCaseResponse, error) {
	c, err := uc.cases.FindByID(ctx, req.CaseID)
	if err != nil {
		return dto.VerificationCaseResponse{}, fmt.Errorf("find case: %w", err)
	}
	return toCaseResponse(c), nil
}
