package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// intakeSubjects are opened for every submitted application, in this order.
var intakeSubjects = []valueobject.SubjectType{
	valueobject.SubjectLoanDocuments,
	valueobject.SubjectKYC,
}

// IntakeApplicationUseCase opens the KYC case and a loan-document case
// covering the applicant's uploads for a submitted application. Running it
// twice opens nothing new.
type IntakeApplicationUseCase struct {
	cases        port.VerificationCaseRepository
	applications port.ApplicationRepository
	publisher    port.EventPublisher
}

// NewIntakeApplicationUseCase wires dependencies.
func NewIntakeApplicationUseCase(
	cases port.VerificationCaseRepository,
	applications port.ApplicationRepository,
	publisher port.EventPublisher,
) *IntakeApplicationUseCase {
	return &IntakeApplicationUseCase{
		cases:        cases,
		applications: applications,
		publisher:    publisher,
	}
}

func (uc *IntakeApplicationUseCase) Execute(
	ctx context.Context,
	req dto.IntakeApplicationRequest,
) (dto.IntakeApplicationResponse, error) {
	now := time.Now().UTC()

	// 1. The application must have been persisted.
	app, err := uc.applications.FindByID(ctx, req.ApplicationID)
	if err != nil {
		return dto.IntakeApplicationResponse{}, fmt.Errorf("find application: %w", err)
	}

	// 2. Skip subjects that already have a case.
	existing, err := uc.cases.FindByApplicationID(ctx, req.ApplicationID)
	if err != nil {
		return dto.IntakeApplicationResponse{}, fmt.Errorf("find cases: %w", err)
	}
	covered := make(map[string]bool, len(existing))
	for _, c := range existing {
		covered[c.SubjectType().String()] = true
	}

	// 3. Open, persist and announce the rest.
	resp := dto.IntakeApplicationResponse{Opened: []dto.VerificationCaseResponse{}}
	for _, subject := range intakeSubjects {
		if covered[subject.String()] {
			continue
		}
		var specs []model.ItemSpec
		if subject.Equal(valueobject.SubjectLoanDocuments) {
			specs = model.LoanDocumentSpecs(app)
		}
		c, err := model.OpenVerificationCase(subject, req.ApplicationID, specs, now)
		if err != nil {
			return resp, fmt.Errorf("open %s case: %w", subject, err)
		}
		err = uc.cases.Save(ctx, c)
		if errors.Is(err, valueobject.ErrDuplicateCase) {
			// A concurrent intake opened it first.
			continue
		}
		if err != nil {
			return resp, fmt.Errorf("save %s case: %w", subject, err)
		}
		if err := uc.publisher.Publish(ctx, c.DomainEvents()...); err != nil {
			return resp, fmt.Errorf("publish events: %w", err)
		}
		resp.Opened = append(resp.Opened, toCaseResponse(c))
	}
	return resp, nil
}
