package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

var _ port.ApplicationRepository = (*ApplicationRepo)(nil)

// ApplicationRepo stores submitted applications. Rows are write-once.
type ApplicationRepo struct {
	pool *pgxpool.Pool
}

// NewApplicationRepo creates a new repository backed by PostgreSQL.
func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

// Save inserts the application. Saving the same ID again is a no-op, so a
// retried submission does not fail.
func (r *ApplicationRepo) Save(ctx context.Context, app model.SubmittedApplication) error {
	query := `
		INSERT INTO submitted_applications (
			id, loan_type, purpose,
			full_name, age, employment_type, monthly_income, existing_monthly_obligations,
			principal, annual_rate_percent, tenure_months, monthly_installment,
			documents, submitted_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (id) DO NOTHING
	`
	documents := app.Documents
	if documents == nil {
		documents = []string{}
	}
	_, err := r.pool.Exec(ctx, query,
		app.ID, app.LoanType.String(), app.Purpose,
		app.Applicant.FullName, app.Applicant.Age, app.Applicant.EmploymentType.String(),
		app.Applicant.MonthlyIncome, app.Applicant.ExistingMonthlyObligations,
		app.LoanRequest.Principal, app.LoanRequest.AnnualRatePercent, app.LoanRequest.TenureMonths,
		app.MonthlyInstallment, documents, app.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("save application: %w", err)
	}
	return nil
}

// FindByID retrieves a submitted application.
func (r *ApplicationRepo) FindByID(ctx context.Context, id string) (model.SubmittedApplication, error) {
	query := `
		SELECT id, loan_type, purpose,
		       full_name, age, employment_type, monthly_income, existing_monthly_obligations,
		       principal, annual_rate_percent, tenure_months, monthly_installment,
		       documents, submitted_at
		FROM submitted_applications
		WHERE id = $1
	`
	return scanApplication(r.pool.QueryRow(ctx, query, id), id)
}

func scanApplication(s scannable, id string) (model.SubmittedApplication, error) {
	var (
		appID, loanTypeStr, purpose         string
		fullName, employmentStr             string
		age, tenureMonths                   int
		income, obligations                 decimal.Decimal
		principal, ratePercent, installment decimal.Decimal
		documents                           []string
		submittedAt                         time.Time
	)
	err := s.Scan(
		&appID, &loanTypeStr, &purpose,
		&fullName, &age, &employmentStr, &income, &obligations,
		&principal, &ratePercent, &tenureMonths, &installment,
		&documents, &submittedAt,
	)
	if err != nil {
		return model.SubmittedApplication{}, notFound(err, "application", id)
	}

	loanType, err := valueobject.NewLoanType(loanTypeStr)
	if err != nil {
		return model.SubmittedApplication{}, fmt.Errorf("parse loan type: %w", err)
	}
	employment, err := valueobject.NewEmploymentType(employmentStr)
	if err != nil {
		return model.SubmittedApplication{}, fmt.Errorf("parse employment type: %w", err)
	}

	return model.SubmittedApplication{
		ID:       appID,
		LoanType: loanType,
		Purpose:  purpose,
		Applicant: model.Applicant{
			FullName:                   fullName,
			Age:                        age,
			EmploymentType:             employment,
			MonthlyIncome:              income,
			ExistingMonthlyObligations: obligations,
		},
		LoanRequest: model.LoanRequest{
			Principal:         principal,
			AnnualRatePercent: ratePercent,
			TenureMonths:      tenureMonths,
		},
		MonthlyInstallment: installment,
		Documents:          documents,
		SubmittedAt:        submittedAt.UTC(),
	}, nil
}
