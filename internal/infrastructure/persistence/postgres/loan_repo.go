package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
	pkgpostgres "github.com/bibbank/loan-lifecycle/pkg/postgres"
)

var _ port.LoanRepository = (*LoanRepo)(nil)

// LoanRepo implements port.LoanRepository. The schedule is not stored; it is
// regenerated from the loan terms and disbursement date on load. Payments
// are append-only rows in loan_payments.
type LoanRepo struct {
	pool *pgxpool.Pool
}

// NewLoanRepo creates a new PostgreSQL-backed loan repository.
func NewLoanRepo(pool *pgxpool.Pool) *LoanRepo {
	return &LoanRepo{pool: pool}
}

const loanColumns = `
	id, application_id, loan_type,
	principal, annual_rate_percent, tenure_months,
	status, disbursed_at, version, created_at, updated_at`

// applicationLoanIndex allows one loan per application.
const applicationLoanIndex = "loans_application_id_key"

// Save upserts the loan head and appends any new payments. Disbursing a
// second loan for the same application fails with
// valueobject.ErrVersionConflict.
func (r *LoanRepo) Save(ctx context.Context, l model.Loan) error {
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO loans (` + loanColumns + `
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (id) DO UPDATE SET
				status     = EXCLUDED.status,
				version    = EXCLUDED.version,
				updated_at = EXCLUDED.updated_at
			WHERE loans.version < EXCLUDED.version
		`
		req := l.Request()
		tag, err := tx.Exec(ctx, query,
			l.ID(), l.ApplicationID(), l.LoanType().String(),
			req.Principal, req.AnnualRatePercent, req.TenureMonths,
			l.Status().String(), l.DisbursedAt(), l.Version(), l.CreatedAt(), l.UpdatedAt(),
		)
		if violates(err, applicationLoanIndex) {
			return fmt.Errorf("%w: application %s already has a loan",
				valueobject.ErrVersionConflict, l.ApplicationID())
		}
		if err != nil {
			return fmt.Errorf("save loan: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: loan %s at version %d",
				valueobject.ErrVersionConflict, l.ID(), l.Version())
		}

		for _, p := range l.Payments() {
			_, err := tx.Exec(ctx, `
				INSERT INTO loan_payments (
					loan_id, sequence, amount, principal, interest, balance_after, due_date, paid_at
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
				ON CONFLICT (loan_id, sequence) DO NOTHING
			`, l.ID(), p.Sequence, p.Amount, p.Principal, p.Interest, p.BalanceAfter, p.DueDate, p.PaidAt)
			if err != nil {
				return fmt.Errorf("save payment %d: %w", p.Sequence, err)
			}
		}
		return nil
	})
}

// FindByID retrieves a loan with its payments.
func (r *LoanRepo) FindByID(ctx context.Context, id string) (model.Loan, error) {
	return r.find(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
}

// FindByApplicationID retrieves the loan disbursed for an application.
func (r *LoanRepo) FindByApplicationID(ctx context.Context, applicationID string) (model.Loan, error) {
	return r.find(ctx, `SELECT `+loanColumns+` FROM loans WHERE application_id = $1`, applicationID)
}

func (r *LoanRepo) find(ctx context.Context, query, key string) (model.Loan, error) {
	var (
		id, appID, loanTypeStr, statusStr string
		principal, ratePercent            decimal.Decimal
		tenure, version                   int
		disbursedAt, createdAt, updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx, query, key).Scan(
		&id, &appID, &loanTypeStr,
		&principal, &ratePercent, &tenure,
		&statusStr, &disbursedAt, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Loan{}, notFound(err, "loan", key)
	}

	loanType, err := valueobject.NewLoanType(loanTypeStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan type: %w", err)
	}
	status, err := valueobject.NewLoanStatus(statusStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan status: %w", err)
	}
	payments, err := r.payments(ctx, id)
	if err != nil {
		return model.Loan{}, err
	}

	return model.ReconstructLoan(
		id, appID, loanType,
		model.LoanRequest{Principal: principal, AnnualRatePercent: ratePercent, TenureMonths: tenure},
		disbursedAt.UTC(), status, payments,
		version, createdAt.UTC(), updatedAt.UTC(),
	)
}

func (r *LoanRepo) payments(ctx context.Context, loanID string) ([]model.Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT sequence, amount, principal, interest, balance_after, due_date, paid_at
		FROM loan_payments
		WHERE loan_id = $1
		ORDER BY sequence
	`, loanID)
	if err != nil {
		return nil, fmt.Errorf("query loan payments: %w", err)
	}
	defer rows.Close()

	var out []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.Sequence, &p.Amount, &p.Principal, &p.Interest, &p.BalanceAfter, &p.DueDate, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("scan loan payment: %w", err)
		}
		p.DueDate = p.DueDate.UTC()
		p.PaidAt = p.PaidAt.UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loan payments: %w", err)
	}
	return out, nil
}
