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

var _ port.SanctionRepository = (*SanctionRepo)(nil)

// SanctionRepo implements port.SanctionRepository.
type SanctionRepo struct {
	pool *pgxpool.Pool
}

// NewSanctionRepo creates a new PostgreSQL-backed sanction repository.
func NewSanctionRepo(pool *pgxpool.Pool) *SanctionRepo {
	return &SanctionRepo{pool: pool}
}

const sanctionColumns = `
	application_id, principal, status,
	manager_id, manager_decided_at, admin_id, admin_decided_at, notes,
	letter_sent_at, signed_received_at, disbursed_at,
	version, created_at, updated_at`

// Save upserts the sanction when the incoming version is newer.
func (r *SanctionRepo) Save(ctx context.Context, s model.Sanction) error {
	query := `
		INSERT INTO sanctions (` + sanctionColumns + `
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (application_id) DO UPDATE SET
			status             = EXCLUDED.status,
			manager_id         = EXCLUDED.manager_id,
			manager_decided_at = EXCLUDED.manager_decided_at,
			admin_id           = EXCLUDED.admin_id,
			admin_decided_at   = EXCLUDED.admin_decided_at,
			notes              = EXCLUDED.notes,
			letter_sent_at     = EXCLUDED.letter_sent_at,
			signed_received_at = EXCLUDED.signed_received_at,
			disbursed_at       = EXCLUDED.disbursed_at,
			version            = EXCLUDED.version,
			updated_at         = EXCLUDED.updated_at
		WHERE sanctions.version < EXCLUDED.version
	`
	tag, err := r.pool.Exec(ctx, query,
		s.ApplicationID(), s.Principal(), s.Status().String(),
		s.ManagerID(), s.ManagerDecidedAt(), s.AdminID(), s.AdminDecidedAt(), s.Notes(),
		s.LetterSentAt(), s.SignedReceivedAt(), s.DisbursedAt(),
		s.Version(), s.CreatedAt(), s.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save sanction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: sanction %s at version %d",
			valueobject.ErrVersionConflict, s.ApplicationID(), s.Version())
	}
	return nil
}

// FindByApplicationID retrieves the sanction of an application.
func (r *SanctionRepo) FindByApplicationID(ctx context.Context, applicationID string) (model.Sanction, error) {
	query := `SELECT ` + sanctionColumns + ` FROM sanctions WHERE application_id = $1`

	var (
		appID, statusStr, managerID, adminID, notes string
		principal                                   decimal.Decimal
		managerAt, adminAt                          *time.Time
		letterAt, signedAt, disbursedAt             *time.Time
		version                                     int
		createdAt, updatedAt                        time.Time
	)
	err := r.pool.QueryRow(ctx, query, applicationID).Scan(
		&appID, &principal, &statusStr,
		&managerID, &managerAt, &adminID, &adminAt, &notes,
		&letterAt, &signedAt, &disbursedAt,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Sanction{}, notFound(err, "sanction", applicationID)
	}

	status, err := valueobject.NewSanctionStatus(statusStr)
	if err != nil {
		return model.Sanction{}, fmt.Errorf("parse sanction status: %w", err)
	}

	return model.ReconstructSanction(
		appID, principal, status,
		managerID, utcPtr(managerAt),
		adminID, utcPtr(adminAt),
		notes,
		utcPtr(letterAt), utcPtr(signedAt), utcPtr(disbursedAt),
		version, createdAt.UTC(), updatedAt.UTC(),
	), nil
}
