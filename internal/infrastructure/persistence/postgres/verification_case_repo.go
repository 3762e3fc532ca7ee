package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
	pkgpostgres "github.com/bibbank/loan-lifecycle/pkg/postgres"
)

var _ port.VerificationCaseRepository = (*VerificationCaseRepo)(nil)

// VerificationCaseRepo implements port.VerificationCaseRepository. Items
// live in a child table and are rewritten on every save.
type VerificationCaseRepo struct {
	pool *pgxpool.Pool
}

// NewVerificationCaseRepo creates a new PostgreSQL-backed case repository.
func NewVerificationCaseRepo(pool *pgxpool.Pool) *VerificationCaseRepo {
	return &VerificationCaseRepo{pool: pool}
}

const caseColumns = `
	id, application_id, subject_type, decision, decision_notes, rejection_reason, decided_at,
	has_score, score_income_stability, score_existing_emi_burden,
	score_employment_type, score_document_quality, score_submitted_at,
	version, created_at, updated_at`

// openSubjectIndex keeps one live case per application subject.
const openSubjectIndex = "uq_verification_cases_open_subject"

// Save upserts the case and its items. An update is only applied when the
// incoming version is newer than the stored one. Opening a second live case
// for the same application subject fails with valueobject.ErrDuplicateCase.
func (r *VerificationCaseRepo) Save(ctx context.Context, c model.VerificationCase) error {
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO verification_cases (` + caseColumns + `
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
			ON CONFLICT (id) DO UPDATE SET
				decision                  = EXCLUDED.decision,
				decision_notes            = EXCLUDED.decision_notes,
				rejection_reason          = EXCLUDED.rejection_reason,
				decided_at                = EXCLUDED.decided_at,
				has_score                 = EXCLUDED.has_score,
				score_income_stability    = EXCLUDED.score_income_stability,
				score_existing_emi_burden = EXCLUDED.score_existing_emi_burden,
				score_employment_type     = EXCLUDED.score_employment_type,
				score_document_quality    = EXCLUDED.score_document_quality,
				score_submitted_at        = EXCLUDED.score_submitted_at,
				version                   = EXCLUDED.version,
				updated_at                = EXCLUDED.updated_at
			WHERE verification_cases.version < EXCLUDED.version
		`
		score, hasScore := c.Score()
		tag, err := tx.Exec(ctx, query,
			c.ID(), c.ApplicationID(), c.SubjectType().String(),
			c.Decision().String(), c.DecisionNotes(), string(c.RejectionReason()), c.DecidedAt(),
			hasScore,
			score.Component(model.ComponentIncomeStability),
			score.Component(model.ComponentExistingEMIBurden),
			score.Component(model.ComponentEmploymentType),
			score.Component(model.ComponentDocumentQuality),
			score.SubmittedAt(),
			c.Version(), c.CreatedAt(), c.UpdatedAt(),
		)
		if violates(err, openSubjectIndex) {
			return fmt.Errorf("%w: %s for application %s",
				valueobject.ErrDuplicateCase, c.SubjectType(), c.ApplicationID())
		}
		if err != nil {
			return fmt.Errorf("save verification case: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: verification case %s at version %d",
				valueobject.ErrVersionConflict, c.ID(), c.Version())
		}

		return saveItems(ctx, tx, c)
	})
}

func saveItems(ctx context.Context, q pkgpostgres.Querier, c model.VerificationCase) error {
	if _, err := q.Exec(ctx, `DELETE FROM verification_items WHERE case_id = $1`, c.ID()); err != nil {
		return fmt.Errorf("clear verification items: %w", err)
	}
	for pos, item := range c.Items() {
		_, err := q.Exec(ctx, `
			INSERT INTO verification_items (case_id, position, name, category, status, reviewed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, c.ID(), pos, item.Name(), item.Category().String(), item.Status().String(), item.ReviewedAt())
		if err != nil {
			return fmt.Errorf("save verification item %q: %w", item.Name(), err)
		}
	}
	return nil
}

// FindByID retrieves a case with its items.
func (r *VerificationCaseRepo) FindByID(ctx context.Context, id string) (model.VerificationCase, error) {
	query := `SELECT ` + caseColumns + ` FROM verification_cases WHERE id = $1`

	row, err := scanCaseRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return model.VerificationCase{}, notFound(err, "verification case", id)
	}
	return r.withItems(ctx, row)
}

// FindByApplicationID returns every case opened for an application, oldest first.
func (r *VerificationCaseRepo) FindByApplicationID(ctx context.Context, applicationID string) ([]model.VerificationCase, error) {
	query := `SELECT ` + caseColumns + `
		FROM verification_cases
		WHERE application_id = $1
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("query verification cases: %w", err)
	}
	var heads []caseRow
	for rows.Next() {
		row, err := scanCaseRow(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan verification case: %w", err)
		}
		heads = append(heads, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verification cases: %w", err)
	}

	cases := make([]model.VerificationCase, 0, len(heads))
	for _, h := range heads {
		c, err := r.withItems(ctx, h)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

type caseRow struct {
	id, applicationID, subject, decision string
	notes, reason                        string
	decidedAt                            *time.Time
	hasScore                             bool
	income, emiBurden                    int
	employment, documents                int
	scoreSubmittedAt                     *time.Time
	version                              int
	createdAt, updatedAt                 time.Time
}

func scanCaseRow(s scannable) (caseRow, error) {
	var r caseRow
	err := s.Scan(
		&r.id, &r.applicationID, &r.subject, &r.decision, &r.notes, &r.reason, &r.decidedAt,
		&r.hasScore, &r.income, &r.emiBurden,
		&r.employment, &r.documents, &r.scoreSubmittedAt,
		&r.version, &r.createdAt, &r.updatedAt,
	)
	return r, err
}

func (r *VerificationCaseRepo) withItems(ctx context.Context, h caseRow) (model.VerificationCase, error) {
	subject, err := valueobject.NewSubjectType(h.subject)
	if err != nil {
		return model.VerificationCase{}, fmt.Errorf("parse subject type: %w", err)
	}
	decision, err := valueobject.NewCaseDecision(h.decision)
	if err != nil {
		return model.VerificationCase{}, fmt.Errorf("parse decision: %w", err)
	}

	items, err := r.loadItems(ctx, h.id)
	if err != nil {
		return model.VerificationCase{}, err
	}

	var score *model.ScoreBreakdown
	if h.hasScore {
		sb := model.ReconstructScoreBreakdown(h.income, h.emiBurden, h.employment, h.documents, utcPtr(h.scoreSubmittedAt))
		score = &sb
	}

	return model.ReconstructVerificationCase(
		h.id, h.applicationID, subject, items, score,
		decision, h.notes, valueobject.RejectionReason(h.reason), utcPtr(h.decidedAt),
		h.version, h.createdAt.UTC(), h.updatedAt.UTC(),
	), nil
}

func (r *VerificationCaseRepo) loadItems(ctx context.Context, caseID string) ([]model.VerificationItem, error) {
	query := `
		SELECT name, category, status, reviewed_at
		FROM verification_items
		WHERE case_id = $1
		ORDER BY position
	`
	rows, err := r.pool.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("query verification items: %w", err)
	}
	defer rows.Close()

	var items []model.VerificationItem
	for rows.Next() {
		var (
			name, categoryStr, statusStr string
			reviewedAt                   *time.Time
		)
		if err := rows.Scan(&name, &categoryStr, &statusStr, &reviewedAt); err != nil {
			return nil, fmt.Errorf("scan verification item: %w", err)
		}
		category, err := valueobject.NewDocumentCategory(categoryStr)
		if err != nil {
			return nil, fmt.Errorf("parse item category: %w", err)
		}
		status, err := valueobject.NewItemStatus(statusStr)
		if err != nil {
			return nil, fmt.Errorf("parse item status: %w", err)
		}
		items = append(items, model.ReconstructVerificationItem(name, category, status, utcPtr(reviewedAt)))
	}
	return items, rows.Err()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
