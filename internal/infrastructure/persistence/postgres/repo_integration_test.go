//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
	pgrepo "github.com/bibbank/loan-lifecycle/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/loan-lifecycle/pkg/testutil"
)

const migrationsDir = "../../../../migrations"

func setup(t *testing.T) *testutil.Database {
	t.Helper()
	return testutil.StartPostgres(t, migrationsDir)
}

func TestApplicationRepo_RoundTrip(t *testing.T) {
	pc := setup(t)
	repo := pgrepo.NewApplicationRepo(pc.Pool)
	ctx := context.Background()

	app := model.SubmittedApplication{
		ID:       testutil.TestApplicationID,
		LoanType: valueobject.LoanTypePersonal,
		Purpose:  "Travel",
		Applicant: model.Applicant{
			FullName:       "Ravi Kumar",
			Age:            34,
			EmploymentType: valueobject.EmploymentGovernment,
			MonthlyIncome:  decimal.NewFromInt(90000),
		},
		LoanRequest: model.LoanRequest{
			Principal:         decimal.NewFromInt(500000),
			AnnualRatePercent: decimal.RequireFromString("12.5"),
			TenureMonths:      36,
		},
		MonthlyInstallment: decimal.NewFromInt(16727),
		Documents:          []string{"PAN Card", "Salary Slip"},
		SubmittedAt:        testutil.TestNow,
	}

	require.NoError(t, repo.Save(ctx, app))
	require.NoError(t, repo.Save(ctx, app), "re-saving a submission is idempotent")

	got, err := repo.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.Purpose, got.Purpose)
	assert.True(t, got.LoanType.Equal(app.LoanType))
	assert.True(t, got.MonthlyInstallment.Equal(app.MonthlyInstallment))
	assert.True(t, got.LoanRequest.AnnualRatePercent.Equal(app.LoanRequest.AnnualRatePercent))
	assert.Equal(t, app.Documents, got.Documents)
	assert.True(t, got.SubmittedAt.Equal(app.SubmittedAt))

	_, err = repo.FindByID(ctx, testutil.TestCaseID)
	assert.ErrorIs(t, err, valueobject.ErrNotFound)

	pc.Truncate(t)
	_, err = repo.FindByID(ctx, app.ID)
	assert.ErrorIs(t, err, valueobject.ErrNotFound)
}

func TestVerificationCaseRepo_Lifecycle(t *testing.T) {
	pc := setup(t)
	repo := pgrepo.NewVerificationCaseRepo(pc.Pool)
	ctx := context.Background()
	now := testutil.TestNow

	c, err := model.OpenVerificationCase(valueobject.SubjectKYC, testutil.TestApplicationID, nil, now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	for _, item := range c.Items() {
		c, err = c.VerifyItem(item.Name(), now)
		require.NoError(t, err)
	}
	c, err = c.SetScoreComponent(model.ComponentIncomeStability, 20, now)
	require.NoError(t, err)
	c, _, err = c.SubmitScore(now)
	require.NoError(t, err)
	c, err = c.Approve("clean file", now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.True(t, got.Decision().Equal(valueobject.DecisionApproved))
	assert.Equal(t, "clean file", got.DecisionNotes())
	assert.Equal(t, 100, got.OverallProgress())
	assert.Len(t, got.Items(), len(c.Items()))
	score, ok := got.Score()
	require.True(t, ok)
	assert.True(t, score.IsSubmitted())
	assert.Equal(t, 20, score.Component(model.ComponentIncomeStability))

	list, err := repo.FindByApplicationID(ctx, testutil.TestApplicationID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID(), list[0].ID())
}

func TestVerificationCaseRepo_StaleWriteRejected(t *testing.T) {
	pc := setup(t)
	repo := pgrepo.NewVerificationCaseRepo(pc.Pool)
	ctx := context.Background()
	now := testutil.TestNow

	c, err := model.OpenVerificationCase(valueobject.SubjectLoanDocuments, "", nil, now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	first, err := c.VerifyItem("Sale Deed", now)
	require.NoError(t, err)
	second, err := c.RejectItem("Sale Deed", now)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, first))
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, valueobject.ErrVersionConflict)

	_, err = repo.FindByID(ctx, testutil.TestCaseID)
	assert.ErrorIs(t, err, valueobject.ErrNotFound)
}

func TestVerificationCaseRepo_OneLiveCasePerSubject(t *testing.T) {
	pc := setup(t)
	repo := pgrepo.NewVerificationCaseRepo(pc.Pool)
	ctx := context.Background()
	now := testutil.TestNow

	first, err := model.OpenVerificationCase(valueobject.SubjectKYC, testutil.TestApplicationID, nil, now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	second, err := model.OpenVerificationCase(valueobject.SubjectKYC, testutil.TestApplicationID, nil, now)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, second), valueobject.ErrDuplicateCase)

	docs, err := model.OpenVerificationCase(valueobject.SubjectLoanDocuments, testutil.TestApplicationID, nil, now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, docs), "other subjects are unaffected")

	rejected, err := first.Reject(valueobject.ReasonIdentityMismatch, "", now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, rejected))
	require.NoError(t, repo.Save(ctx, second), "a rejected case frees the subject")

	for range 2 {
		standalone, err := model.OpenVerificationCase(valueobject.SubjectKYC, "", nil, now)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, standalone), "cases without an application are not constrained")
	}
}

func verifiedOutcome() *model.CaseOutcome {
	at := testutil.TestNow
	return &model.CaseOutcome{Decision: valueobject.DecisionApproved, DecidedAt: &at}
}

func TestSanctionRepo_Lifecycle(t *testing.T) {
	pc := setup(t)
	repo := pgrepo.NewSanctionRepo(pc.Pool)
	ctx := context.Background()
	now := testutil.TestNow

	app := model.SubmittedApplication{
		ID:          testutil.TestApplicationID,
		LoanRequest: model.LoanRequest{Principal: decimal.NewFromInt(2_000_000), AnnualRatePercent: decimal.NewFromInt(9), TenureMonths: 120},
	}
	s, err := model.OpenSanction(app, verifiedOutcome(), verifiedOutcome(), now)
	require.NoError(t, err)
	s, err = s.ManagerDecide("mgr-1", true, "income verified", now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.FindByApplicationID(ctx, testutil.TestApplicationID)
	require.NoError(t, err)
	assert.True(t, got.Status().Equal(valueobject.SanctionAwaitingAdmin))
	assert.True(t, got.Principal().Equal(decimal.NewFromInt(2_000_000)))
	assert.Equal(t, "mgr-1", got.ManagerID())
	assert.Equal(t, now, *got.ManagerDecidedAt())
	assert.Nil(t, got.AdminDecidedAt())
	assert.Equal(t, "income verified", got.Notes())
	assert.Equal(t, s.Version(), got.Version())

	approved, err := got.AdminDecide("adm-1", true, "", now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, approved))
	assert.ErrorIs(t, repo.Save(ctx, s), valueobject.ErrVersionConflict, "stale write")

	got, err = repo.FindByApplicationID(ctx, testutil.TestApplicationID)
	require.NoError(t, err)
	assert.True(t, got.Status().Equal(valueobject.SanctionApproved))
	assert.Equal(t, "adm-1", got.AdminID())

	_, err = repo.FindByApplicationID(ctx, testutil.TestCaseID)
	assert.ErrorIs(t, err, valueobject.ErrNotFound)
}

func TestLoanRepo_PaymentsRoundTrip(t *testing.T) {
	pc := setup(t)
	repo := pgrepo.NewLoanRepo(pc.Pool)
	ctx := context.Background()
	now := testutil.TestNow

	loan, err := model.NewLoan(model.SubmittedApplication{
		ID:          testutil.TestApplicationID,
		LoanType:    valueobject.LoanTypeVehicle,
		LoanRequest: model.LoanRequest{Principal: decimal.NewFromInt(600_000), AnnualRatePercent: decimal.RequireFromString("9.25"), TenureMonths: 36},
	}, now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, loan))

	for i := 0; i < 2; i++ {
		due, ok := loan.NextInstallment()
		require.True(t, ok)
		loan, err = loan.MakePayment(due.Total, now)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, loan))
	}

	got, err := repo.FindByID(ctx, loan.ID())
	require.NoError(t, err)
	assert.Equal(t, testutil.TestApplicationID, got.ApplicationID())
	assert.True(t, got.LoanType().Equal(valueobject.LoanTypeVehicle))
	assert.Equal(t, 34, got.RemainingTenure())
	assert.True(t, got.OutstandingBalance().Equal(loan.OutstandingBalance()))
	assert.True(t, got.TotalPaid().Equal(loan.TotalPaid()))
	assert.Equal(t, loan.NextPaymentDue(), got.NextPaymentDue())
	require.Len(t, got.Payments(), 2)
	assert.Equal(t, 2, got.Payments()[1].Sequence)
	assert.Equal(t, now, got.Payments()[1].PaidAt)

	byApp, err := repo.FindByApplicationID(ctx, testutil.TestApplicationID)
	require.NoError(t, err)
	assert.Equal(t, loan.ID(), byApp.ID())

	second, err := model.NewLoan(model.SubmittedApplication{
		ID:          testutil.TestApplicationID,
		LoanType:    valueobject.LoanTypeVehicle,
		LoanRequest: loan.Request(),
	}, now)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, second), valueobject.ErrVersionConflict, "one loan per application")

	_, err = repo.FindByID(ctx, testutil.TestCaseID)
	assert.ErrorIs(t, err, valueobject.ErrNotFound)
}

func TestMigrations_RollBackCleanly(t *testing.T) {
	pc := setup(t)
	ctx := context.Background()

	pc.MigrateDown(t)

	var n int
	err := pc.Pool.QueryRow(ctx,
		`SELECT count(*) FROM information_schema.tables WHERE table_name IN ('submitted_applications', 'verification_cases', 'verification_items', 'sanctions', 'loans', 'loan_payments')`,
	).Scan(&n)
	require.NoError(t, err)
	assert.Zero(t, n)
}
