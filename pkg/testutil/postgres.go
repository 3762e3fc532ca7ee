package testutil

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pkgpostgres "github.com/bibbank/loan-lifecycle/pkg/postgres"
)

// Database is a migrated PostgreSQL instance owned by a single test.
type Database struct {
	DSN  string
	Pool *pgxpool.Pool

	source string
}

// StartPostgres runs a throwaway PostgreSQL container, applies the
// migrations in migrationsDir and tears everything down when t ends.
func StartPostgres(t *testing.T, migrationsDir string) *Database {
	t.Helper()
	ctx := context.Background()

	abs, err := filepath.Abs(migrationsDir)
	require.NoError(t, err, "resolve migrations directory")

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("loan_lifecycle_test"),
		postgres.WithUsername("loan_lifecycle"),
		postgres.WithPassword("loan_lifecycle"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db := &Database{DSN: dsn, source: "file://" + abs}
	version, err := pkgpostgres.RunMigrations(dsn, db.source)
	require.NoError(t, err, "apply migrations")
	t.Logf("schema at version %d", version)

	db.Pool, err = pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Pool.Close)
	require.NoError(t, db.Pool.Ping(ctx))
	return db
}

// MigrateDown rolls every migration back, leaving an empty schema.
func (db *Database) MigrateDown(t *testing.T) {
	t.Helper()
	require.NoError(t, pkgpostgres.RunMigrationsDown(db.DSN, db.source), "roll back migrations")
}

// Truncate empties every application table so a test can reuse the
// container from a clean slate.
func (db *Database) Truncate(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	rows, err := db.Pool.Query(ctx,
		`SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename <> 'schema_migrations'`)
	require.NoError(t, err)
	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	require.NoError(t, err)
	if len(tables) == 0 {
		return
	}

	idents := make([]string, len(tables))
	for i, name := range tables {
		idents[i] = pgx.Identifier{name}.Sanitize()
	}
	_, err = db.Pool.Exec(ctx, "TRUNCATE "+strings.Join(idents, ", ")+" CASCADE")
	require.NoError(t, err)
}
