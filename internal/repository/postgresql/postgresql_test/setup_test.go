package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/onestaff/onestaff-os/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup wraps a connection to a database migrated with
// migrations/0001_payroll_engine.sql.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and skips the test when it is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn)
	require.NoError(t, err, "failed to connect to test database")

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(context.Background()))
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables clears every payroll table and its inputs.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"payslips",
		"payroll_run_details",
		"employee_signing_bonuses",
		"employee_termination_benefits",
		"payroll_runs",
		"payroll_run_sequences",
		"employee_penalties",
		"attendance_records",
		"leave_requests",
		"leave_entitlements",
		"employment_contracts",
		"employees",
		"pay_grades",
		"signing_bonuses",
		"allowances",
		"tax_rules",
		"insurance_brackets",
		"leave_types",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the connection pool.
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
