package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

// TestDatabaseSetup holds a connection to a migrated test database
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and skips the test when it is unset.
// The schema in migrations/ must already be applied.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn, 0, 0)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db}
	if err := setup.TruncateAllTables(context.Background()); err != nil {
		db.Close()
		t.Fatalf("failed to reset test database: %v", err)
	}
	t.Cleanup(setup.Close)

	return setup
}

// TruncateAllTables clears transactional data; rule master data stays seeded.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"payroll_adjustments",
		"payslip_deductions",
		"payslip_allowances",
		"payslips",
		"payroll_periods",
		"salary_contracts",
		"attendance_records",
		"leave_requests",
		"employees",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// InsertEmployee creates an active employee hired on 2023-01-02 and returns its id
func (t *TestDatabaseSetup) InsertEmployee(ctx context.Context, code, name string) (string, error) {
	var id string
	err := t.DB.QueryRow(ctx, `
		INSERT INTO employees (employee_code, full_name, hire_date, employment_status)
		VALUES ($1, $2, DATE '2023-01-02', 'active')
		RETURNING id
	`, code, name).Scan(&id)
	return id, err
}

// Close closes the database connection
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
