package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== PERIODS ==========

const periodColumns = `
	id, year, month, name, start_date, end_date, payment_date, status,
	total_gross, total_deductions, total_net, employee_count,
	approved_by, approved_at, notes, created_at, updated_at
`

func scanPeriod(row pgx.Row) (payroll.PayrollPeriod, error) {
	var p payroll.PayrollPeriod
	err := row.Scan(
		&p.ID, &p.Year, &p.Month, &p.Name, &p.StartDate, &p.EndDate, &p.PaymentDate, &p.Status,
		&p.TotalGross, &p.TotalDeductions, &p.TotalNet, &p.EmployeeCount,
		&p.ApprovedBy, &p.ApprovedAt, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *payrollRepository) CreatePeriod(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_periods (year, month, name, start_date, end_date, payment_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + periodColumns

	p, err := scanPeriod(q.QueryRow(ctx, query,
		period.Year, period.Month, period.Name, period.StartDate, period.EndDate, period.PaymentDate,
		payroll.PeriodStatusDraft, period.Notes,
	))
	if err != nil {
		if isUniqueViolation(err, "uk_payroll_period_year_month") {
			return payroll.PayrollPeriod{}, payroll.ErrPeriodAlreadyExists
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) GetPeriodByID(ctx context.Context, id string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM payroll_periods WHERE id = $1`

	p, err := scanPeriod(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to get payroll period: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) GetPeriodByYearMonth(ctx context.Context, year, month int) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM payroll_periods WHERE year = $1 AND month = $2`

	p, err := scanPeriod(q.QueryRow(ctx, query, year, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to get payroll period: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) ([]payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM payroll_periods WHERE 1 = 1`
	args := []interface{}{}
	argIdx := 1

	if filter.Year != nil {
		query += fmt.Sprintf(" AND year = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	query += " ORDER BY year DESC, month DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	periods := make([]payroll.PayrollPeriod, 0)
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}

	return periods, rows.Err()
}

func (r *payrollRepository) TransitionPeriod(ctx context.Context, id string, rule payroll.TransitionRule, stamp payroll.TransitionStamp) (payroll.PayrollPeriod, error) {
	var result payroll.PayrollPeriod

	err := WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var approvedAt *time.Time
		if rule.Transition == payroll.TransitionApprove {
			now := time.Now()
			approvedAt = &now
		}

		// compare-and-swap on the current status
		query := `
			UPDATE payroll_periods
			SET status = $3,
				approved_by = COALESCE($4, approved_by),
				approved_at = COALESCE($5, approved_at),
				updated_at = NOW()
			WHERE id = $1 AND status = $2
			RETURNING ` + periodColumns

		var actor *string
		if approvedAt != nil {
			actor = stamp.ActorID
		}

		p, err := scanPeriod(tx.QueryRow(ctx, query, id, rule.From, rule.To, actor, approvedAt))
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("failed to transition payroll period: %w", err)
			}
			current, getErr := r.GetPeriodByID(ctx, id)
			if getErr != nil {
				return getErr
			}
			if err := rule.Check(current.Status); err != nil {
				return err
			}
			return fmt.Errorf("payroll period %s changed concurrently: %w", id, payroll.ErrInvalidTransition)
		}

		if rule.PayslipStatus != nil {
			cascade := `
				UPDATE payslips
				SET status = $2,
					payment_date = COALESCE($3, payment_date),
					payment_method = COALESCE($4, payment_method),
					updated_at = NOW()
				WHERE period_id = $1
			`
			if _, err := tx.Exec(ctx, cascade, id, *rule.PayslipStatus, stamp.PaymentDate, stamp.PaymentMethod); err != nil {
				return fmt.Errorf("failed to cascade payslip status: %w", err)
			}
		}

		result = p
		return nil
	})
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}

	return result, nil
}

func (r *payrollRepository) RecomputePeriodTotals(ctx context.Context, periodID string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods pp
		SET total_gross = totals.gross,
			total_deductions = totals.deductions,
			total_net = totals.net,
			employee_count = totals.cnt,
			updated_at = NOW()
		FROM (
			SELECT COALESCE(SUM(gross_salary), 0) AS gross,
				   COALESCE(SUM(total_deductions), 0) AS deductions,
				   COALESCE(SUM(net_salary), 0) AS net,
				   COUNT(*) AS cnt
			FROM payslips
			WHERE period_id = $1
		) totals
		WHERE pp.id = $1
		RETURNING pp.id, pp.year, pp.month, pp.name, pp.start_date, pp.end_date, pp.payment_date, pp.status,
			pp.total_gross, pp.total_deductions, pp.total_net, pp.employee_count,
			pp.approved_by, pp.approved_at, pp.notes, pp.created_at, pp.updated_at
	`

	p, err := scanPeriod(q.QueryRow(ctx, query, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to recompute payroll period totals: %w", err)
	}

	return p, nil
}
