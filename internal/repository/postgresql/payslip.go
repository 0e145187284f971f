package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/jackc/pgx/v5"
)

// ========== PAYSLIPS ==========

const payslipColumns = `
	ps.id, ps.period_id, ps.employee_id,
	ps.work_days, ps.paid_leave_days, ps.unpaid_leave_days, ps.overtime_hours, ps.night_hours, ps.holiday_hours,
	ps.base_salary, ps.total_allowances, ps.overtime_pay, ps.gross_salary,
	ps.national_pension, ps.health_insurance, ps.long_term_care, ps.employment_insurance,
	ps.income_tax, ps.resident_tax, ps.other_deductions, ps.total_deductions, ps.net_salary,
	ps.status, ps.payment_date, ps.payment_method, ps.notes, ps.created_at, ps.updated_at,
	e.full_name, e.employee_code
`

func scanPayslip(row pgx.Row) (payroll.Payslip, error) {
	var p payroll.Payslip
	err := row.Scan(
		&p.ID, &p.PeriodID, &p.EmployeeID,
		&p.WorkDays, &p.PaidLeaveDays, &p.UnpaidLeaveDays, &p.OvertimeHours, &p.NightHours, &p.HolidayHours,
		&p.BaseSalary, &p.TotalAllowances, &p.OvertimePay, &p.GrossSalary,
		&p.NationalPension, &p.HealthInsurance, &p.LongTermCare, &p.EmploymentInsurance,
		&p.IncomeTax, &p.ResidentTax, &p.OtherDeductions, &p.TotalDeductions, &p.NetSalary,
		&p.Status, &p.PaymentDate, &p.PaymentMethod, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
		&p.EmployeeName, &p.EmployeeCode,
	)
	return p, err
}

func (r *payrollRepository) SavePayslip(ctx context.Context, key payroll.PayslipKey, build payroll.PayslipBuilder) (payroll.Payslip, error) {
	var saved payroll.Payslip

	err := WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		// one writer per (period, employee) until commit
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key.PeriodID+":"+key.EmployeeID); err != nil {
			return fmt.Errorf("failed to lock payslip key: %w", err)
		}

		// FOR SHARE blocks status transitions until this payslip is written
		var status payroll.PeriodStatus
		err := tx.QueryRow(ctx, `SELECT status FROM payroll_periods WHERE id = $1 FOR SHARE`, key.PeriodID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return payroll.ErrPeriodNotFound
			}
			return fmt.Errorf("failed to read payroll period status: %w", err)
		}
		if !status.CanRecalculate() {
			return payroll.ErrPeriodNotCalculating
		}

		adjustments, err := r.listAdjustmentsByKey(ctx, key)
		if err != nil {
			return err
		}

		p, err := build(adjustments)
		if err != nil {
			return err
		}
		p.PeriodID, p.EmployeeID = key.PeriodID, key.EmployeeID

		upsert := `
			INSERT INTO payslips (
				period_id, employee_id,
				work_days, paid_leave_days, unpaid_leave_days, overtime_hours, night_hours, holiday_hours,
				base_salary, total_allowances, overtime_pay, gross_salary,
				national_pension, health_insurance, long_term_care, employment_insurance,
				income_tax, resident_tax, other_deductions, total_deductions, net_salary, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
			ON CONFLICT (period_id, employee_id) DO UPDATE SET
				work_days = EXCLUDED.work_days,
				paid_leave_days = EXCLUDED.paid_leave_days,
				unpaid_leave_days = EXCLUDED.unpaid_leave_days,
				overtime_hours = EXCLUDED.overtime_hours,
				night_hours = EXCLUDED.night_hours,
				holiday_hours = EXCLUDED.holiday_hours,
				base_salary = EXCLUDED.base_salary,
				total_allowances = EXCLUDED.total_allowances,
				overtime_pay = EXCLUDED.overtime_pay,
				gross_salary = EXCLUDED.gross_salary,
				national_pension = EXCLUDED.national_pension,
				health_insurance = EXCLUDED.health_insurance,
				long_term_care = EXCLUDED.long_term_care,
				employment_insurance = EXCLUDED.employment_insurance,
				income_tax = EXCLUDED.income_tax,
				resident_tax = EXCLUDED.resident_tax,
				other_deductions = EXCLUDED.other_deductions,
				total_deductions = EXCLUDED.total_deductions,
				net_salary = EXCLUDED.net_salary,
				status = EXCLUDED.status,
				updated_at = NOW()
			RETURNING id, created_at, updated_at
		`
		err = tx.QueryRow(ctx, upsert,
			p.PeriodID, p.EmployeeID,
			p.WorkDays, p.PaidLeaveDays, p.UnpaidLeaveDays, p.OvertimeHours, p.NightHours, p.HolidayHours,
			p.BaseSalary, p.TotalAllowances, p.OvertimePay, p.GrossSalary,
			p.NationalPension, p.HealthInsurance, p.LongTermCare, p.EmploymentInsurance,
			p.IncomeTax, p.ResidentTax, p.OtherDeductions, p.TotalDeductions, p.NetSalary, payroll.PayslipStatusCalculated,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert payslip: %w", err)
		}
		p.Status = payroll.PayslipStatusCalculated

		if err := replacePayslipDetails(ctx, tx, &p); err != nil {
			return err
		}

		saved = p
		return nil
	})
	if err != nil {
		return payroll.Payslip{}, err
	}

	return saved, nil
}

// replacePayslipDetails makes the detail rows of p exactly p.Allowances and
// p.Deductions: rows of rules no longer applied are removed, the rest are
// upserted by (payslip, rule) so an unchanged pass rewrites identical rows.
func replacePayslipDetails(ctx context.Context, tx pgx.Tx, p *payroll.Payslip) error {
	allowanceTypeIDs := make([]string, 0, len(p.Allowances))
	for _, a := range p.Allowances {
		allowanceTypeIDs = append(allowanceTypeIDs, a.AllowanceTypeID)
	}
	deductionTypeIDs := make([]string, 0, len(p.Deductions))
	for _, d := range p.Deductions {
		deductionTypeIDs = append(deductionTypeIDs, d.DeductionTypeID)
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		DELETE FROM payslip_allowances
		WHERE payslip_id = $1 AND allowance_type_id::text <> ALL($2::text[])
	`, p.ID, allowanceTypeIDs)
	batch.Queue(`
		DELETE FROM payslip_deductions
		WHERE payslip_id = $1 AND deduction_type_id::text <> ALL($2::text[])
	`, p.ID, deductionTypeIDs)

	for _, a := range p.Allowances {
		batch.Queue(`
			INSERT INTO payslip_allowances (payslip_id, allowance_type_id, amount, quantity, rate, calculation_note)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (payslip_id, allowance_type_id) DO UPDATE SET
				amount = EXCLUDED.amount,
				quantity = EXCLUDED.quantity,
				rate = EXCLUDED.rate,
				calculation_note = EXCLUDED.calculation_note
		`, p.ID, a.AllowanceTypeID, a.Amount, a.Quantity, a.Rate, a.CalculationNote)
	}
	for _, d := range p.Deductions {
		batch.Queue(`
			INSERT INTO payslip_deductions (payslip_id, deduction_type_id, amount, base_amount, rate, calculation_note)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (payslip_id, deduction_type_id) DO UPDATE SET
				amount = EXCLUDED.amount,
				base_amount = EXCLUDED.base_amount,
				rate = EXCLUDED.rate,
				calculation_note = EXCLUDED.calculation_note
		`, p.ID, d.DeductionTypeID, d.Amount, d.BaseAmount, d.Rate, d.CalculationNote)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to replace payslip details: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to replace payslip details: %w", err)
	}

	for i := range p.Allowances {
		p.Allowances[i].PayslipID = p.ID
	}
	for i := range p.Deductions {
		p.Deductions[i].PayslipID = p.ID
	}
	return nil
}

func (r *payrollRepository) GetPayslipByID(ctx context.Context, id string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips ps
		JOIN employees e ON ps.employee_id = e.id
		WHERE ps.id = $1
	`

	p, err := scanPayslip(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	if p.Allowances, err = r.listPayslipAllowances(ctx, p.ID); err != nil {
		return payroll.Payslip{}, err
	}
	if p.Deductions, err = r.listPayslipDeductions(ctx, p.ID); err != nil {
		return payroll.Payslip{}, err
	}

	return p, nil
}

func (r *payrollRepository) ListPayslipsByPeriod(ctx context.Context, periodID string) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips ps
		JOIN employees e ON ps.employee_id = e.id
		WHERE ps.period_id = $1
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	payslips := make([]payroll.Payslip, 0)
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		payslips = append(payslips, p)
	}

	return payslips, rows.Err()
}

func (r *payrollRepository) listPayslipAllowances(ctx context.Context, payslipID string) ([]payroll.PayslipAllowance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT pa.id, pa.payslip_id, pa.allowance_type_id, at.code, pa.amount, pa.quantity, pa.rate, pa.calculation_note
		FROM payslip_allowances pa
		JOIN allowance_types at ON pa.allowance_type_id = at.id
		WHERE pa.payslip_id = $1
		ORDER BY at.display_order, at.code
	`

	rows, err := q.Query(ctx, query, payslipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslip allowances: %w", err)
	}
	defer rows.Close()

	lines := make([]payroll.PayslipAllowance, 0)
	for rows.Next() {
		var a payroll.PayslipAllowance
		if err := rows.Scan(&a.ID, &a.PayslipID, &a.AllowanceTypeID, &a.Code, &a.Amount, &a.Quantity, &a.Rate, &a.CalculationNote); err != nil {
			return nil, fmt.Errorf("failed to scan payslip allowance: %w", err)
		}
		lines = append(lines, a)
	}

	return lines, rows.Err()
}

func (r *payrollRepository) listPayslipDeductions(ctx context.Context, payslipID string) ([]payroll.PayslipDeduction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT pd.id, pd.payslip_id, pd.deduction_type_id, dt.code, pd.amount, pd.base_amount, pd.rate, pd.calculation_note
		FROM payslip_deductions pd
		JOIN deduction_types dt ON pd.deduction_type_id = dt.id
		WHERE pd.payslip_id = $1
		ORDER BY dt.display_order, dt.code
	`

	rows, err := q.Query(ctx, query, payslipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslip deductions: %w", err)
	}
	defer rows.Close()

	lines := make([]payroll.PayslipDeduction, 0)
	for rows.Next() {
		var d payroll.PayslipDeduction
		if err := rows.Scan(&d.ID, &d.PayslipID, &d.DeductionTypeID, &d.Code, &d.Amount, &d.BaseAmount, &d.Rate, &d.CalculationNote); err != nil {
			return nil, fmt.Errorf("failed to scan payslip deduction: %w", err)
		}
		lines = append(lines, d)
	}

	return lines, rows.Err()
}
