package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/jackc/pgx/v5"
)

// ========== ADJUSTMENTS ==========

const adjustmentColumns = `
	id, payslip_id, adjustment_type, amount, reason, approved_by, approved_at, created_at, updated_at
`

func scanAdjustment(row pgx.Row) (payroll.PayrollAdjustment, error) {
	var a payroll.PayrollAdjustment
	err := row.Scan(&a.ID, &a.PayslipID, &a.AdjustmentType, &a.Amount, &a.Reason, &a.ApprovedBy, &a.ApprovedAt, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *payrollRepository) CreateAdjustment(ctx context.Context, adjustment payroll.PayrollAdjustment) (payroll.PayrollAdjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_adjustments (payslip_id, adjustment_type, amount, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + adjustmentColumns

	a, err := scanAdjustment(q.QueryRow(ctx, query,
		adjustment.PayslipID, adjustment.AdjustmentType, adjustment.Amount, adjustment.Reason,
	))
	if err != nil {
		return payroll.PayrollAdjustment{}, fmt.Errorf("failed to create payroll adjustment: %w", err)
	}

	return a, nil
}

func (r *payrollRepository) GetAdjustmentByID(ctx context.Context, id string) (payroll.PayrollAdjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + adjustmentColumns + ` FROM payroll_adjustments WHERE id = $1`

	a, err := scanAdjustment(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollAdjustment{}, payroll.ErrAdjustmentNotFound
		}
		return payroll.PayrollAdjustment{}, fmt.Errorf("failed to get payroll adjustment: %w", err)
	}

	return a, nil
}

func (r *payrollRepository) ApproveAdjustment(ctx context.Context, id string, approvedBy string, key payroll.PayslipKey, build payroll.PayslipBuilder) (payroll.PayrollAdjustment, payroll.Payslip, error) {
	var (
		approved payroll.PayrollAdjustment
		payslip  payroll.Payslip
	)

	err := WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		if approved, err = r.stampAdjustment(ctx, id, approvedBy); err != nil {
			return err
		}
		if payslip, err = r.SavePayslip(ctx, key, build); err != nil {
			return err
		}
		if payslip.ID != approved.PayslipID {
			return fmt.Errorf("adjustment %s does not belong to payslip %s", id, payslip.ID)
		}
		_, err = r.RecomputePeriodTotals(ctx, key.PeriodID)
		return err
	})
	if err != nil {
		return payroll.PayrollAdjustment{}, payroll.Payslip{}, err
	}

	return approved, payslip, nil
}

func (r *payrollRepository) stampAdjustment(ctx context.Context, id string, approvedBy string) (payroll.PayrollAdjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_adjustments
		SET approved_by = $2, approved_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND approved_at IS NULL
		RETURNING ` + adjustmentColumns

	a, err := scanAdjustment(q.QueryRow(ctx, query, id, approvedBy))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetAdjustmentByID(ctx, id); getErr != nil {
				return payroll.PayrollAdjustment{}, getErr
			}
			return payroll.PayrollAdjustment{}, payroll.ErrAdjustmentAlreadyApproved
		}
		return payroll.PayrollAdjustment{}, fmt.Errorf("failed to approve payroll adjustment: %w", err)
	}

	return a, nil
}

func (r *payrollRepository) ListAdjustmentsByPayslip(ctx context.Context, payslipID string) ([]payroll.PayrollAdjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + adjustmentColumns + ` FROM payroll_adjustments WHERE payslip_id = $1 ORDER BY created_at, id`

	return collectAdjustments(q.Query(ctx, query, payslipID))
}

func (r *payrollRepository) listAdjustmentsByKey(ctx context.Context, key payroll.PayslipKey) ([]payroll.PayrollAdjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT pa.id, pa.payslip_id, pa.adjustment_type, pa.amount, pa.reason,
			   pa.approved_by, pa.approved_at, pa.created_at, pa.updated_at
		FROM payroll_adjustments pa
		JOIN payslips ps ON pa.payslip_id = ps.id
		WHERE ps.period_id = $1 AND ps.employee_id = $2 AND pa.approved_at IS NOT NULL
		ORDER BY pa.created_at, pa.id
	`

	return collectAdjustments(q.Query(ctx, query, key.PeriodID, key.EmployeeID))
}

func collectAdjustments(rows pgx.Rows, err error) ([]payroll.PayrollAdjustment, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll adjustments: %w", err)
	}
	defer rows.Close()

	adjustments := make([]payroll.PayrollAdjustment, 0)
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll adjustment: %w", err)
		}
		adjustments = append(adjustments, a)
	}

	return adjustments, rows.Err()
}
