package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

// ========== RULE MASTER DATA ==========

func (r *payrollRepository) ListAllowanceTypes(ctx context.Context) ([]payroll.AllowanceType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, code, name, calculation_type, default_amount, default_percentage,
			   is_taxable, is_active, display_order
		FROM allowance_types
		ORDER BY display_order, code
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list allowance types: %w", err)
	}
	defer rows.Close()

	types := make([]payroll.AllowanceType, 0)
	for rows.Next() {
		var a payroll.AllowanceType
		if err := rows.Scan(
			&a.ID, &a.Code, &a.Name, &a.CalculationType, &a.DefaultAmount, &a.DefaultPercentage,
			&a.IsTaxable, &a.IsActive, &a.DisplayOrder,
		); err != nil {
			return nil, fmt.Errorf("failed to scan allowance type: %w", err)
		}
		types = append(types, a)
	}

	return types, rows.Err()
}

func (r *payrollRepository) ListDeductionTypes(ctx context.Context) ([]payroll.DeductionType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, code, name, calculation_type, default_rate, employer_rate,
			   min_amount, max_amount, is_statutory, is_active, display_order
		FROM deduction_types
		ORDER BY display_order, code
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list deduction types: %w", err)
	}
	defer rows.Close()

	types := make([]payroll.DeductionType, 0)
	for rows.Next() {
		var d payroll.DeductionType
		if err := rows.Scan(
			&d.ID, &d.Code, &d.Name, &d.CalculationType, &d.DefaultRate, &d.EmployerRate,
			&d.MinAmount, &d.MaxAmount, &d.IsStatutory, &d.IsActive, &d.DisplayOrder,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deduction type: %w", err)
		}
		types = append(types, d)
	}

	return types, rows.Err()
}
