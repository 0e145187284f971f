package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

// ========== SALARY CONTRACTS ==========

func (r *payrollRepository) CreateContract(ctx context.Context, contract payroll.SalaryContract) (payroll.SalaryContract, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_contracts (
			employee_id, effective_date, end_date, annual_salary, monthly_base_salary,
			contract_type, is_active, previous_contract_id, approved_by, approved_at, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, employee_id, effective_date, end_date, annual_salary, monthly_base_salary,
			contract_type, is_active, previous_contract_id, approved_by, approved_at, notes,
			created_at, updated_at
	`

	var c payroll.SalaryContract
	err := q.QueryRow(ctx, query,
		contract.EmployeeID, contract.EffectiveDate, contract.EndDate, contract.AnnualSalary, contract.MonthlyBaseSalary,
		contract.ContractType, contract.IsActive, contract.PreviousContractID, contract.ApprovedBy, contract.ApprovedAt, contract.Notes,
	).Scan(
		&c.ID, &c.EmployeeID, &c.EffectiveDate, &c.EndDate, &c.AnnualSalary, &c.MonthlyBaseSalary,
		&c.ContractType, &c.IsActive, &c.PreviousContractID, &c.ApprovedBy, &c.ApprovedAt, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return payroll.SalaryContract{}, fmt.Errorf("failed to create salary contract: %w", err)
	}

	return c, nil
}

func (r *payrollRepository) ListContractsByEmployee(ctx context.Context, employeeID string) ([]payroll.SalaryContract, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, effective_date, end_date, annual_salary, monthly_base_salary,
			   contract_type, is_active, previous_contract_id, approved_by, approved_at, notes,
			   created_at, updated_at
		FROM salary_contracts
		WHERE employee_id = $1
		ORDER BY effective_date DESC, created_at DESC, id DESC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary contracts: %w", err)
	}
	defer rows.Close()

	contracts := make([]payroll.SalaryContract, 0)
	for rows.Next() {
		var c payroll.SalaryContract
		if err := rows.Scan(
			&c.ID, &c.EmployeeID, &c.EffectiveDate, &c.EndDate, &c.AnnualSalary, &c.MonthlyBaseSalary,
			&c.ContractType, &c.IsActive, &c.PreviousContractID, &c.ApprovedBy, &c.ApprovedAt, &c.Notes,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan salary contract: %w", err)
		}
		contracts = append(contracts, c)
	}

	return contracts, rows.Err()
}
