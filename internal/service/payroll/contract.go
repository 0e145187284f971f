package payroll

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

func (s *PayrollServiceImpl) CreateContract(ctx context.Context, req payroll.CreateContractRequest) (payroll.ContractResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ContractResponse{}, err
	}

	if _, err := s.getEmployee(ctx, req.EmployeeID); err != nil {
		return payroll.ContractResponse{}, err
	}

	effective, _ := time.Parse("2006-01-02", req.EffectiveDate)
	var endDate *time.Time
	if req.EndDate != nil {
		d, _ := time.Parse("2006-01-02", *req.EndDate)
		endDate = &d
	}

	monthly := req.AnnualSalary.Div(decimal.NewFromInt(12))
	if req.MonthlyBaseSalary != nil {
		monthly = *req.MonthlyBaseSalary
	}

	created, err := s.payrollRepo.CreateContract(ctx, payroll.SalaryContract{
		EmployeeID:         req.EmployeeID,
		EffectiveDate:      effective,
		EndDate:            endDate,
		AnnualSalary:       roundMoney(req.AnnualSalary),
		MonthlyBaseSalary:  roundMoney(monthly),
		ContractType:       payroll.ContractType(req.ContractType),
		IsActive:           true,
		PreviousContractID: req.PreviousContractID,
		Notes:              req.Notes,
	})
	if err != nil {
		return payroll.ContractResponse{}, err
	}

	return payroll.NewContractResponse(created), nil
}

func (s *PayrollServiceImpl) ListContracts(ctx context.Context, employeeID string) ([]payroll.ContractResponse, error) {
	if _, err := s.getEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	contracts, err := s.payrollRepo.ListContractsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.ContractResponse, 0, len(contracts))
	for _, c := range contracts {
		responses = append(responses, payroll.NewContractResponse(c))
	}
	return responses, nil
}

// GetActiveContract returns the contract that would be used for a period
// ending on asOf.
func (s *PayrollServiceImpl) GetActiveContract(ctx context.Context, employeeID string, asOf time.Time) (payroll.ContractResponse, error) {
	contracts, err := s.payrollRepo.ListContractsByEmployee(ctx, employeeID)
	if err != nil {
		return payroll.ContractResponse{}, err
	}

	c, ok := ResolveContract(contracts, dateOnly(asOf))
	if !ok {
		return payroll.ContractResponse{}, payroll.ErrContractNotFound
	}
	return payroll.NewContractResponse(c), nil
}
