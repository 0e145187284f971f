package payroll

import (
	"context"
	"time"
)

// PayrollService is the payroll use-case boundary consumed by handlers and jobs.
type PayrollService interface {
	// Periods
	CreatePeriod(ctx context.Context, req CreatePeriodRequest) (PeriodResponse, error)
	GetPeriod(ctx context.Context, id string) (PeriodResponse, error)
	GetPeriodByYearMonth(ctx context.Context, year, month int) (PeriodResponse, error)
	ListPeriods(ctx context.Context, filter PeriodFilter) ([]PeriodResponse, error)

	// Workflow
	StartCalculation(ctx context.Context, id string) (PeriodResponse, error)
	SubmitForApproval(ctx context.Context, id string) (PeriodResponse, error)
	Approve(ctx context.Context, id string) (PeriodResponse, error)
	MarkAsPaid(ctx context.Context, id string, req MarkAsPaidRequest) (PeriodResponse, error)
	ClosePeriod(ctx context.Context, id string) (PeriodResponse, error)

	// Calculation
	CalculatePeriod(ctx context.Context, id string) (CalculationReport, error)
	CalculateEmployee(ctx context.Context, periodID, employeeID string) (PayslipResponse, error)
	RunCalculation(ctx context.Context, id string) (CalculationReport, error)

	// Payslips
	GetPayslip(ctx context.Context, id string) (PayslipResponse, error)
	ListPayslips(ctx context.Context, periodID string) ([]PayslipResponse, error)

	// Adjustments
	CreateAdjustment(ctx context.Context, payslipID string, req CreateAdjustmentRequest) (AdjustmentResponse, error)
	ApproveAdjustment(ctx context.Context, id string) (AdjustmentResponse, error)

	// Salary contracts
	CreateContract(ctx context.Context, req CreateContractRequest) (ContractResponse, error)
	ListContracts(ctx context.Context, employeeID string) ([]ContractResponse, error)
	GetActiveContract(ctx context.Context, employeeID string, asOf time.Time) (ContractResponse, error)
}
