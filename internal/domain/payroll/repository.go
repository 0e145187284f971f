package payroll

import "context"

// PayslipBuilder computes the payslip of one key from the approved
// adjustments already attached to it. It runs inside the write transaction.
type PayslipBuilder func(adjustments []PayrollAdjustment) (Payslip, error)

// PayrollRepository defines data access methods for payroll.
type PayrollRepository interface {
	// Periods
	CreatePeriod(ctx context.Context, period PayrollPeriod) (PayrollPeriod, error)
	GetPeriodByID(ctx context.Context, id string) (PayrollPeriod, error)
	GetPeriodByYearMonth(ctx context.Context, year, month int) (PayrollPeriod, error)
	ListPeriods(ctx context.Context, filter PeriodFilter) ([]PayrollPeriod, error)
	// TransitionPeriod moves the period from rule.From to rule.To and applies
	// the payslip cascade atomically. It returns ErrInvalidTransition when the
	// period is no longer in rule.From.
	TransitionPeriod(ctx context.Context, id string, rule TransitionRule, stamp TransitionStamp) (PayrollPeriod, error)
	RecomputePeriodTotals(ctx context.Context, periodID string) (PayrollPeriod, error)

	// Rule master data
	ListAllowanceTypes(ctx context.Context) ([]AllowanceType, error)
	ListDeductionTypes(ctx context.Context) ([]DeductionType, error)

	// Salary contracts
	CreateContract(ctx context.Context, contract SalaryContract) (SalaryContract, error)
	ListContractsByEmployee(ctx context.Context, employeeID string) ([]SalaryContract, error)

	// Payslips
	// SavePayslip upserts the payslip of key and replaces its detail rows in
	// one transaction, exclusive per key. It fails with ErrPeriodNotCalculating
	// unless the period is calculating.
	SavePayslip(ctx context.Context, key PayslipKey, build PayslipBuilder) (Payslip, error)
	GetPayslipByID(ctx context.Context, id string) (Payslip, error)
	ListPayslipsByPeriod(ctx context.Context, periodID string) ([]Payslip, error)

	// Adjustments
	CreateAdjustment(ctx context.Context, adjustment PayrollAdjustment) (PayrollAdjustment, error)
	GetAdjustmentByID(ctx context.Context, id string) (PayrollAdjustment, error)
	// ApproveAdjustment stamps the adjustment, rebuilds the payslip of key
	// with it and recomputes the period totals in one transaction. Nothing
	// is kept when any step fails.
	ApproveAdjustment(ctx context.Context, id string, approvedBy string, key PayslipKey, build PayslipBuilder) (PayrollAdjustment, Payslip, error)
	ListAdjustmentsByPayslip(ctx context.Context, payslipID string) ([]PayrollAdjustment, error)
}
