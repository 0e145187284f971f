package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus enum
type PeriodStatus string

const (
	PeriodStatusDraft           PeriodStatus = "draft"
	PeriodStatusCalculating     PeriodStatus = "calculating"
	PeriodStatusPendingApproval PeriodStatus = "pending_approval"
	PeriodStatusApproved        PeriodStatus = "approved"
	PeriodStatusPaid            PeriodStatus = "paid"
	PeriodStatusClosed          PeriodStatus = "closed"
)

// PayrollPeriod - One payroll cycle (calendar month)
type PayrollPeriod struct {
	ID              string
	Year            int
	Month           int
	Name            string
	StartDate       time.Time
	EndDate         time.Time
	PaymentDate     time.Time
	Status          PeriodStatus
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	EmployeeCount   int
	ApprovedBy      *string
	ApprovedAt      *time.Time
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ContractType enum
type ContractType string

const (
	ContractTypeInitial   ContractType = "initial"
	ContractTypeRenewal   ContractType = "renewal"
	ContractTypeRaise     ContractType = "raise"
	ContractTypePromotion ContractType = "promotion"
)

// SalaryContract - Time-effective salary agreement of an employee
type SalaryContract struct {
	ID                 string
	EmployeeID         string
	EffectiveDate      time.Time
	EndDate            *time.Time
	AnnualSalary       decimal.Decimal
	MonthlyBaseSalary  decimal.Decimal
	ContractType       ContractType
	IsActive           bool
	PreviousContractID *string
	ApprovedBy         *string
	ApprovedAt         *time.Time
	Notes              *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CalculationType enum
type CalculationType string

const (
	CalculationTypeFixed      CalculationType = "fixed"
	CalculationTypePercentage CalculationType = "percentage"
	CalculationTypeHourly     CalculationType = "hourly"
	CalculationTypeFormula    CalculationType = "formula"
)

// AllowanceCode identifies an allowance rule. Codes other than the
// constants below are plain fixed allowances (meal, transport, ...).
type AllowanceCode string

const (
	AllowanceCodePosition AllowanceCode = "POSITION"
	AllowanceCodeOvertime AllowanceCode = "OVERTIME"
	AllowanceCodeNight    AllowanceCode = "NIGHT"
	AllowanceCodeHoliday  AllowanceCode = "HOLIDAY"
)

// AllowanceType - Allowance rule master data
type AllowanceType struct {
	ID                string
	Code              AllowanceCode
	Name              string
	CalculationType   CalculationType
	DefaultAmount     decimal.Decimal
	DefaultPercentage decimal.Decimal
	IsTaxable         bool
	IsActive          bool
	DisplayOrder      int
}

// DeductionType - Deduction rule master data
type DeductionType struct {
	ID              string
	Code            DeductionCode
	Name            string
	CalculationType CalculationType
	DefaultRate     decimal.Decimal
	EmployerRate    *decimal.Decimal
	MinAmount       *decimal.Decimal
	MaxAmount       *decimal.Decimal
	IsStatutory     bool
	IsActive        bool
	DisplayOrder    int
}

// PayslipStatus enum
type PayslipStatus string

const (
	PayslipStatusDraft      PayslipStatus = "draft"
	PayslipStatusCalculated PayslipStatus = "calculated"
	PayslipStatusApproved   PayslipStatus = "approved"
	PayslipStatusPaid       PayslipStatus = "paid"
)

// PaymentMethod enum
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheck        PaymentMethod = "check"
)

// Payslip - Calculated salary of one employee for one period
type Payslip struct {
	ID         string
	PeriodID   string
	EmployeeID string

	WorkDays        decimal.Decimal
	PaidLeaveDays   decimal.Decimal
	UnpaidLeaveDays decimal.Decimal
	OvertimeHours   decimal.Decimal
	NightHours      decimal.Decimal
	HolidayHours    decimal.Decimal

	BaseSalary      decimal.Decimal
	TotalAllowances decimal.Decimal
	OvertimePay     decimal.Decimal
	GrossSalary     decimal.Decimal

	NationalPension     decimal.Decimal
	HealthInsurance     decimal.Decimal
	LongTermCare        decimal.Decimal
	EmploymentInsurance decimal.Decimal
	IncomeTax           decimal.Decimal
	ResidentTax         decimal.Decimal
	OtherDeductions     decimal.Decimal
	TotalDeductions     decimal.Decimal

	NetSalary     decimal.Decimal
	Status        PayslipStatus
	PaymentDate   *time.Time
	PaymentMethod *PaymentMethod
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Allowances []PayslipAllowance
	Deductions []PayslipDeduction

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// PayslipAllowance - Itemized allowance line of a payslip
type PayslipAllowance struct {
	ID              string
	PayslipID       string
	AllowanceTypeID string
	Code            AllowanceCode
	Amount          decimal.Decimal
	Quantity        decimal.Decimal
	Rate            decimal.Decimal
	CalculationNote string
}

// PayslipDeduction - Itemized deduction line of a payslip
type PayslipDeduction struct {
	ID              string
	PayslipID       string
	DeductionTypeID string
	Code            DeductionCode
	Amount          decimal.Decimal
	BaseAmount      decimal.Decimal
	Rate            decimal.Decimal
	CalculationNote string
}

// AdjustmentType enum
type AdjustmentType string

const (
	AdjustmentTypeBonus       AdjustmentType = "bonus"
	AdjustmentTypeIncentive   AdjustmentType = "incentive"
	AdjustmentTypeRetroactive AdjustmentType = "retroactive"
	AdjustmentTypeDeduction   AdjustmentType = "deduction"
	AdjustmentTypeCorrection  AdjustmentType = "correction"
)

// PayrollAdjustment - Manual signed amount attached to a payslip
type PayrollAdjustment struct {
	ID             string
	PayslipID      string
	AdjustmentType AdjustmentType
	Amount         decimal.Decimal
	Reason         string
	ApprovedBy     *string
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsApproved reports whether the adjustment carries an approval stamp.
func (a PayrollAdjustment) IsApproved() bool {
	return a.ApprovedAt != nil
}

// WorkSummary - Attendance and leave figures of one employee for a period
type WorkSummary struct {
	WorkDays        decimal.Decimal
	PaidLeaveDays   decimal.Decimal
	UnpaidLeaveDays decimal.Decimal
	OvertimeHours   decimal.Decimal
	NightHours      decimal.Decimal
	HolidayHours    decimal.Decimal
}

// PeriodTotals - Aggregates over the persisted payslips of a period
type PeriodTotals struct {
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	EmployeeCount   int
}

// PayslipKey identifies the single payslip of an employee in a period.
type PayslipKey struct {
	PeriodID   string
	EmployeeID string
}
