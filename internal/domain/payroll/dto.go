package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PERIOD DTOs ==========

type CreatePeriodRequest struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Name        *string `json:"name,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`   // YYYY-MM-DD, defaults to first day of month
	EndDate     *string `json:"end_date,omitempty"`     // YYYY-MM-DD, defaults to last day of month
	PaymentDate *string `json:"payment_date,omitempty"` // YYYY-MM-DD, defaults to end date
	Notes       *string `json:"notes,omitempty"`
}

func (r *CreatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be between 2000 and 2100"})
	}
	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}

	var start, end time.Time
	if r.StartDate != nil {
		d, ok := validator.IsValidDate(*r.StartDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be in YYYY-MM-DD format"})
		}
		start = d
	}
	if r.EndDate != nil {
		d, ok := validator.IsValidDate(*r.EndDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be in YYYY-MM-DD format"})
		}
		end = d
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must not be before start_date"})
	}
	if r.PaymentDate != nil {
		if _, ok := validator.IsValidDate(*r.PaymentDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "must not be blank"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodFilter struct {
	Year   *int
	Status *PeriodStatus
}

type PeriodResponse struct {
	ID              string          `json:"id"`
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	Name            string          `json:"name"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	PaymentDate     string          `json:"payment_date"`
	Status          PeriodStatus    `json:"status"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	EmployeeCount   int             `json:"employee_count"`
	ApprovedBy      *string         `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
}

func NewPeriodResponse(p PayrollPeriod) PeriodResponse {
	return PeriodResponse{
		ID:              p.ID,
		Year:            p.Year,
		Month:           p.Month,
		Name:            p.Name,
		StartDate:       p.StartDate.Format("2006-01-02"),
		EndDate:         p.EndDate.Format("2006-01-02"),
		PaymentDate:     p.PaymentDate.Format("2006-01-02"),
		Status:          p.Status,
		TotalGross:      p.TotalGross,
		TotalDeductions: p.TotalDeductions,
		TotalNet:        p.TotalNet,
		EmployeeCount:   p.EmployeeCount,
		ApprovedBy:      p.ApprovedBy,
		ApprovedAt:      p.ApprovedAt,
		Notes:           p.Notes,
	}
}

type MarkAsPaidRequest struct {
	PaymentDate   *string `json:"payment_date,omitempty"`   // YYYY-MM-DD, defaults to the period payment date
	PaymentMethod *string `json:"payment_method,omitempty"` // bank_transfer, cash, check
}

func (r *MarkAsPaidRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PaymentDate != nil {
		if _, ok := validator.IsValidDate(*r.PaymentDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if r.PaymentMethod != nil && !validator.IsInSlice(*r.PaymentMethod, []string{
		string(PaymentMethodBankTransfer), string(PaymentMethodCash), string(PaymentMethodCheck),
	}) {
		errs = append(errs, validator.ValidationError{Field: "payment_method", Message: "must be 'bank_transfer', 'cash' or 'check'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== CALCULATION DTOs ==========

type EmployeeOutcome struct {
	EmployeeID   string           `json:"employee_id"`
	EmployeeCode string           `json:"employee_code"`
	PayslipID    *string          `json:"payslip_id,omitempty"`
	NetSalary    *decimal.Decimal `json:"net_salary,omitempty"`
	Error        *string          `json:"error,omitempty"`
}

// Succeeded reports whether a payslip was produced for the employee.
func (o EmployeeOutcome) Succeeded() bool {
	return o.Error == nil
}

type CalculationReport struct {
	Period    PeriodResponse    `json:"period"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Outcomes  []EmployeeOutcome `json:"outcomes"`
}

// ========== PAYSLIP DTOs ==========

type PayslipAllowanceResponse struct {
	Code            AllowanceCode   `json:"code"`
	Amount          decimal.Decimal `json:"amount"`
	Quantity        decimal.Decimal `json:"quantity"`
	Rate            decimal.Decimal `json:"rate"`
	CalculationNote string          `json:"calculation_note"`
}

type PayslipDeductionResponse struct {
	Code            DeductionCode   `json:"code"`
	Amount          decimal.Decimal `json:"amount"`
	BaseAmount      decimal.Decimal `json:"base_amount"`
	Rate            decimal.Decimal `json:"rate"`
	CalculationNote string          `json:"calculation_note"`
}

type PayslipResponse struct {
	ID           string  `json:"id"`
	PeriodID     string  `json:"period_id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	EmployeeCode *string `json:"employee_code,omitempty"`

	WorkDays        decimal.Decimal `json:"work_days"`
	PaidLeaveDays   decimal.Decimal `json:"paid_leave_days"`
	UnpaidLeaveDays decimal.Decimal `json:"unpaid_leave_days"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	NightHours      decimal.Decimal `json:"night_hours"`
	HolidayHours    decimal.Decimal `json:"holiday_hours"`

	BaseSalary      decimal.Decimal `json:"base_salary"`
	TotalAllowances decimal.Decimal `json:"total_allowances"`
	OvertimePay     decimal.Decimal `json:"overtime_pay"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`

	NationalPension     decimal.Decimal `json:"national_pension"`
	HealthInsurance     decimal.Decimal `json:"health_insurance"`
	LongTermCare        decimal.Decimal `json:"long_term_care"`
	EmploymentInsurance decimal.Decimal `json:"employment_insurance"`
	IncomeTax           decimal.Decimal `json:"income_tax"`
	ResidentTax         decimal.Decimal `json:"resident_tax"`
	OtherDeductions     decimal.Decimal `json:"other_deductions"`
	TotalDeductions     decimal.Decimal `json:"total_deductions"`
	NetSalary           decimal.Decimal `json:"net_salary"`

	Status        PayslipStatus  `json:"status"`
	PaymentDate   *string        `json:"payment_date,omitempty"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`

	Allowances  []PayslipAllowanceResponse `json:"allowances"`
	Deductions  []PayslipDeductionResponse `json:"deductions"`
	Adjustments []AdjustmentResponse       `json:"adjustments,omitempty"`
}

func NewPayslipResponse(p Payslip, adjustments []PayrollAdjustment) PayslipResponse {
	resp := PayslipResponse{
		ID:                  p.ID,
		PeriodID:            p.PeriodID,
		EmployeeID:          p.EmployeeID,
		EmployeeName:        p.EmployeeName,
		EmployeeCode:        p.EmployeeCode,
		WorkDays:            p.WorkDays,
		PaidLeaveDays:       p.PaidLeaveDays,
		UnpaidLeaveDays:     p.UnpaidLeaveDays,
		OvertimeHours:       p.OvertimeHours,
		NightHours:          p.NightHours,
		HolidayHours:        p.HolidayHours,
		BaseSalary:          p.BaseSalary,
		TotalAllowances:     p.TotalAllowances,
		OvertimePay:         p.OvertimePay,
		GrossSalary:         p.GrossSalary,
		NationalPension:     p.NationalPension,
		HealthInsurance:     p.HealthInsurance,
		LongTermCare:        p.LongTermCare,
		EmploymentInsurance: p.EmploymentInsurance,
		IncomeTax:           p.IncomeTax,
		ResidentTax:         p.ResidentTax,
		OtherDeductions:     p.OtherDeductions,
		TotalDeductions:     p.TotalDeductions,
		NetSalary:           p.NetSalary,
		Status:              p.Status,
		PaymentMethod:       p.PaymentMethod,
		Allowances:          make([]PayslipAllowanceResponse, 0, len(p.Allowances)),
		Deductions:          make([]PayslipDeductionResponse, 0, len(p.Deductions)),
	}
	if p.PaymentDate != nil {
		d := p.PaymentDate.Format("2006-01-02")
		resp.PaymentDate = &d
	}
	for _, a := range p.Allowances {
		resp.Allowances = append(resp.Allowances, PayslipAllowanceResponse{
			Code:            a.Code,
			Amount:          a.Amount,
			Quantity:        a.Quantity,
			Rate:            a.Rate,
			CalculationNote: a.CalculationNote,
		})
	}
	for _, d := range p.Deductions {
		resp.Deductions = append(resp.Deductions, PayslipDeductionResponse{
			Code:            d.Code,
			Amount:          d.Amount,
			BaseAmount:      d.BaseAmount,
			Rate:            d.Rate,
			CalculationNote: d.CalculationNote,
		})
	}
	for _, adj := range adjustments {
		resp.Adjustments = append(resp.Adjustments, NewAdjustmentResponse(adj))
	}
	return resp
}

// ========== ADJUSTMENT DTOs ==========

type CreateAdjustmentRequest struct {
	AdjustmentType string          `json:"adjustment_type"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
}

func (r *CreateAdjustmentRequest) Validate() error {
	var errs validator.ValidationErrors

	switch AdjustmentType(r.AdjustmentType) {
	case AdjustmentTypeBonus, AdjustmentTypeIncentive:
		if !r.Amount.IsPositive() {
			errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be positive for " + r.AdjustmentType})
		}
	case AdjustmentTypeDeduction:
		if !r.Amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be negative for deduction"})
		}
	case AdjustmentTypeRetroactive, AdjustmentTypeCorrection:
		if r.Amount.IsZero() {
			errs = append(errs, validator.ValidationError{Field: "amount", Message: "must not be zero"})
		}
	default:
		errs = append(errs, validator.ValidationError{Field: "adjustment_type", Message: "must be one of 'bonus', 'incentive', 'retroactive', 'deduction', 'correction'"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AdjustmentResponse struct {
	ID             string          `json:"id"`
	PayslipID      string          `json:"payslip_id"`
	AdjustmentType AdjustmentType  `json:"adjustment_type"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
	ApprovedBy     *string         `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
}

func NewAdjustmentResponse(a PayrollAdjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:             a.ID,
		PayslipID:      a.PayslipID,
		AdjustmentType: a.AdjustmentType,
		Amount:         a.Amount,
		Reason:         a.Reason,
		ApprovedBy:     a.ApprovedBy,
		ApprovedAt:     a.ApprovedAt,
	}
}

// ========== CONTRACT DTOs ==========

type CreateContractRequest struct {
	EmployeeID         string           `json:"employee_id"`
	EffectiveDate      string           `json:"effective_date"`
	EndDate            *string          `json:"end_date,omitempty"`
	AnnualSalary       decimal.Decimal  `json:"annual_salary"`
	MonthlyBaseSalary  *decimal.Decimal `json:"monthly_base_salary,omitempty"` // defaults to annual_salary / 12
	ContractType       string           `json:"contract_type"`
	PreviousContractID *string          `json:"previous_contract_id,omitempty"`
	Notes              *string          `json:"notes,omitempty"`
}

func (r *CreateContractRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	effective, ok := validator.IsValidDate(r.EffectiveDate)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_date", Message: "must be in YYYY-MM-DD format"})
	}
	if r.EndDate != nil {
		end, ok := validator.IsValidDate(*r.EndDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be in YYYY-MM-DD format"})
		} else if !effective.IsZero() && end.Before(effective) {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must not be before effective_date"})
		}
	}
	if !r.AnnualSalary.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "annual_salary", Message: "must be positive"})
	}
	if r.MonthlyBaseSalary != nil && !r.MonthlyBaseSalary.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "monthly_base_salary", Message: "must be positive"})
	}
	if !validator.IsInSlice(r.ContractType, []string{
		string(ContractTypeInitial), string(ContractTypeRenewal), string(ContractTypeRaise), string(ContractTypePromotion),
	}) {
		errs = append(errs, validator.ValidationError{Field: "contract_type", Message: "must be 'initial', 'renewal', 'raise' or 'promotion'"})
	}
	if r.PreviousContractID != nil && !validator.IsValidUUID(*r.PreviousContractID) {
		errs = append(errs, validator.ValidationError{Field: "previous_contract_id", Message: "must be a valid UUID"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ContractResponse struct {
	ID                 string          `json:"id"`
	EmployeeID         string          `json:"employee_id"`
	EffectiveDate      string          `json:"effective_date"`
	EndDate            *string         `json:"end_date,omitempty"`
	AnnualSalary       decimal.Decimal `json:"annual_salary"`
	MonthlyBaseSalary  decimal.Decimal `json:"monthly_base_salary"`
	ContractType       ContractType    `json:"contract_type"`
	IsActive           bool            `json:"is_active"`
	PreviousContractID *string         `json:"previous_contract_id,omitempty"`
	Notes              *string         `json:"notes,omitempty"`
}

func NewContractResponse(c SalaryContract) ContractResponse {
	resp := ContractResponse{
		ID:                 c.ID,
		EmployeeID:         c.EmployeeID,
		EffectiveDate:      c.EffectiveDate.Format("2006-01-02"),
		AnnualSalary:       c.AnnualSalary,
		MonthlyBaseSalary:  c.MonthlyBaseSalary,
		ContractType:       c.ContractType,
		IsActive:           c.IsActive,
		PreviousContractID: c.PreviousContractID,
		Notes:              c.Notes,
	}
	if c.EndDate != nil {
		d := c.EndDate.Format("2006-01-02")
		resp.EndDate = &d
	}
	return resp
}
