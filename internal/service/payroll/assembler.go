package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// PayslipInputs is everything the assembler needs for one employee.
type PayslipInputs struct {
	Key      payroll.PayslipKey
	Employee employee.Employee
	Summary  payroll.WorkSummary
	Contract *payroll.SalaryContract
	Rules    payroll.RuleSnapshot
}

// Assembler combines the calculators into a payslip.
type Assembler struct {
	Overtime     OvertimePolicy
	DaysPerMonth decimal.Decimal
}

// Assemble computes the payslip of in. Approved positive adjustments are
// added to the allowances, approved negative adjustments to other
// deductions; unapproved ones are ignored.
func (a Assembler) Assemble(in PayslipInputs, adjustments []payroll.PayrollAdjustment) payroll.Payslip {
	allowanceLines, allowanceTotal := CalculateAllowances(in.Rules, in.Employee)

	adjustmentsIn, adjustmentsOut := splitAdjustments(adjustments)

	base := a.baseSalary(in.Contract, in.Summary.UnpaidLeaveDays)
	overtime := a.Overtime.Calculate(in.Contract, in.Summary)
	totalAllowances := allowanceTotal.Add(adjustmentsIn)
	gross := base.Add(totalAllowances).Add(overtime)

	deductions := CalculateDeductions(in.Rules, gross)
	totalDeductions := deductions.Total.Add(adjustmentsOut)

	return payroll.Payslip{
		PeriodID:   in.Key.PeriodID,
		EmployeeID: in.Key.EmployeeID,

		WorkDays:        in.Summary.WorkDays,
		PaidLeaveDays:   in.Summary.PaidLeaveDays,
		UnpaidLeaveDays: in.Summary.UnpaidLeaveDays,
		OvertimeHours:   in.Summary.OvertimeHours,
		NightHours:      in.Summary.NightHours,
		HolidayHours:    in.Summary.HolidayHours,

		BaseSalary:      base,
		TotalAllowances: totalAllowances,
		OvertimePay:     overtime,
		GrossSalary:     gross,

		NationalPension:     deductions.Amount(payroll.DeductionCodePension),
		HealthInsurance:     deductions.Amount(payroll.DeductionCodeHealth),
		LongTermCare:        deductions.Amount(payroll.DeductionCodeLongTermCare),
		EmploymentInsurance: deductions.Amount(payroll.DeductionCodeEmployment),
		IncomeTax:           deductions.Amount(payroll.DeductionCodeIncomeTax),
		ResidentTax:         deductions.Amount(payroll.DeductionCodeResidentTax),
		OtherDeductions:     adjustmentsOut,
		TotalDeductions:     totalDeductions,

		NetSalary: gross.Sub(totalDeductions),
		Status:    payroll.PayslipStatusCalculated,

		Allowances: allowanceLines,
		Deductions: deductions.Lines,
	}
}

// baseSalary prorates the monthly base by unpaid leave days on a fixed
// days-per-month basis. It never goes below zero.
func (a Assembler) baseSalary(contract *payroll.SalaryContract, unpaidDays decimal.Decimal) decimal.Decimal {
	if contract == nil {
		return decimal.Zero
	}
	monthly := contract.MonthlyBaseSalary
	if unpaidDays.IsPositive() && a.DaysPerMonth.IsPositive() {
		daily := monthly.Div(a.DaysPerMonth)
		monthly = monthly.Sub(daily.Mul(unpaidDays))
	}
	if monthly.IsNegative() {
		return decimal.Zero
	}
	return roundMoney(monthly)
}

func splitAdjustments(adjustments []payroll.PayrollAdjustment) (in, out decimal.Decimal) {
	in, out = decimal.Zero, decimal.Zero
	for _, adj := range adjustments {
		if !adj.IsApproved() {
			continue
		}
		amount := roundMoney(adj.Amount)
		if amount.IsPositive() {
			in = in.Add(amount)
		} else {
			out = out.Add(amount.Neg())
		}
	}
	return in, out
}

func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func calculationNote(ruleName string) string {
	return ruleName + " calculation"
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
