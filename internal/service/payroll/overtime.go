package payroll

import (
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// OvertimePolicy prices overtime hours from the contract's hourly rate.
type OvertimePolicy struct {
	MonthlyWorkHours  decimal.Decimal
	WeekdayMultiplier decimal.Decimal
	HolidayMultiplier decimal.Decimal
}

// Calculate returns the overtime pay for summary. Without a contract or
// without recorded hours the pay is zero.
func (p OvertimePolicy) Calculate(contract *payroll.SalaryContract, summary payroll.WorkSummary) decimal.Decimal {
	if contract == nil {
		return decimal.Zero
	}

	hourly := HourlyRate(*contract, p.MonthlyWorkHours)
	pay := decimal.Zero

	if summary.OvertimeHours.IsPositive() {
		pay = pay.Add(hourly.Mul(p.WeekdayMultiplier).Mul(summary.OvertimeHours))
	}
	if summary.HolidayHours.IsPositive() {
		pay = pay.Add(hourly.Mul(p.HolidayMultiplier).Mul(summary.HolidayHours))
	}

	return roundMoney(pay)
}
