package payroll

import (
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// CalculateAllowances applies the active allowance rules of the snapshot to
// one employee. Overtime, night and holiday allowances are priced by the
// overtime calculator and skipped here.
func CalculateAllowances(rules payroll.RuleSnapshot, emp employee.Employee) ([]payroll.PayslipAllowance, decimal.Decimal) {
	lines := make([]payroll.PayslipAllowance, 0)
	total := decimal.Zero

	for _, rule := range rules.Allowances() {
		var amount decimal.Decimal

		switch rule.Code {
		case payroll.AllowanceCodeOvertime, payroll.AllowanceCodeNight, payroll.AllowanceCodeHoliday:
			continue
		case payroll.AllowanceCodePosition:
			if !emp.HasPositionAllowance() {
				continue
			}
			amount = *emp.PositionAllowance
		default:
			// percentage, hourly and formula rules are not priced yet
			if rule.CalculationType != payroll.CalculationTypeFixed {
				continue
			}
			amount = rule.DefaultAmount
		}

		amount = roundMoney(amount)
		lines = append(lines, payroll.PayslipAllowance{
			AllowanceTypeID: rule.ID,
			Code:            rule.Code,
			Amount:          amount,
			Quantity:        decimal.NewFromInt(1),
			Rate:            decimal.Zero,
			CalculationNote: calculationNote(rule.Name),
		})
		total = total.Add(amount)
	}

	return lines, total
}
