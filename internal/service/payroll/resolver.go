package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// ResolveContract picks the authoritative contract as of asOf: among active
// contracts with effective date <= asOf, the latest effective date wins,
// then the latest creation time, then the greatest id. found is false when
// no contract qualifies.
func ResolveContract(contracts []payroll.SalaryContract, asOf time.Time) (contract payroll.SalaryContract, found bool) {
	for _, c := range contracts {
		if !c.IsActive || c.EffectiveDate.After(asOf) {
			continue
		}
		if !found || newerContract(c, contract) {
			contract = c
			found = true
		}
	}
	return contract, found
}

func newerContract(a, b payroll.SalaryContract) bool {
	if !a.EffectiveDate.Equal(b.EffectiveDate) {
		return a.EffectiveDate.After(b.EffectiveDate)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// HourlyRate is the monthly base divided by the standard monthly work hours.
func HourlyRate(c payroll.SalaryContract, monthlyWorkHours decimal.Decimal) decimal.Decimal {
	if monthlyWorkHours.IsZero() {
		return decimal.Zero
	}
	return c.MonthlyBaseSalary.Div(monthlyWorkHours)
}
