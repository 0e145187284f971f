package payroll

import (
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

type taxBracket struct {
	upTo     decimal.Decimal // inclusive upper bound, zero for the open top bracket
	floor    decimal.Decimal // lower bound of the band
	baseTax  decimal.Decimal // tax owed at floor
	marginal decimal.Decimal
}

var incomeTaxBrackets = []taxBracket{
	{upTo: decimal.NewFromInt(1_500_000), floor: decimal.Zero, baseTax: decimal.Zero, marginal: decimal.RequireFromString("0.06")},
	{upTo: decimal.NewFromInt(4_500_000), floor: decimal.NewFromInt(1_500_000), baseTax: decimal.NewFromInt(90_000), marginal: decimal.RequireFromString("0.15")},
	{upTo: decimal.NewFromInt(8_800_000), floor: decimal.NewFromInt(4_500_000), baseTax: decimal.NewFromInt(540_000), marginal: decimal.RequireFromString("0.24")},
	{upTo: decimal.Zero, floor: decimal.NewFromInt(8_800_000), baseTax: decimal.NewFromInt(1_572_000), marginal: decimal.RequireFromString("0.35")},
}

// IncomeTax applies the monthly progressive schedule to gross and returns
// the tax with the marginal rate of the bracket used. A bracket's upper
// bound belongs to that bracket.
func IncomeTax(gross decimal.Decimal) (tax decimal.Decimal, marginal decimal.Decimal) {
	if !gross.IsPositive() {
		return decimal.Zero, decimal.Zero
	}
	for _, b := range incomeTaxBrackets {
		if b.upTo.IsZero() || gross.LessThanOrEqual(b.upTo) {
			return b.baseTax.Add(gross.Sub(b.floor).Mul(b.marginal)), b.marginal
		}
	}
	return decimal.Zero, decimal.Zero
}

// DeductionResult holds the statutory deductions computed for one gross.
type DeductionResult struct {
	Lines   []payroll.PayslipDeduction
	Amounts map[payroll.DeductionCode]decimal.Decimal
	Total   decimal.Decimal
}

// Amount returns the computed amount of code, zero when it was not computed.
func (r DeductionResult) Amount(code payroll.DeductionCode) decimal.Decimal {
	if a, ok := r.Amounts[code]; ok {
		return a
	}
	return decimal.Zero
}

// CalculateDeductions evaluates the statutory rules of the snapshot over
// gross in payroll.DeductionOrder. A rule missing from the snapshot
// contributes nothing, and so does a rule whose base rule was not computed.
func CalculateDeductions(rules payroll.RuleSnapshot, gross decimal.Decimal) DeductionResult {
	result := DeductionResult{
		Lines:   make([]payroll.PayslipDeduction, 0, len(payroll.DeductionOrder)),
		Amounts: make(map[payroll.DeductionCode]decimal.Decimal, len(payroll.DeductionOrder)),
		Total:   decimal.Zero,
	}

	for _, code := range payroll.DeductionOrder {
		rule, ok := rules.Deduction(code)
		if !ok {
			continue
		}

		base := gross
		if dep, derived := code.DependsOn(); derived {
			depAmount, computed := result.Amounts[dep]
			if !computed {
				continue
			}
			base = depAmount
		}

		rate := rule.DefaultRate
		var amount decimal.Decimal
		switch code {
		case payroll.DeductionCodePension:
			amount = base.Mul(rate)
			if rule.MaxAmount != nil && amount.GreaterThan(*rule.MaxAmount) {
				amount = *rule.MaxAmount
			}
		case payroll.DeductionCodeIncomeTax:
			amount, rate = IncomeTax(base)
		default:
			amount = base.Mul(rate)
		}
		amount = roundMoney(amount)

		result.Amounts[code] = amount
		result.Total = result.Total.Add(amount)
		result.Lines = append(result.Lines, payroll.PayslipDeduction{
			DeductionTypeID: rule.ID,
			Code:            code,
			Amount:          amount,
			BaseAmount:      base,
			Rate:            rate,
			CalculationNote: calculationNote(rule.Name),
		})
	}

	return result
}
