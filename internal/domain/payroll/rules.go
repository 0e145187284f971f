package payroll

import "sort"

// DeductionCode is the closed set of statutory deductions the engine knows.
type DeductionCode string

const (
	DeductionCodePension      DeductionCode = "PENSION"
	DeductionCodeHealth       DeductionCode = "HEALTH"
	DeductionCodeLongTermCare DeductionCode = "LONG_TERM_CARE"
	DeductionCodeEmployment   DeductionCode = "EMPLOYMENT"
	DeductionCodeIncomeTax    DeductionCode = "INCOME_TAX"
	DeductionCodeResidentTax  DeductionCode = "RESIDENT_TAX"
)

// DeductionOrder is the evaluation order of statutory deductions. A code
// always appears after the code it depends on.
var DeductionOrder = []DeductionCode{
	DeductionCodePension,
	DeductionCodeHealth,
	DeductionCodeLongTermCare,
	DeductionCodeEmployment,
	DeductionCodeIncomeTax,
	DeductionCodeResidentTax,
}

// DependsOn returns the deduction whose amount is the base of c.
// Codes computed from gross return false.
func (c DeductionCode) DependsOn() (DeductionCode, bool) {
	switch c {
	case DeductionCodeLongTermCare:
		return DeductionCodeHealth, true
	case DeductionCodeResidentTax:
		return DeductionCodeIncomeTax, true
	default:
		return "", false
	}
}

// IsValid reports whether c is one of the known deduction codes.
func (c DeductionCode) IsValid() bool {
	for _, known := range DeductionOrder {
		if c == known {
			return true
		}
	}
	return false
}

// RuleSnapshot is the read-only view of rule master data used by one
// calculation pass. Only active rules are kept.
type RuleSnapshot struct {
	allowances []AllowanceType
	deductions map[DeductionCode]DeductionType
}

// NewRuleSnapshot filters out inactive rules and deductions that are not
// statutory or carry an unknown code.
func NewRuleSnapshot(allowances []AllowanceType, deductions []DeductionType) RuleSnapshot {
	snap := RuleSnapshot{
		allowances: make([]AllowanceType, 0, len(allowances)),
		deductions: make(map[DeductionCode]DeductionType, len(deductions)),
	}

	for _, a := range allowances {
		if a.IsActive {
			snap.allowances = append(snap.allowances, a)
		}
	}
	sort.SliceStable(snap.allowances, func(i, j int) bool {
		return snap.allowances[i].DisplayOrder < snap.allowances[j].DisplayOrder
	})

	for _, d := range deductions {
		if !d.IsActive || !d.IsStatutory || !d.Code.IsValid() {
			continue
		}
		snap.deductions[d.Code] = d
	}

	return snap
}

// Allowances returns a copy of the active allowance rules in display order.
func (s RuleSnapshot) Allowances() []AllowanceType {
	out := make([]AllowanceType, len(s.allowances))
	copy(out, s.allowances)
	return out
}

// Deduction returns the active statutory rule for code, if any.
func (s RuleSnapshot) Deduction(code DeductionCode) (DeductionType, bool) {
	d, ok := s.deductions[code]
	return d, ok
}
