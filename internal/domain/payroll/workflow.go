package payroll

import (
	"fmt"
	"time"
)

// Transition names a step of the period workflow.
type Transition string

const (
	TransitionStartCalculation  Transition = "start_calculation"
	TransitionSubmitForApproval Transition = "submit_for_approval"
	TransitionApprove           Transition = "approve"
	TransitionMarkAsPaid        Transition = "mark_as_paid"
	TransitionClosePeriod       Transition = "close_period"
)

// TransitionRule describes one legal period transition and the payslip
// status it forces on every payslip of the period, if any.
type TransitionRule struct {
	Transition    Transition
	From          PeriodStatus
	To            PeriodStatus
	PayslipStatus *PayslipStatus
}

func payslipStatusPtr(s PayslipStatus) *PayslipStatus {
	return &s
}

var workflow = map[Transition]TransitionRule{
	TransitionStartCalculation: {
		Transition: TransitionStartCalculation,
		From:       PeriodStatusDraft,
		To:         PeriodStatusCalculating,
	},
	TransitionSubmitForApproval: {
		Transition: TransitionSubmitForApproval,
		From:       PeriodStatusCalculating,
		To:         PeriodStatusPendingApproval,
	},
	TransitionApprove: {
		Transition:    TransitionApprove,
		From:          PeriodStatusPendingApproval,
		To:            PeriodStatusApproved,
		PayslipStatus: payslipStatusPtr(PayslipStatusApproved),
	},
	TransitionMarkAsPaid: {
		Transition:    TransitionMarkAsPaid,
		From:          PeriodStatusApproved,
		To:            PeriodStatusPaid,
		PayslipStatus: payslipStatusPtr(PayslipStatusPaid),
	},
	TransitionClosePeriod: {
		Transition: TransitionClosePeriod,
		From:       PeriodStatusPaid,
		To:         PeriodStatusClosed,
	},
}

// RuleFor returns the rule of transition t.
func RuleFor(t Transition) (TransitionRule, error) {
	rule, ok := workflow[t]
	if !ok {
		return TransitionRule{}, fmt.Errorf("unknown transition %q: %w", t, ErrInvalidTransition)
	}
	return rule, nil
}

// Check returns ErrInvalidTransition unless the rule may fire from current.
func (r TransitionRule) Check(current PeriodStatus) error {
	if current != r.From {
		return fmt.Errorf("%s requires status %s, period is %s: %w", r.Transition, r.From, current, ErrInvalidTransition)
	}
	return nil
}

// CanRecalculate reports whether payslips of a period in status s may be written.
func (s PeriodStatus) CanRecalculate() bool {
	return s == PeriodStatusCalculating
}

// IsValid reports whether s is a known period status.
func (s PeriodStatus) IsValid() bool {
	switch s {
	case PeriodStatusDraft, PeriodStatusCalculating, PeriodStatusPendingApproval,
		PeriodStatusApproved, PeriodStatusPaid, PeriodStatusClosed:
		return true
	}
	return false
}

// TransitionStamp carries the metadata recorded by a transition.
type TransitionStamp struct {
	ActorID       *string
	PaymentDate   *time.Time
	PaymentMethod *PaymentMethod
}
