package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

// editablePayslip loads a payslip together with its period and rejects it
// once the period left the calculating state.
func (s *PayrollServiceImpl) editablePayslip(ctx context.Context, payslipID string) (payroll.Payslip, payroll.PayrollPeriod, error) {
	p, err := s.payrollRepo.GetPayslipByID(ctx, payslipID)
	if err != nil {
		return payroll.Payslip{}, payroll.PayrollPeriod{}, err
	}

	period, err := s.payrollRepo.GetPeriodByID(ctx, p.PeriodID)
	if err != nil {
		return payroll.Payslip{}, payroll.PayrollPeriod{}, err
	}
	if !period.Status.CanRecalculate() {
		return payroll.Payslip{}, payroll.PayrollPeriod{}, payroll.ErrPayslipLocked
	}

	return p, period, nil
}

func (s *PayrollServiceImpl) CreateAdjustment(ctx context.Context, payslipID string, req payroll.CreateAdjustmentRequest) (payroll.AdjustmentResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.AdjustmentResponse{}, err
	}

	if _, _, err := s.editablePayslip(ctx, payslipID); err != nil {
		return payroll.AdjustmentResponse{}, err
	}

	created, err := s.payrollRepo.CreateAdjustment(ctx, payroll.PayrollAdjustment{
		PayslipID:      payslipID,
		AdjustmentType: payroll.AdjustmentType(req.AdjustmentType),
		Amount:         roundMoney(req.Amount),
		Reason:         req.Reason,
	})
	if err != nil {
		return payroll.AdjustmentResponse{}, err
	}

	return payroll.NewAdjustmentResponse(created), nil
}

// ApproveAdjustment stamps the adjustment and rebuilds the payslip it
// belongs to so the amount shows up in the payslip and period totals. The
// payslip inputs are loaded first; the stamp and the rebuild commit together.
func (s *PayrollServiceImpl) ApproveAdjustment(ctx context.Context, id string) (payroll.AdjustmentResponse, error) {
	actor, err := getActorFromContext(ctx)
	if err != nil {
		return payroll.AdjustmentResponse{}, err
	}

	adj, err := s.payrollRepo.GetAdjustmentByID(ctx, id)
	if err != nil {
		return payroll.AdjustmentResponse{}, err
	}
	if adj.IsApproved() {
		return payroll.AdjustmentResponse{}, payroll.ErrAdjustmentAlreadyApproved
	}

	p, period, err := s.editablePayslip(ctx, adj.PayslipID)
	if err != nil {
		return payroll.AdjustmentResponse{}, err
	}

	emp, err := s.getEmployee(ctx, p.EmployeeID)
	if err != nil {
		return payroll.AdjustmentResponse{}, err
	}
	rules, err := s.loadRules(ctx)
	if err != nil {
		return payroll.AdjustmentResponse{}, err
	}
	in, err := s.payslipInputs(ctx, period, rules, emp)
	if err != nil {
		return payroll.AdjustmentResponse{}, fmt.Errorf("failed to load payslip inputs for adjustment %s: %w", id, err)
	}

	approved, _, err := s.payrollRepo.ApproveAdjustment(ctx, id, actor, in.Key, s.payslipBuilder(in))
	if err != nil {
		if errors.Is(err, payroll.ErrPeriodNotCalculating) {
			return payroll.AdjustmentResponse{}, payroll.ErrPayslipLocked
		}
		return payroll.AdjustmentResponse{}, err
	}

	s.logger.InfoContext(ctx, "payroll adjustment approved",
		"adjustment_id", id, "payslip_id", p.ID, "approved_by", actor)
	return payroll.NewAdjustmentResponse(approved), nil
}
