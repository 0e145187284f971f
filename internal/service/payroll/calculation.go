package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/lock"
	"golang.org/x/sync/errgroup"
)

func runLockKey(periodID string) string {
	return "payroll:calculate:" + periodID
}

func (s *PayrollServiceImpl) loadRules(ctx context.Context) (payroll.RuleSnapshot, error) {
	allowances, err := s.payrollRepo.ListAllowanceTypes(ctx)
	if err != nil {
		return payroll.RuleSnapshot{}, err
	}
	deductions, err := s.payrollRepo.ListDeductionTypes(ctx)
	if err != nil {
		return payroll.RuleSnapshot{}, err
	}
	return payroll.NewRuleSnapshot(allowances, deductions), nil
}

// CalculatePeriod computes a payslip for every active employee of a
// calculating period. A failing employee is reported in the outcome list
// and never aborts the others. Period totals are recomputed from the stored
// payslips once all employees are done.
func (s *PayrollServiceImpl) CalculatePeriod(ctx context.Context, id string) (payroll.CalculationReport, error) {
	period, err := s.payrollRepo.GetPeriodByID(ctx, id)
	if err != nil {
		return payroll.CalculationReport{}, err
	}
	if !period.Status.CanRecalculate() {
		return payroll.CalculationReport{}, payroll.ErrPeriodNotCalculating
	}

	release, err := s.locker.Acquire(ctx, runLockKey(id), s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return payroll.CalculationReport{}, payroll.ErrCalculationInProgress
		}
		return payroll.CalculationReport{}, fmt.Errorf("failed to acquire calculation lock: %w", err)
	}
	started := s.now()
	defer func() {
		if elapsed := s.now().Sub(started); elapsed > s.cfg.LockTTL {
			s.logger.WarnContext(ctx, "payroll calculation outlived its run lock",
				"period_id", id, "elapsed", elapsed.String(), "lock_ttl", s.cfg.LockTTL.String())
		}
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "failed to release calculation lock", "period_id", id, "error", err)
		}
	}()

	rules, err := s.loadRules(ctx)
	if err != nil {
		return payroll.CalculationReport{}, err
	}

	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return payroll.CalculationReport{}, err
	}

	s.logger.InfoContext(ctx, "payroll calculation started", "period_id", id, "employees", len(employees))

	outcomes := make([]payroll.EmployeeOutcome, len(employees))
	var g errgroup.Group
	g.SetLimit(max(s.cfg.Workers, 1))
	for i, emp := range employees {
		g.Go(func() error {
			outcomes[i] = s.calculateOutcome(ctx, period, rules, emp)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return payroll.CalculationReport{}, err
	}

	totals, err := s.payrollRepo.RecomputePeriodTotals(ctx, id)
	if err != nil {
		return payroll.CalculationReport{}, err
	}

	report := payroll.CalculationReport{
		Period:   payroll.NewPeriodResponse(totals),
		Outcomes: outcomes,
	}
	for _, o := range outcomes {
		if o.Succeeded() {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	s.logger.InfoContext(ctx, "payroll calculation finished",
		"period_id", id, "succeeded", report.Succeeded, "failed", report.Failed,
		"total_net", totals.TotalNet.String())
	return report, nil
}

// calculateOutcome runs one employee and turns any failure, panics
// included, into an outcome entry.
func (s *PayrollServiceImpl) calculateOutcome(ctx context.Context, period payroll.PayrollPeriod, rules payroll.RuleSnapshot, emp employee.Employee) (outcome payroll.EmployeeOutcome) {
	outcome = payroll.EmployeeOutcome{EmployeeID: emp.ID, EmployeeCode: emp.EmployeeCode}

	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("panic: %v", r)
			outcome.PayslipID, outcome.NetSalary, outcome.Error = nil, nil, &msg
			s.logger.ErrorContext(ctx, "payslip calculation panicked",
				"period_id", period.ID, "employee_id", emp.ID, "panic", r)
		}
	}()

	p, err := s.calculateOne(ctx, period, rules, emp)
	if err != nil {
		msg := err.Error()
		outcome.Error = &msg
		s.logger.WarnContext(ctx, "payslip calculation failed",
			"period_id", period.ID, "employee_id", emp.ID, "error", err)
		return outcome
	}

	outcome.PayslipID = &p.ID
	outcome.NetSalary = &p.NetSalary
	return outcome
}

func (s *PayrollServiceImpl) calculateOne(ctx context.Context, period payroll.PayrollPeriod, rules payroll.RuleSnapshot, emp employee.Employee) (payroll.Payslip, error) {
	in, err := s.payslipInputs(ctx, period, rules, emp)
	if err != nil {
		return payroll.Payslip{}, err
	}
	return s.payrollRepo.SavePayslip(ctx, in.Key, s.payslipBuilder(in))
}

// payslipInputs loads everything a payslip depends on. It performs no writes.
func (s *PayrollServiceImpl) payslipInputs(ctx context.Context, period payroll.PayrollPeriod, rules payroll.RuleSnapshot, emp employee.Employee) (PayslipInputs, error) {
	records, err := s.attendanceRepo.ListByEmployeeAndRange(ctx, emp.ID, period.StartDate, period.EndDate)
	if err != nil {
		return PayslipInputs{}, err
	}
	leaves, err := s.leaveRepo.ListApprovedOverlapping(ctx, emp.ID, period.StartDate, period.EndDate)
	if err != nil {
		return PayslipInputs{}, err
	}
	contracts, err := s.payrollRepo.ListContractsByEmployee(ctx, emp.ID)
	if err != nil {
		return PayslipInputs{}, err
	}

	in := PayslipInputs{
		Key:      payroll.PayslipKey{PeriodID: period.ID, EmployeeID: emp.ID},
		Employee: emp,
		Summary:  AggregateWork(records, leaves, period.StartDate, period.EndDate),
		Rules:    rules,
	}
	if c, ok := ResolveContract(contracts, period.EndDate); ok {
		in.Contract = &c
	} else {
		s.logger.WarnContext(ctx, "no active salary contract, base salary is zero",
			"period_id", period.ID, "employee_id", emp.ID)
	}
	return in, nil
}

func (s *PayrollServiceImpl) payslipBuilder(in PayslipInputs) payroll.PayslipBuilder {
	return func(adjustments []payroll.PayrollAdjustment) (payroll.Payslip, error) {
		return s.assembler.Assemble(in, adjustments), nil
	}
}

// CalculateEmployee recomputes a single payslip and refreshes the period totals.
func (s *PayrollServiceImpl) CalculateEmployee(ctx context.Context, periodID, employeeID string) (payroll.PayslipResponse, error) {
	period, err := s.payrollRepo.GetPeriodByID(ctx, periodID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	if !period.Status.CanRecalculate() {
		return payroll.PayslipResponse{}, payroll.ErrPeriodNotCalculating
	}

	emp, err := s.getEmployee(ctx, employeeID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	if !emp.IsActive() {
		return payroll.PayslipResponse{}, payroll.ErrEmployeeNotActive
	}

	p, err := s.recalculate(ctx, period, emp)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	adjustments, err := s.payrollRepo.ListAdjustmentsByPayslip(ctx, p.ID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	return payroll.NewPayslipResponse(p, adjustments), nil
}

func (s *PayrollServiceImpl) recalculate(ctx context.Context, period payroll.PayrollPeriod, emp employee.Employee) (payroll.Payslip, error) {
	rules, err := s.loadRules(ctx)
	if err != nil {
		return payroll.Payslip{}, err
	}

	p, err := s.calculateOne(ctx, period, rules, emp)
	if err != nil {
		return payroll.Payslip{}, err
	}

	if _, err := s.payrollRepo.RecomputePeriodTotals(ctx, period.ID); err != nil {
		return payroll.Payslip{}, err
	}

	p.EmployeeName = &emp.FullName
	p.EmployeeCode = &emp.EmployeeCode
	return p, nil
}

// RunCalculation starts the calculation if needed, calculates every
// employee and submits the period for approval. Failed employees do not
// block the submission; they are listed in the report.
func (s *PayrollServiceImpl) RunCalculation(ctx context.Context, id string) (payroll.CalculationReport, error) {
	period, err := s.payrollRepo.GetPeriodByID(ctx, id)
	if err != nil {
		return payroll.CalculationReport{}, err
	}

	if period.Status != payroll.PeriodStatusCalculating {
		if _, err := s.StartCalculation(ctx, id); err != nil {
			return payroll.CalculationReport{}, err
		}
	}

	report, err := s.CalculatePeriod(ctx, id)
	if err != nil {
		return payroll.CalculationReport{}, err
	}

	submitted, err := s.SubmitForApproval(ctx, id)
	if err != nil {
		return report, err
	}
	report.Period = submitted

	return report, nil
}
