package payroll

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayrollService_CalculatePeriod_IsolatesFailingEmployees(t *testing.T) {
	f := newServiceFixture(t)
	f.addEmployee("emp-1", "E001", "3000000")
	f.addEmployee("emp-2", "E002", "3500000")
	f.addEmployee("emp-3", "E003", "4000000")
	f.attendance.failFor["emp-2"] = errors.New("attendance unavailable")
	f.attendance.panicFor["emp-3"] = true
	period := f.calculatingPeriod(t, 2025, 3)

	report, err := f.svc.CalculatePeriod(context.Background(), period.ID)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Outcomes, 3)

	byEmployee := map[string]payroll.EmployeeOutcome{}
	for _, o := range report.Outcomes {
		byEmployee[o.EmployeeID] = o
	}
	assert.True(t, byEmployee["emp-1"].Succeeded())
	require.NotNil(t, byEmployee["emp-2"].Error)
	assert.Contains(t, *byEmployee["emp-2"].Error, "attendance unavailable")
	require.NotNil(t, byEmployee["emp-3"].Error)
	assert.Contains(t, *byEmployee["emp-3"].Error, "panic")

	assert.Equal(t, 1, report.Period.EmployeeCount)
	assert.Len(t, f.repo.payslips, 1)
}

func TestPayrollService_CalculatePeriod_TotalsMatchPayslips(t *testing.T) {
	f := newServiceFixture(t)
	f.addEmployee("emp-1", "E001", "3000000")
	f.addEmployee("emp-2", "E002", "4500000")
	f.addEmployee("emp-3", "E003", "9000000")
	period := f.calculatingPeriod(t, 2025, 3)

	report, err := f.svc.CalculatePeriod(context.Background(), period.ID)
	require.NoError(t, err)

	payslips, err := f.svc.ListPayslips(context.Background(), period.ID)
	require.NoError(t, err)

	gross, deductions, net := decimal.Zero, decimal.Zero, decimal.Zero
	for _, ps := range payslips {
		gross = gross.Add(ps.GrossSalary)
		deductions = deductions.Add(ps.TotalDeductions)
		net = net.Add(ps.NetSalary)
		assert.True(t, ps.NetSalary.Equal(ps.GrossSalary.Sub(ps.TotalDeductions)))
	}
	assert.Equal(t, 3, report.Period.EmployeeCount)
	assert.True(t, report.Period.TotalGross.Equal(gross))
	assert.True(t, report.Period.TotalDeductions.Equal(deductions))
	assert.True(t, report.Period.TotalNet.Equal(net))
}

func TestPayrollService_CalculatePeriod_Idempotent(t *testing.T) {
	f := newServiceFixture(t)
	f.addEmployee("emp-1", "E001", "3000000")
	f.attendance.records["emp-1"] = []attendance.Attendance{
		{Date: date(2025, time.March, 3), Status: attendance.StatusPresent, OvertimeHours: dec("3")},
	}
	period := f.calculatingPeriod(t, 2025, 3)

	first, err := f.svc.CalculatePeriod(context.Background(), period.ID)
	require.NoError(t, err)
	firstPayslip := f.repo.payslips[payroll.PayslipKey{PeriodID: period.ID, EmployeeID: "emp-1"}]

	second, err := f.svc.CalculatePeriod(context.Background(), period.ID)
	require.NoError(t, err)
	secondPayslip := f.repo.payslips[payroll.PayslipKey{PeriodID: period.ID, EmployeeID: "emp-1"}]

	assert.Equal(t, firstPayslip, secondPayslip)
	assert.Equal(t, first.Period.TotalNet.String(), second.Period.TotalNet.String())
	assert.Len(t, f.repo.payslips, 1)
}

func TestPayrollService_CalculatePeriod_RequiresCalculatingStatus(t *testing.T) {
	f := newServiceFixture(t)
	period := f.createPeriod(t, 2025, 3)

	_, err := f.svc.CalculatePeriod(context.Background(), period.ID)

	assert.ErrorIs(t, err, payroll.ErrPeriodNotCalculating)
}

func TestPayrollService_CalculatePeriod_RejectsConcurrentRun(t *testing.T) {
	f := newServiceFixture(t)
	period := f.calculatingPeriod(t, 2025, 3)
	release, err := f.locker.Acquire(context.Background(), runLockKey(period.ID), time.Minute)
	require.NoError(t, err)
	defer release(context.Background())

	_, err = f.svc.CalculatePeriod(context.Background(), period.ID)

	assert.ErrorIs(t, err, payroll.ErrCalculationInProgress)
}

func TestPayrollService_CalculatePeriod_ReleasesLock(t *testing.T) {
	f := newServiceFixture(t)
	f.addEmployee("emp-1", "E001", "3000000")
	period := f.calculatingPeriod(t, 2025, 3)

	_, err := f.svc.CalculatePeriod(context.Background(), period.ID)
	require.NoError(t, err)

	release, err := f.locker.Acquire(context.Background(), runLockKey(period.ID), time.Minute)
	require.NoError(t, err)
	assert.NoError(t, release(context.Background()))
}

func TestPayrollService_CalculatePeriod_WarnsWhenRunOutlivesLock(t *testing.T) {
	f := newServiceFixture(t)
	f.addEmployee("emp-1", "E001", "3000000")
	period := f.calculatingPeriod(t, 2025, 3)

	var logs bytes.Buffer
	f.svc.logger = slog.New(slog.NewTextHandler(&logs, nil))
	var ticks atomic.Int64
	base := time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time {
		return base.Add(time.Duration(ticks.Add(1)) * time.Hour)
	}

	_, err := f.svc.CalculatePeriod(context.Background(), period.ID)

	require.NoError(t, err)
	assert.Contains(t, logs.String(), "payroll calculation outlived its run lock")
	assert.Contains(t, logs.String(), "lock_ttl=30m0s")
}

func TestPayrollService_CalculatePeriod_NoLockWarningWithinTTL(t *testing.T) {
	f := newServiceFixture(t)
	f.addEmployee("emp-1", "E001", "3000000")
	period := f.calculatingPeriod(t, 2025, 3)

	var logs bytes.Buffer
	f.svc.logger = slog.New(slog.NewTextHandler(&logs, nil))

	_, err := f.svc.CalculatePeriod(context.Background(), period.ID)

	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "outlived its run lock")
}

func TestPayrollService_CalculatePeriod_SkipsInactiveEmployees(t *testing.T) {
	f := newServiceFixture(t)
	f.addEmployee("emp-1", "E001", "3000000")
	resigned := activeEmployee("emp-2", "E002")
	resigned.EmploymentStatus = employee.EmploymentStatusResigned
	f.employees.employees = append(f.employees.employees, resigned)
	period := f.calculatingPeriod(t, 2025, 3)

	report, err := f.svc.CalculatePeriod(context.Background(), period.ID)

	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, "emp-1", report.Outcomes[0].EmployeeID)
}

func TestPayrollService_CalculatePeriod_EmployeeWithoutContract(t *testing.T) {
	f := newServiceFixture(t)
	f.employees.employees = append(f.employees.employees, activeEmployee("emp-1", "E001"))
	period := f.calculatingPeriod(t, 2025, 3)

	report, err := f.svc.CalculatePeriod(context.Background(), period.ID)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	p := f.repo.payslips[payroll.PayslipKey{PeriodID: period.ID, EmployeeID: "emp-1"}]
	assert.True(t, p.BaseSalary.IsZero())
}

func TestPayrollService_CalculateEmployee(t *testing.T) {
	f := newServiceFixture(t)
	f.addEmployee("emp-1", "E001", "3000000")
	period := f.calculatingPeriod(t, 2025, 3)

	ps, err := f.svc.CalculateEmployee(context.Background(), period.ID, "emp-1")

	require.NoError(t, err)
	assert.Equal(t, "emp-1", ps.EmployeeID)
	assertDecimal(t, "3000000", ps.BaseSalary)
	require.NotNil(t, ps.EmployeeCode)
	assert.Equal(t, "E001", *ps.EmployeeCode)

	refreshed, err := f.svc.GetPeriod(context.Background(), period.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed.EmployeeCount)
	assert.True(t, refreshed.TotalNet.Equal(ps.NetSalary))
}

func TestPayrollService_CalculateEmployee_Errors(t *testing.T) {
	f := newServiceFixture(t)
	f.addEmployee("emp-1", "E001", "3000000")
	onLeave := activeEmployee("emp-2", "E002")
	onLeave.EmploymentStatus = employee.EmploymentStatusOnLeave
	f.employees.employees = append(f.employees.employees, onLeave)
	draft := f.createPeriod(t, 2025, 2)
	period := f.calculatingPeriod(t, 2025, 3)

	_, err := f.svc.CalculateEmployee(context.Background(), draft.ID, "emp-1")
	assert.ErrorIs(t, err, payroll.ErrPeriodNotCalculating)

	_, err = f.svc.CalculateEmployee(context.Background(), period.ID, "missing")
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)

	_, err = f.svc.CalculateEmployee(context.Background(), period.ID, "emp-2")
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotActive)
}

func TestPayrollService_RunCalculation_SubmitsDespiteFailures(t *testing.T) {
	f := newServiceFixture(t)
	f.addEmployee("emp-1", "E001", "3000000")
	f.addEmployee("emp-2", "E002", "3000000")
	f.attendance.failFor["emp-2"] = errors.New("boom")
	period := f.createPeriod(t, 2025, 3)

	report, err := f.svc.RunCalculation(context.Background(), period.ID)

	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusPendingApproval, report.Period.Status)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Period.EmployeeCount)
}

func TestPayrollService_RunCalculation_RejectsApprovedPeriod(t *testing.T) {
	f := newServiceFixture(t)
	ctx := actorContext(t, "mgr-1")
	period := f.calculatingPeriod(t, 2025, 3)
	_, err := f.svc.SubmitForApproval(ctx, period.ID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, period.ID)
	require.NoError(t, err)

	_, err = f.svc.RunCalculation(ctx, period.ID)

	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)
}

func TestPayrollService_PayslipsFrozenAfterSubmission(t *testing.T) {
	f := newServiceFixture(t)
	f.addEmployee("emp-1", "E001", "3000000")
	period := f.calculatingPeriod(t, 2025, 3)
	_, err := f.svc.CalculatePeriod(context.Background(), period.ID)
	require.NoError(t, err)
	_, err = f.svc.SubmitForApproval(context.Background(), period.ID)
	require.NoError(t, err)
	saves := f.repo.saves

	_, err = f.svc.CalculateEmployee(context.Background(), period.ID, "emp-1")

	assert.ErrorIs(t, err, payroll.ErrPeriodNotCalculating)
	assert.Equal(t, saves, f.repo.saves)
}
