package payroll

import (
	"context"
	"sync"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayrollService_CreatePeriod_DefaultsToCalendarMonth(t *testing.T) {
	f := newServiceFixture(t)

	p := f.createPeriod(t, 2024, 2)

	assert.Equal(t, "2024-02-01", p.StartDate)
	assert.Equal(t, "2024-02-29", p.EndDate)
	assert.Equal(t, "2024-02-29", p.PaymentDate)
	assert.Equal(t, payroll.PeriodStatusDraft, p.Status)
	assert.Equal(t, "February 2024 payroll", p.Name)
}

func TestPayrollService_CreatePeriod_Duplicate(t *testing.T) {
	f := newServiceFixture(t)
	f.createPeriod(t, 2025, 3)

	_, err := f.svc.CreatePeriod(context.Background(), payroll.CreatePeriodRequest{Year: 2025, Month: 3})

	assert.ErrorIs(t, err, payroll.ErrPeriodAlreadyExists)
}

func TestPayrollService_CreatePeriod_InvalidMonth(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.CreatePeriod(context.Background(), payroll.CreatePeriodRequest{Year: 2025, Month: 13})

	assert.Error(t, err)
}

func TestPayrollService_Workflow_FullLifecycle(t *testing.T) {
	f := newServiceFixture(t)
	f.addEmployee("emp-1", "E001", "3000000")
	f.addEmployee("emp-2", "E002", "4500000")
	ctx := actorContext(t, "mgr-1")
	period := f.calculatingPeriod(t, 2025, 3)

	_, err := f.svc.CalculatePeriod(ctx, period.ID)
	require.NoError(t, err)

	submitted, err := f.svc.SubmitForApproval(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusPendingApproval, submitted.Status)

	approved, err := f.svc.Approve(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "mgr-1", *approved.ApprovedBy)

	payslips, err := f.svc.ListPayslips(ctx, period.ID)
	require.NoError(t, err)
	require.Len(t, payslips, 2)
	for _, ps := range payslips {
		assert.Equal(t, payroll.PayslipStatusApproved, ps.Status)
	}

	method := string(payroll.PaymentMethodCash)
	paid, err := f.svc.MarkAsPaid(ctx, period.ID, payroll.MarkAsPaidRequest{PaymentMethod: &method})
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusPaid, paid.Status)

	payslips, err = f.svc.ListPayslips(ctx, period.ID)
	require.NoError(t, err)
	for _, ps := range payslips {
		assert.Equal(t, payroll.PayslipStatusPaid, ps.Status)
		require.NotNil(t, ps.PaymentDate)
		assert.Equal(t, "2025-03-31", *ps.PaymentDate)
		require.NotNil(t, ps.PaymentMethod)
		assert.Equal(t, payroll.PaymentMethodCash, *ps.PaymentMethod)
	}

	closed, err := f.svc.ClosePeriod(ctx, period.ID)
	require.NoError(t, err)

	assert.Equal(t, payroll.PeriodStatusClosed, closed.Status)
}

func TestPayrollService_Workflow_RejectsOutOfOrderTransitions(t *testing.T) {
	f := newServiceFixture(t)
	ctx := actorContext(t, "mgr-1")
	period := f.createPeriod(t, 2025, 4)

	_, err := f.svc.Approve(ctx, period.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)

	_, err = f.svc.SubmitForApproval(ctx, period.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)

	_, err = f.svc.ClosePeriod(ctx, period.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)

	current, err := f.svc.GetPeriod(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusDraft, current.Status)
}

func TestPayrollService_Workflow_DoubleFireRejected(t *testing.T) {
	f := newServiceFixture(t)
	period := f.calculatingPeriod(t, 2025, 5)

	_, err := f.svc.StartCalculation(context.Background(), period.ID)

	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)
}

func TestPayrollService_Workflow_ConcurrentSubmitOneWins(t *testing.T) {
	f := newServiceFixture(t)
	period := f.calculatingPeriod(t, 2025, 5)

	const callers = 8
	errs := make([]error, callers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = f.svc.SubmitForApproval(context.Background(), period.ID)
		}()
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, payroll.ErrInvalidTransition)
	}
	assert.Equal(t, 1, succeeded)

	current, err := f.svc.GetPeriod(context.Background(), period.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusPendingApproval, current.Status)
}

func TestPayrollService_Approve_RequiresActor(t *testing.T) {
	f := newServiceFixture(t)
	period := f.calculatingPeriod(t, 2025, 6)
	_, err := f.svc.SubmitForApproval(context.Background(), period.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), period.ID)

	assert.ErrorIs(t, err, payroll.ErrMissingActor)
}

func TestPayrollService_GetPeriod_NotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.GetPeriod(context.Background(), "missing")

	assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)
}

func TestPayrollService_ListPeriods_FilterByYear(t *testing.T) {
	f := newServiceFixture(t)
	f.createPeriod(t, 2024, 12)
	f.createPeriod(t, 2025, 1)
	f.createPeriod(t, 2025, 2)

	year := 2025
	periods, err := f.svc.ListPeriods(context.Background(), payroll.PeriodFilter{Year: &year})

	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, 2, periods[0].Month)
	assert.Equal(t, 1, periods[1].Month)
}
