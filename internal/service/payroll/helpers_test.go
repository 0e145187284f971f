package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/lock"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func defaultAllowanceTypes() []payroll.AllowanceType {
	return []payroll.AllowanceType{
		{ID: "at-position", Code: payroll.AllowanceCodePosition, Name: "Position allowance", CalculationType: payroll.CalculationTypeFixed, IsActive: true, DisplayOrder: 1},
		{ID: "at-meal", Code: "MEAL", Name: "Meal allowance", CalculationType: payroll.CalculationTypeFixed, DefaultAmount: dec("200000"), IsActive: true, DisplayOrder: 2},
		{ID: "at-transport", Code: "TRANSPORT", Name: "Transport allowance", CalculationType: payroll.CalculationTypeFixed, DefaultAmount: dec("100000"), IsActive: true, DisplayOrder: 3},
		{ID: "at-overtime", Code: payroll.AllowanceCodeOvertime, Name: "Overtime allowance", CalculationType: payroll.CalculationTypeHourly, IsActive: true, DisplayOrder: 10},
		{ID: "at-night", Code: payroll.AllowanceCodeNight, Name: "Night allowance", CalculationType: payroll.CalculationTypeHourly, IsActive: true, DisplayOrder: 11},
		{ID: "at-holiday", Code: payroll.AllowanceCodeHoliday, Name: "Holiday allowance", CalculationType: payroll.CalculationTypeHourly, IsActive: true, DisplayOrder: 12},
	}
}

func defaultDeductionTypes() []payroll.DeductionType {
	return []payroll.DeductionType{
		{ID: "dt-pension", Code: payroll.DeductionCodePension, Name: "National pension", DefaultRate: dec("0.045"), MaxAmount: decPtr("265500"), IsStatutory: true, IsActive: true, DisplayOrder: 1},
		{ID: "dt-health", Code: payroll.DeductionCodeHealth, Name: "Health insurance", DefaultRate: dec("0.0355"), IsStatutory: true, IsActive: true, DisplayOrder: 2},
		{ID: "dt-ltc", Code: payroll.DeductionCodeLongTermCare, Name: "Long-term care", DefaultRate: dec("0.1295"), IsStatutory: true, IsActive: true, DisplayOrder: 3},
		{ID: "dt-employment", Code: payroll.DeductionCodeEmployment, Name: "Employment insurance", DefaultRate: dec("0.009"), IsStatutory: true, IsActive: true, DisplayOrder: 4},
		{ID: "dt-income", Code: payroll.DeductionCodeIncomeTax, Name: "Income tax", CalculationType: payroll.CalculationTypeFormula, IsStatutory: true, IsActive: true, DisplayOrder: 5},
		{ID: "dt-resident", Code: payroll.DeductionCodeResidentTax, Name: "Resident tax", DefaultRate: dec("0.1"), IsStatutory: true, IsActive: true, DisplayOrder: 6},
	}
}

func defaultRules() payroll.RuleSnapshot {
	return payroll.NewRuleSnapshot(defaultAllowanceTypes(), defaultDeductionTypes())
}

func activeEmployee(id, code string) employee.Employee {
	return employee.Employee{
		ID:               id,
		EmployeeCode:     code,
		FullName:         "Employee " + code,
		HireDate:         date(2020, time.January, 1),
		EmploymentStatus: employee.EmploymentStatusActive,
	}
}

func actorContext(t *testing.T, employeeID string) context.Context {
	t.Helper()
	tok := jwt.New()
	require.NoError(t, tok.Set("employee_id", employeeID))
	return jwtauth.NewContext(context.Background(), tok, nil)
}

type serviceFixture struct {
	svc        *PayrollServiceImpl
	repo       *fakePayrollRepo
	employees  *fakeEmployeeRepo
	attendance *fakeAttendanceRepo
	leaves     *fakeLeaveRepo
	locker     *lock.MemoryLocker
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	repo := newFakePayrollRepo()
	repo.allowances = defaultAllowanceTypes()
	repo.deductions = defaultDeductionTypes()

	f := &serviceFixture{
		repo:       repo,
		employees:  &fakeEmployeeRepo{},
		attendance: &fakeAttendanceRepo{records: map[string][]attendance.Attendance{}, failFor: map[string]error{}, panicFor: map[string]bool{}},
		leaves:     &fakeLeaveRepo{requests: map[string][]leave.LeaveRequest{}},
		locker:     lock.NewMemoryLocker(),
	}

	cfg := config.DefaultPayrollConfig()
	cfg.Workers = 4
	f.svc = newPayrollService(repo, f.employees, f.attendance, f.leaves, f.locker, cfg, nil)
	return f
}

// addEmployee registers an active employee with a single contract effective
// from the start of 2024.
func (f *serviceFixture) addEmployee(id, code, monthly string) employee.Employee {
	emp := activeEmployee(id, code)
	f.employees.employees = append(f.employees.employees, emp)
	f.repo.contracts[id] = append(f.repo.contracts[id], payroll.SalaryContract{
		ID:                "contract-" + id,
		EmployeeID:        id,
		EffectiveDate:     date(2024, time.January, 1),
		AnnualSalary:      dec(monthly).Mul(decimal.NewFromInt(12)),
		MonthlyBaseSalary: dec(monthly),
		ContractType:      payroll.ContractTypeInitial,
		IsActive:          true,
	})
	return emp
}

func (f *serviceFixture) createPeriod(t *testing.T, year, month int) payroll.PeriodResponse {
	t.Helper()
	p, err := f.svc.CreatePeriod(context.Background(), payroll.CreatePeriodRequest{Year: year, Month: month})
	require.NoError(t, err)
	return p
}

func (f *serviceFixture) calculatingPeriod(t *testing.T, year, month int) payroll.PeriodResponse {
	t.Helper()
	p := f.createPeriod(t, year, month)
	started, err := f.svc.StartCalculation(context.Background(), p.ID)
	require.NoError(t, err)
	return started
}
