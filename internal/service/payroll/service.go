package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/lock"
	"github.com/go-chi/jwtauth/v5"
)

type PayrollServiceImpl struct {
	payrollRepo    payroll.PayrollRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.LeaveRequestRepository
	locker         lock.Locker
	assembler      Assembler
	cfg            config.PayrollConfig
	logger         *slog.Logger
	now            func() time.Time
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRequestRepository,
	locker lock.Locker,
	cfg config.PayrollConfig,
	logger *slog.Logger,
) payroll.PayrollService {
	return newPayrollService(payrollRepo, employeeRepo, attendanceRepo, leaveRepo, locker, cfg, logger)
}

func newPayrollService(
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRequestRepository,
	locker lock.Locker,
	cfg config.PayrollConfig,
	logger *slog.Logger,
) *PayrollServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollServiceImpl{
		payrollRepo:    payrollRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		locker:         locker,
		assembler: Assembler{
			Overtime: OvertimePolicy{
				MonthlyWorkHours:  cfg.MonthlyWorkHours,
				WeekdayMultiplier: cfg.OvertimeMultiplier,
				HolidayMultiplier: cfg.HolidayMultiplier,
			},
			DaysPerMonth: cfg.DaysPerMonth,
		},
		cfg:    cfg,
		logger: logger.With("component", "payroll"),
		now:    time.Now,
	}
}

// getActorFromContext returns the employee id of the caller, falling back
// to the user id for accounts without an employee profile.
func getActorFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", payroll.ErrMissingActor)
	}

	if employeeID, ok := claims["employee_id"].(string); ok && employeeID != "" {
		return employeeID, nil
	}
	if userID, ok := claims["user_id"].(string); ok && userID != "" {
		return userID, nil
	}

	return "", payroll.ErrMissingActor
}

func (s *PayrollServiceImpl) getEmployee(ctx context.Context, id string) (employee.Employee, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, payroll.ErrEmployeeNotFound
		}
		return employee.Employee{}, err
	}
	return emp, nil
}

// ========== PERIODS ==========

func (s *PayrollServiceImpl) CreatePeriod(ctx context.Context, req payroll.CreatePeriodRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	start := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	if req.StartDate != nil {
		start, _ = time.Parse("2006-01-02", *req.StartDate)
	}
	if req.EndDate != nil {
		end, _ = time.Parse("2006-01-02", *req.EndDate)
	}
	if end.Before(start) {
		return payroll.PeriodResponse{}, fmt.Errorf("end date %s is before start date %s: %w",
			end.Format("2006-01-02"), start.Format("2006-01-02"), payroll.ErrInvalidPeriod)
	}

	paymentDate := end
	if req.PaymentDate != nil {
		paymentDate, _ = time.Parse("2006-01-02", *req.PaymentDate)
	}

	name := fmt.Sprintf("%s %d payroll", start.Month(), req.Year)
	if req.Name != nil {
		name = *req.Name
	}

	created, err := s.payrollRepo.CreatePeriod(ctx, payroll.PayrollPeriod{
		Year:        req.Year,
		Month:       req.Month,
		Name:        name,
		StartDate:   start,
		EndDate:     end,
		PaymentDate: paymentDate,
		Status:      payroll.PeriodStatusDraft,
		Notes:       req.Notes,
	})
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	return payroll.NewPeriodResponse(created), nil
}

func (s *PayrollServiceImpl) GetPeriod(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	p, err := s.payrollRepo.GetPeriodByID(ctx, id)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return payroll.NewPeriodResponse(p), nil
}

func (s *PayrollServiceImpl) GetPeriodByYearMonth(ctx context.Context, year, month int) (payroll.PeriodResponse, error) {
	p, err := s.payrollRepo.GetPeriodByYearMonth(ctx, year, month)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return payroll.NewPeriodResponse(p), nil
}

func (s *PayrollServiceImpl) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) ([]payroll.PeriodResponse, error) {
	periods, err := s.payrollRepo.ListPeriods(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		responses = append(responses, payroll.NewPeriodResponse(p))
	}
	return responses, nil
}

// ========== PAYSLIPS ==========

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, id string) (payroll.PayslipResponse, error) {
	p, err := s.payrollRepo.GetPayslipByID(ctx, id)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	adjustments, err := s.payrollRepo.ListAdjustmentsByPayslip(ctx, id)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	return payroll.NewPayslipResponse(p, adjustments), nil
}

func (s *PayrollServiceImpl) ListPayslips(ctx context.Context, periodID string) ([]payroll.PayslipResponse, error) {
	if _, err := s.payrollRepo.GetPeriodByID(ctx, periodID); err != nil {
		return nil, err
	}

	payslips, err := s.payrollRepo.ListPayslipsByPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.PayslipResponse, 0, len(payslips))
	for _, p := range payslips {
		responses = append(responses, payroll.NewPayslipResponse(p, nil))
	}
	return responses, nil
}
