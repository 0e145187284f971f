package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

const autoCalculateJobName = "auto_calculate_payroll"

// PayrollJobs runs the monthly payroll calculation on the configured day
type PayrollJobs struct {
	payrollService payroll.PayrollService
	cfg            config.PayrollConfig
	logger         *slog.Logger
	now            func() time.Time
}

func NewPayrollJobs(payrollService payroll.PayrollService, cfg config.PayrollConfig, logger *slog.Logger) *PayrollJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollJobs{
		payrollService: payrollService,
		cfg:            cfg,
		logger:         logger.With("component", "cron"),
		now:            time.Now,
	}
}

// RegisterJobs registers the hourly auto-calculation check
func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(autoCalculateJobName, 1*time.Hour, j.AutoCalculate)
}

// AutoCalculate runs the current month's DRAFT period through calculation
// and submission when today is the calculation day. Other days, missing
// periods and periods past DRAFT are skipped.
func (j *PayrollJobs) AutoCalculate(ctx context.Context) error {
	now := j.now()
	if now.Day() != j.cfg.CalculationDay {
		return nil
	}

	period, err := j.payrollService.GetPeriodByYearMonth(ctx, now.Year(), int(now.Month()))
	if err != nil {
		if errors.Is(err, payroll.ErrPeriodNotFound) {
			j.logger.InfoContext(ctx, "Cron: No payroll period for current month", "year", now.Year(), "month", int(now.Month()))
			return nil
		}
		return fmt.Errorf("failed to get current payroll period: %w", err)
	}

	if period.Status != payroll.PeriodStatusDraft {
		j.logger.DebugContext(ctx, "Cron: Payroll period already processed", "period_id", period.ID, "status", period.Status)
		return nil
	}

	report, err := j.payrollService.RunCalculation(ctx, period.ID)
	if err != nil {
		return fmt.Errorf("failed to run payroll calculation for period %s: %w", period.ID, err)
	}

	j.logger.InfoContext(ctx, "Cron: Payroll calculated and submitted",
		"period_id", period.ID,
		"succeeded", report.Succeeded,
		"failed", report.Failed)
	return nil
}
