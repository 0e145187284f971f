package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// AggregateWork derives the work figures of one employee for [start, end]
// from attendance records and leave requests. Records outside the range
// are ignored.
func AggregateWork(records []attendance.Attendance, leaves []leave.LeaveRequest, start, end time.Time) payroll.WorkSummary {
	summary := payroll.WorkSummary{
		WorkDays:        decimal.Zero,
		PaidLeaveDays:   decimal.Zero,
		UnpaidLeaveDays: decimal.Zero,
		OvertimeHours:   decimal.Zero,
		NightHours:      decimal.Zero,
		HolidayHours:    decimal.Zero,
	}
	one := decimal.NewFromInt(1)

	for _, rec := range records {
		if rec.Date.Before(start) || rec.Date.After(end) {
			continue
		}
		switch {
		case rec.Status.IsWorked():
			summary.WorkDays = summary.WorkDays.Add(one)
		case rec.Status == attendance.StatusLeave:
			summary.PaidLeaveDays = summary.PaidLeaveDays.Add(one)
		}
		summary.OvertimeHours = summary.OvertimeHours.Add(rec.OvertimeHours)
	}

	for _, lr := range leaves {
		if lr.Status != leave.LeaveRequestStatusApproved || lr.LeaveTypeIsPaid {
			continue
		}
		if !lr.Overlaps(start, end) {
			continue
		}
		summary.UnpaidLeaveDays = summary.UnpaidLeaveDays.Add(lr.TotalDays)
	}

	return summary
}
