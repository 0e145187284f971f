package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// ListByEmployeeAndRange returns the records of one employee with
	// start <= date <= end, ordered by date.
	ListByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time) ([]Attendance, error)
}
