package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	// ListApprovedOverlapping returns approved requests of one employee whose
	// date range intersects [start, end], joined with their leave type.
	ListApprovedOverlapping(ctx context.Context, employeeID string, start, end time.Time) ([]LeaveRequest, error)
}
