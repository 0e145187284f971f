package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending   LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved  LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected  LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled LeaveRequestStatus = "cancelled"
)

type LeaveRequest struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string
	StartDate   time.Time
	EndDate     time.Time
	TotalDays   decimal.Decimal
	Status      LeaveRequestStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined fields
	LeaveTypeName   *string
	LeaveTypeIsPaid bool
}

// Overlaps reports whether the request intersects [start, end], both inclusive.
func (r LeaveRequest) Overlaps(start, end time.Time) bool {
	return !r.StartDate.After(end) && !r.EndDate.Before(start)
}
