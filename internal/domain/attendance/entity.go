package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent      Status = "PRESENT"
	StatusLate         Status = "LATE"
	StatusEarlyLeave   Status = "EARLY_LEAVE"
	StatusAbsent       Status = "ABSENT"
	StatusLeave        Status = "LEAVE"
	StatusHoliday      Status = "HOLIDAY"
	StatusBusinessTrip Status = "BUSINESS_TRIP"
)

// IsWorked reports whether the day counts as a work day.
func (s Status) IsWorked() bool {
	return s == StatusPresent || s == StatusLate || s == StatusEarlyLeave
}

type Attendance struct {
	ID            string
	EmployeeID    string
	Date          time.Time
	ClockIn       *time.Time
	ClockOut      *time.Time
	Status        Status
	OvertimeHours decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
