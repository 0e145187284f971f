package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID               string
	EmployeeCode     string
	FullName         string
	PositionID       *string
	DepartmentID     *string
	HireDate         time.Time
	ResignationDate  *time.Time
	EmploymentStatus EmploymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined fields
	PositionName      *string
	PositionAllowance *decimal.Decimal
}

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusOnLeave  EmploymentStatus = "on_leave"
	EmploymentStatusResigned EmploymentStatus = "resigned"
)

// IsActive reports whether the employee takes part in payroll runs.
func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}

// HasPositionAllowance reports whether the assigned position pays a nonzero allowance.
func (e Employee) HasPositionAllowance() bool {
	return e.PositionID != nil && e.PositionAllowance != nil && !e.PositionAllowance.IsZero()
}
