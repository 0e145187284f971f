package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Access errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, "Manager or owner access required")
	case errors.Is(err, payroll.ErrMissingActor):
		Unauthorized(w, "Approver identity is missing from the token")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrContractNotFound):
		NotFound(w, "No active salary contract found")
	case errors.Is(err, payroll.ErrAdjustmentNotFound):
		NotFound(w, "Payroll adjustment not found")
	case errors.Is(err, payroll.ErrPeriodAlreadyExists):
		Conflict(w, "Payroll period already exists for this month")
	case errors.Is(err, payroll.ErrInvalidTransition):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrPeriodNotCalculating):
		Conflict(w, "Payroll period is not in calculating status")
	case errors.Is(err, payroll.ErrCalculationInProgress):
		Conflict(w, "A calculation for this period is already running")
	case errors.Is(err, payroll.ErrPayslipLocked):
		Conflict(w, "Payslip can no longer be changed")
	case errors.Is(err, payroll.ErrAdjustmentAlreadyApproved):
		Conflict(w, "Payroll adjustment already approved")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)

	// Employee domain errors
	case errors.Is(err, payroll.ErrEmployeeNotFound), errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, payroll.ErrEmployeeNotActive):
		Conflict(w, "Employee is not active")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrInvalidDateRange):
		BadRequest(w, "Invalid date range", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
