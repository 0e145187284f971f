package payroll

import "errors"

var (
	ErrPeriodNotFound            = errors.New("payroll period not found")
	ErrPeriodAlreadyExists       = errors.New("payroll period already exists for this year and month")
	ErrInvalidPeriod             = errors.New("invalid payroll period")
	ErrInvalidTransition         = errors.New("invalid payroll period status transition")
	ErrPeriodNotCalculating      = errors.New("payroll period is not in calculating status")
	ErrCalculationInProgress     = errors.New("payroll calculation already in progress for this period")
	ErrPayslipNotFound           = errors.New("payslip not found")
	ErrContractNotFound          = errors.New("salary contract not found")
	ErrAdjustmentNotFound        = errors.New("payroll adjustment not found")
	ErrAdjustmentAlreadyApproved = errors.New("payroll adjustment already approved")
	ErrPayslipLocked             = errors.New("payslip can no longer be adjusted")
	ErrEmployeeNotFound          = errors.New("employee not found")
	ErrEmployeeNotActive         = errors.New("employee is not active")
	ErrMissingActor              = errors.New("approving identity is missing from the request")
)
