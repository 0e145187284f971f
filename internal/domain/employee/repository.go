package employee

import "context"

// EmployeeRepository is the read side of the employee directory used by payroll.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
}
