package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can approve payroll and adjustments
	RoleEmployee Role = "employee" // Regular employee
)

// Claims is the caller identity carried by an access token.
type Claims struct {
	UserID     string
	EmployeeID *string
	Role       Role
}

// IsManager checks if the role is manager or owner
func (r Role) IsManager() bool {
	return r == RoleManager || r == RoleOwner
}

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleEmployee:
		return true
	}
	return false
}
