package user

type Role string

const (
	RolePayrollSpecialist Role = "payroll_specialist" // Prepares and submits runs
	RolePayrollManager    Role = "payroll_manager"    // Signs off runs, locks and unlocks
	RoleFinanceStaff      Role = "finance_staff"      // Approves payment, reviews bonuses and benefits
	RoleHRAdmin           Role = "hr_admin"           // Read access to everything payroll
	RoleEmployee          Role = "employee"           // Own payslips only
)

func (r Role) IsValid() bool {
	_, ok := RolePermissions[r]
	return ok
}

// Principal is the authenticated caller as read from access-token claims.
type Principal struct {
	UserID     string
	EmployeeID *string
	Role       Role
}

// IsSelf reports whether employeeID belongs to the caller.
func (p Principal) IsSelf(employeeID string) bool {
	return p.EmployeeID != nil && *p.EmployeeID == employeeID
}
