package user

type Permission string

const (
	// Payroll runs
	PermissionPayrollRunCreate   Permission = "payroll.run.create"
	PermissionPayrollRunView     Permission = "payroll.run.view"
	PermissionPayrollRunSubmit   Permission = "payroll.run.submit"
	PermissionPayrollRunApprove  Permission = "payroll.run.approve"
	PermissionPayrollRunFinance  Permission = "payroll.run.finance_approve"
	PermissionPayrollRunReject   Permission = "payroll.run.reject"
	PermissionPayrollRunLock     Permission = "payroll.run.lock"
	PermissionPayrollRunExport   Permission = "payroll.run.export"
	PermissionPayrollEventStream Permission = "payroll.events"

	// Payslips
	PermissionPayslipGenerate Permission = "payslip.generate"
	PermissionPayslipViewAll  Permission = "payslip.view_all"
	PermissionPayslipViewOwn  Permission = "payslip.view_own"

	// Pre-run reviews
	PermissionPayrollReview Permission = "payroll.review"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RolePayrollSpecialist: {
		PermissionPayrollRunCreate,
		PermissionPayrollRunView,
		PermissionPayrollRunSubmit,
		PermissionPayrollRunExport,
		PermissionPayrollEventStream,
		PermissionPayslipGenerate,
		PermissionPayslipViewAll,
		PermissionPayslipViewOwn,
		PermissionPayrollReview,
	},
	RolePayrollManager: {
		PermissionPayrollRunView,
		PermissionPayrollRunApprove,
		PermissionPayrollRunReject,
		PermissionPayrollRunLock,
		PermissionPayrollRunExport,
		PermissionPayrollEventStream,
		PermissionPayslipGenerate,
		PermissionPayslipViewAll,
		PermissionPayslipViewOwn,
	},
	RoleFinanceStaff: {
		PermissionPayrollRunView,
		PermissionPayrollRunFinance,
		PermissionPayrollRunReject,
		PermissionPayrollRunExport,
		PermissionPayrollEventStream,
		PermissionPayslipViewAll,
		PermissionPayslipViewOwn,
		PermissionPayrollReview,
	},
	RoleHRAdmin: {
		PermissionPayrollRunView,
		PermissionPayrollEventStream,
		PermissionPayslipViewAll,
		PermissionPayslipViewOwn,
	},
	RoleEmployee: {
		PermissionPayslipViewOwn,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
