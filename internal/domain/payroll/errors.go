package payroll

import "errors"

var (
	// Runs
	ErrRunNotFound        = errors.New("payroll run not found")
	ErrRunCodeConflict    = errors.New("payroll run code already exists")
	ErrNoActiveEmployees  = errors.New("no active employees found for payroll run")
	ErrInvalidTransition  = errors.New("invalid payroll run status transition")
	ErrUnknownAction      = errors.New("unknown payroll run action")
	ErrReasonRequired     = errors.New("a reason is required for this action")
	ErrDetailAlreadyExist = errors.New("employee already has a detail in this run")

	// Payslips
	ErrPayslipNotFound          = errors.New("payslip not found")
	ErrRunNotLocked             = errors.New("payroll run must be locked before generating payslips")
	ErrRunNotPaid               = errors.New("payroll run must be paid before generating payslips")
	ErrPayslipsAlreadyGenerated = errors.New("payslips already generated for this payroll run")

	// Reviews
	ErrSigningBonusInstanceNotFound = errors.New("signing bonus not found")
	ErrTerminationBenefitNotFound   = errors.New("termination benefit not found")
	ErrInstanceAlreadyReviewed      = errors.New("only pending items can be reviewed")

	// Misc
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
	ErrInvalidPolicy           = errors.New("invalid payroll policy")
	ErrInvalidID               = errors.New("invalid identifier")
)
