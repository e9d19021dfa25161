package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/onestaff/onestaff-os/internal/domain/auth"
	"github.com/onestaff/onestaff-os/internal/domain/employee"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/domain/user"
	"github.com/onestaff/onestaff-os/internal/pkg/storage"
	"github.com/onestaff/onestaff-os/internal/pkg/validator"
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
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingClaims):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, user.ErrInsufficientPermissions), errors.Is(err, user.ErrInvalidRole):
		Forbidden(w, err.Error())

	// Run errors
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrInvalidID):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrUnknownAction):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrReasonRequired):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrInvalidTransition):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrRunCodeConflict), errors.Is(err, payroll.ErrDetailAlreadyExist):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrNoActiveEmployees):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrUnsupportedExportFormat):
		BadRequest(w, err.Error(), nil)

	// Payslip errors
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrRunNotLocked), errors.Is(err, payroll.ErrRunNotPaid):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrPayslipsAlreadyGenerated):
		Conflict(w, err.Error())
	case errors.Is(err, storage.ErrFileNotFound):
		NotFound(w, "Document not found")

	// Review errors
	case errors.Is(err, payroll.ErrSigningBonusInstanceNotFound):
		NotFound(w, "Signing bonus not found")
	case errors.Is(err, payroll.ErrTerminationBenefitNotFound):
		NotFound(w, "Termination benefit not found")
	case errors.Is(err, payroll.ErrInstanceAlreadyReviewed):
		Conflict(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
