package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/domain/user"
	"github.com/onestaff/onestaff-os/internal/handler/http/middleware"
	"github.com/onestaff/onestaff-os/internal/handler/http/response"
)

type PayslipHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
	ListByRun(w http.ResponseWriter, r *http.Request)
	ListByEmployee(w http.ResponseWriter, r *http.Request)
	Document(w http.ResponseWriter, r *http.Request)
}

type payslipHandlerImpl struct {
	payslipService payroll.PayslipService
}

func NewPayslipHandler(payslipService payroll.PayslipService) PayslipHandler {
	return &payslipHandlerImpl{payslipService: payslipService}
}

// canViewEmployee allows staff with view_all, or the employee themself with view_own.
func canViewEmployee(p user.Principal, employeeID string) bool {
	if user.HasPermission(p.Role, user.PermissionPayslipViewAll) {
		return true
	}
	return user.HasPermission(p.Role, user.PermissionPayslipViewOwn) && p.IsSelf(employeeID)
}

func (h *payslipHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	result, err := h.payslipService.GeneratePayslips(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payslips generated", result)
}

func (h *payslipHandlerImpl) ListByRun(w http.ResponseWriter, r *http.Request) {
	result, err := h.payslipService.ListByRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payslipHandlerImpl) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")

	principal, _ := middleware.PrincipalFromContext(r.Context())
	if !canViewEmployee(principal, employeeID) {
		response.HandleError(w, user.ErrInsufficientPermissions)
		return
	}

	result, err := h.payslipService.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payslipHandlerImpl) Document(w http.ResponseWriter, r *http.Request) {
	doc, err := h.payslipService.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	principal, _ := middleware.PrincipalFromContext(r.Context())
	if !canViewEmployee(principal, doc.EmployeeID) {
		response.HandleError(w, user.ErrInsufficientPermissions)
		return
	}

	response.File(w, doc.Filename, "application/pdf", doc.Content)
}
