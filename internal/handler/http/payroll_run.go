package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/domain/user"
	"github.com/onestaff/onestaff-os/internal/handler/http/middleware"
	"github.com/onestaff/onestaff-os/internal/handler/http/response"
)

type PayrollRunHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	EmployeeDetails(w http.ResponseWriter, r *http.Request)
	Transition(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

// transitionPermissions gates each workflow action by role.
var transitionPermissions = map[payroll.Action]user.Permission{
	payroll.ActionSubmitForReview: user.PermissionPayrollRunSubmit,
	payroll.ActionPublish:         user.PermissionPayrollRunApprove,
	payroll.ActionManagerApprove:  user.PermissionPayrollRunApprove,
	payroll.ActionFinanceApprove:  user.PermissionPayrollRunFinance,
	payroll.ActionReject:          user.PermissionPayrollRunReject,
	payroll.ActionLock:            user.PermissionPayrollRunLock,
	payroll.ActionUnlock:          user.PermissionPayrollRunLock,
}

type payrollRunHandlerImpl struct {
	runService payroll.RunService
}

func NewPayrollRunHandler(runService payroll.RunService) PayrollRunHandler {
	return &payrollRunHandlerImpl{runService: runService}
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

func optionalQueryParam(r *http.Request, key string) *string {
	val := strings.TrimSpace(r.URL.Query().Get(key))
	if val == "" {
		return nil
	}
	return &val
}

func (h *payrollRunHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.runService.CreateRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll run created", result)
}

func (h *payrollRunHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := payroll.RunFilter{
		Status: optionalQueryParam(r, "status"),
		Entity: optionalQueryParam(r, "entity"),
		Period: optionalQueryParam(r, "period"),
		Page:   getIntQueryParam(r, "page", 1),
		Limit:  getIntQueryParam(r, "limit", 20),
	}

	runs, pagination, err := h.runService.ListRuns(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, runs, &response.Meta{
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		TotalItems: pagination.TotalItems,
		TotalPages: pagination.TotalPages,
	})
}

func (h *payrollRunHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.runService.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollRunHandlerImpl) EmployeeDetails(w http.ResponseWriter, r *http.Request) {
	result, err := h.runService.ListEmployeeDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollRunHandlerImpl) Transition(w http.ResponseWriter, r *http.Request) {
	action, err := payroll.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		response.NotFound(w, "Unknown payroll run action")
		return
	}

	principal, _ := middleware.PrincipalFromContext(r.Context())
	if !user.HasPermission(principal.Role, transitionPermissions[action]) {
		response.HandleError(w, user.ErrInsufficientPermissions)
		return
	}

	// The body is optional for actions that take no reason.
	var req payroll.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.runService.Transition(r.Context(), chi.URLParam(r, "id"), action, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run updated", result)
}

func (h *payrollRunHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	format := payroll.ExportFormat(strings.ToLower(r.URL.Query().Get("format")))
	if format == "" {
		format = payroll.ExportFormatXLSX
	}

	file, err := h.runService.ExportRun(r.Context(), chi.URLParam(r, "id"), format)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, file.Filename, file.ContentType, file.Content)
}
