package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/handler/http/response"
)

type PayrollReviewHandler interface {
	// Signing bonuses
	ListSigningBonuses(w http.ResponseWriter, r *http.Request)
	ApproveSigningBonus(w http.ResponseWriter, r *http.Request)
	RejectSigningBonus(w http.ResponseWriter, r *http.Request)

	// Termination benefits
	ListTerminationBenefits(w http.ResponseWriter, r *http.Request)
	ApproveTerminationBenefit(w http.ResponseWriter, r *http.Request)
	RejectTerminationBenefit(w http.ResponseWriter, r *http.Request)
}

type payrollReviewHandlerImpl struct {
	reviewService payroll.ReviewService
}

func NewPayrollReviewHandler(reviewService payroll.ReviewService) PayrollReviewHandler {
	return &payrollReviewHandlerImpl{reviewService: reviewService}
}

func instanceFilterFromQuery(r *http.Request) payroll.InstanceFilter {
	return payroll.InstanceFilter{
		Status: payroll.InstanceStatus(strings.ToLower(r.URL.Query().Get("status"))),
	}
}

func decodeReviewRequest(r *http.Request) (payroll.ReviewRequest, error) {
	var req payroll.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	return req, nil
}

// ========== SIGNING BONUSES ==========

func (h *payrollReviewHandlerImpl) ListSigningBonuses(w http.ResponseWriter, r *http.Request) {
	result, err := h.reviewService.ListSigningBonuses(r.Context(), instanceFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollReviewHandlerImpl) ApproveSigningBonus(w http.ResponseWriter, r *http.Request) {
	result, err := h.reviewService.ApproveSigningBonus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Signing bonus approved", result)
}

func (h *payrollReviewHandlerImpl) RejectSigningBonus(w http.ResponseWriter, r *http.Request) {
	req, err := decodeReviewRequest(r)
	if err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.reviewService.RejectSigningBonus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Signing bonus rejected", result)
}

// ========== TERMINATION BENEFITS ==========

func (h *payrollReviewHandlerImpl) ListTerminationBenefits(w http.ResponseWriter, r *http.Request) {
	result, err := h.reviewService.ListTerminationBenefits(r.Context(), instanceFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollReviewHandlerImpl) ApproveTerminationBenefit(w http.ResponseWriter, r *http.Request) {
	result, err := h.reviewService.ApproveTerminationBenefit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Termination benefit approved", result)
}

func (h *payrollReviewHandlerImpl) RejectTerminationBenefit(w http.ResponseWriter, r *http.Request) {
	req, err := decodeReviewRequest(r)
	if err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.reviewService.RejectTerminationBenefit(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Termination benefit rejected", result)
}
