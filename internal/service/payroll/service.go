package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/onestaff/onestaff-os/internal/domain/auth"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/pkg/sse"
	"github.com/onestaff/onestaff-os/internal/pkg/validator"
)

// RunEventsTopic is the hub topic carrying run and payslip lifecycle events.
const RunEventsTopic = "payroll-runs"

const (
	EventRunCreated        = "run.created"
	EventRunTransitioned   = "run.transitioned"
	EventPayslipsGenerated = "payslips.generated"
)

var ErrMissingActor = fmt.Errorf("user_id claim is missing or invalid: %w", auth.ErrMissingClaims)

// EventPublisher is satisfied by *sse.Hub.
type EventPublisher interface {
	Publish(topic string, event sse.Event)
}

// Helper to get the acting user's id from JWT context
func getActorFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrMissingActor
	}
	return userID, nil
}

func validateID(id string) error {
	if !validator.IsValidUUID(id) {
		return fmt.Errorf("%w: %q", payroll.ErrInvalidID, id)
	}
	return nil
}

func publish(p EventPublisher, name string, event payroll.RunEvent) {
	if p == nil {
		return
	}
	p.Publish(RunEventsTopic, sse.Event{Topic: RunEventsTopic, Event: name, Data: event})
}

// ========== MAPPERS ==========

func mapToRunResponse(r payroll.Run) payroll.RunResponse {
	return payroll.RunResponse{
		ID:                  r.ID,
		RunCode:             r.RunCode,
		PayrollPeriod:       r.PayrollPeriod.Format("2006-01"),
		Entity:              r.Entity,
		EmployeeCount:       r.EmployeeCount,
		ExceptionCount:      r.ExceptionCount,
		TotalNetPay:         r.TotalNetPay,
		Status:              r.Status,
		PaymentStatus:       r.PaymentStatus,
		PayrollSpecialistID: r.PayrollSpecialistID,
		PayrollManagerID:    r.PayrollManagerID,
		FinanceStaffID:      r.FinanceStaffID,
		ManagerApprovedAt:   r.ManagerApprovedAt,
		FinanceApprovedAt:   r.FinanceApprovedAt,
		RejectionReason:     r.RejectionReason,
		RejectedAt:          r.RejectedAt,
		LockedAt:            r.LockedAt,
		UnlockReason:        r.UnlockReason,
		UnlockedAt:          r.UnlockedAt,
		PolicyVersion:       r.Policy.Version,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func mapToRunResponses(runs []payroll.Run) []payroll.RunResponse {
	responses := make([]payroll.RunResponse, 0, len(runs))
	for _, r := range runs {
		responses = append(responses, mapToRunResponse(r))
	}
	return responses
}

func mapToDetailResponse(d payroll.EmployeeDetail) payroll.EmployeeDetailResponse {
	items := d.Exceptions
	if items == nil {
		items = payroll.Exceptions{}
	}
	return payroll.EmployeeDetailResponse{
		ID:              d.ID,
		RunID:           d.RunID,
		EmployeeID:      d.EmployeeID,
		EmployeeCode:    d.EmployeeCode,
		EmployeeName:    d.EmployeeName,
		BaseSalary:      d.BaseSalary,
		AllowancesTotal: d.AllowancesTotal,
		BonusTotal:      d.BonusTotal,
		BenefitTotal:    d.BenefitTotal,
		GrossSalary:     d.GrossSalary,
		DeductionsTotal: d.DeductionsTotal,
		NetSalary:       d.NetSalary,
		NetPay:          d.NetPay,
		BankStatus:      d.BankStatus,
		Exceptions:      d.Exceptions.Narrative(),
		ExceptionItems:  items,
		Breakdown:       d.Breakdown,
	}
}

func mapToPayslipResponse(p payroll.Payslip) payroll.PayslipResponse {
	var period *string
	if p.PayrollPeriod != nil {
		s := p.PayrollPeriod.Format("2006-01")
		period = &s
	}
	return payroll.PayslipResponse{
		ID:               p.ID,
		RunID:            p.RunID,
		RunCode:          p.RunCode,
		PayrollPeriod:    period,
		EmployeeID:       p.EmployeeID,
		EmployeeCode:     p.EmployeeCode,
		EmployeeName:     p.EmployeeName,
		Earnings:         p.Earnings,
		Deductions:       p.Deductions,
		TotalGrossSalary: p.TotalGrossSalary,
		TotalDeductions:  p.TotalDeductions,
		NetPay:           p.NetPay,
		PaymentStatus:    p.PaymentStatus,
		HasDocument:      p.DocumentPath != nil,
		CreatedAt:        p.CreatedAt,
	}
}

func mapToPayslipResponses(payslips []payroll.Payslip) []payroll.PayslipResponse {
	responses := make([]payroll.PayslipResponse, 0, len(payslips))
	for _, p := range payslips {
		responses = append(responses, mapToPayslipResponse(p))
	}
	return responses
}

func mapToSigningBonusResponse(b payroll.SigningBonusInstance) payroll.SigningBonusResponse {
	return payroll.SigningBonusResponse{
		ID:              b.ID,
		EmployeeID:      b.EmployeeID,
		EmployeeName:    b.EmployeeName,
		SigningBonusID:  b.SigningBonusID,
		GivenAmount:     b.GivenAmount,
		Status:          b.Status,
		ReviewedBy:      b.ReviewedBy,
		ReviewedAt:      b.ReviewedAt,
		RejectionReason: b.RejectionReason,
		PaidAt:          b.PaidAt,
		CreatedAt:       b.CreatedAt,
	}
}

func mapToTerminationBenefitResponse(b payroll.TerminationBenefitInstance) payroll.TerminationBenefitResponse {
	return payroll.TerminationBenefitResponse{
		ID:              b.ID,
		EmployeeID:      b.EmployeeID,
		EmployeeName:    b.EmployeeName,
		BenefitName:     b.BenefitName,
		GivenAmount:     b.GivenAmount,
		Status:          b.Status,
		ReviewedBy:      b.ReviewedBy,
		ReviewedAt:      b.ReviewedAt,
		RejectionReason: b.RejectionReason,
		CreatedAt:       b.CreatedAt,
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
