package payroll

import (
	"strings"
	"time"

	"github.com/onestaff/onestaff-os/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RUN DTOs ==========

type CreateRunRequest struct {
	PayrollPeriod string `json:"payroll_period"`
	Entity        string `json:"entity"`
}

func (r *CreateRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PayrollPeriod) {
		errs = append(errs, validator.ValidationError{Field: "payroll_period", Message: "payroll_period is required"})
	} else if !validator.IsValidPeriod(r.PayrollPeriod) {
		errs = append(errs, validator.ValidationError{Field: "payroll_period", Message: "payroll_period must be formatted YYYY-MM"})
	}
	if validator.IsEmpty(r.Entity) {
		errs = append(errs, validator.ValidationError{Field: "entity", Message: "entity is required"})
	} else if len(r.Entity) > 100 {
		errs = append(errs, validator.ValidationError{Field: "entity", Message: "entity must be at most 100 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TransitionRequest struct {
	RejectionReason *string `json:"rejection_reason,omitempty"`
	UnlockReason    *string `json:"unlock_reason,omitempty"`
}

// ReasonFor picks the reason field that belongs to action.
func (r TransitionRequest) ReasonFor(action Action) string {
	switch action {
	case ActionReject:
		if r.RejectionReason != nil {
			return *r.RejectionReason
		}
	case ActionUnlock:
		if r.UnlockReason != nil {
			return *r.UnlockReason
		}
	}
	return ""
}

type RunFilter struct {
	Status *string
	Entity *string
	Period *string
	Page   int
	Limit  int
}

func (f *RunFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !RunStatus(strings.ToLower(*f.Status)).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "unknown run status"})
	}
	if f.Period != nil && !validator.IsValidPeriod(*f.Period) {
		errs = append(errs, validator.ValidationError{Field: "period", Message: "period must be formatted YYYY-MM"})
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be at most 100"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RunResponse struct {
	ID                  string          `json:"id"`
	RunCode             string          `json:"run_code"`
	PayrollPeriod       string          `json:"payroll_period"`
	Entity              string          `json:"entity"`
	EmployeeCount       int             `json:"employee_count"`
	ExceptionCount      int             `json:"exception_count"`
	TotalNetPay         decimal.Decimal `json:"total_net_pay"`
	Status              RunStatus       `json:"status"`
	PaymentStatus       PaymentStatus   `json:"payment_status"`
	PayrollSpecialistID string          `json:"payroll_specialist_id"`
	PayrollManagerID    *string         `json:"payroll_manager_id,omitempty"`
	FinanceStaffID      *string         `json:"finance_staff_id,omitempty"`
	ManagerApprovedAt   *time.Time      `json:"manager_approved_at,omitempty"`
	FinanceApprovedAt   *time.Time      `json:"finance_approved_at,omitempty"`
	RejectionReason     *string         `json:"rejection_reason,omitempty"`
	RejectedAt          *time.Time      `json:"rejected_at,omitempty"`
	LockedAt            *time.Time      `json:"locked_at,omitempty"`
	UnlockReason        *string         `json:"unlock_reason,omitempty"`
	UnlockedAt          *time.Time      `json:"unlocked_at,omitempty"`
	PolicyVersion       string          `json:"policy_version"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

type Pagination struct {
	Page       int
	Limit      int
	TotalItems int64
	TotalPages int
}

type EmployeeDetailResponse struct {
	ID              string          `json:"id"`
	RunID           string          `json:"run_id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeCode    *string         `json:"employee_code,omitempty"`
	EmployeeName    *string         `json:"employee_name,omitempty"`
	BaseSalary      decimal.Decimal `json:"base_salary"`
	AllowancesTotal decimal.Decimal `json:"allowances_total"`
	BonusTotal      decimal.Decimal `json:"bonus_total"`
	BenefitTotal    decimal.Decimal `json:"benefit_total"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	DeductionsTotal decimal.Decimal `json:"deductions_total"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	NetPay          decimal.Decimal `json:"net_pay"`
	BankStatus      BankStatus      `json:"bank_status"`
	Exceptions      *string         `json:"exceptions,omitempty"`
	ExceptionItems  []Exception     `json:"exception_items"`
	Breakdown       Breakdown       `json:"breakdown"`
}

// ========== PAYSLIP DTOs ==========

type PayslipResponse struct {
	ID               string          `json:"id"`
	RunID            string          `json:"run_id"`
	RunCode          *string         `json:"run_code,omitempty"`
	PayrollPeriod    *string         `json:"payroll_period,omitempty"`
	EmployeeID       string          `json:"employee_id"`
	EmployeeCode     *string         `json:"employee_code,omitempty"`
	EmployeeName     *string         `json:"employee_name,omitempty"`
	Earnings         Earnings        `json:"earnings"`
	Deductions       Deductions      `json:"deductions"`
	TotalGrossSalary decimal.Decimal `json:"total_gross_salary"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	NetPay           decimal.Decimal `json:"net_pay"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	HasDocument      bool            `json:"has_document"`
	CreatedAt        time.Time       `json:"created_at"`
}

type PayslipDocument struct {
	EmployeeID string
	Filename   string
	Content    []byte
}

// ========== REVIEW DTOs ==========

type InstanceFilter struct {
	Status InstanceStatus
}

func (f *InstanceFilter) Validate() error {
	if f.Status == "" {
		f.Status = InstanceStatusPending
	}
	if !f.Status.IsValid() {
		return validator.ValidationErrors{{Field: "status", Message: "status must be pending, approved or rejected"}}
	}
	return nil
}

type ReviewRequest struct {
	Reason *string `json:"reason,omitempty"`
}

type SigningBonusResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    *string         `json:"employee_name,omitempty"`
	SigningBonusID  string          `json:"signing_bonus_id"`
	GivenAmount     decimal.Decimal `json:"given_amount"`
	Status          InstanceStatus  `json:"status"`
	ReviewedBy      *string         `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type TerminationBenefitResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    *string         `json:"employee_name,omitempty"`
	BenefitName     string          `json:"benefit_name"`
	GivenAmount     decimal.Decimal `json:"given_amount"`
	Status          InstanceStatus  `json:"status"`
	ReviewedBy      *string         `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ========== EXPORT / EVENT DTOs ==========

type ExportFormat string

const (
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatCSV  ExportFormat = "csv"
)

type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// RunEvent is pushed to live subscribers whenever a run changes.
type RunEvent struct {
	RunID          string    `json:"run_id"`
	RunCode        string    `json:"run_code"`
	Status         RunStatus `json:"status"`
	PreviousStatus RunStatus `json:"previous_status,omitempty"`
	Action         string    `json:"action"`
	ActorID        string    `json:"actor_id"`
	PayslipCount   int       `json:"payslip_count,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
