package payroll

import (
	"time"

	"github.com/onestaff/onestaff-os/internal/domain/payrollconfig"
	"github.com/shopspring/decimal"
)

type RunStatus string

const (
	RunStatusDraft                  RunStatus = "draft"
	RunStatusUnderReview            RunStatus = "under_review"
	RunStatusPendingFinanceApproval RunStatus = "pending_finance_approval"
	RunStatusApproved               RunStatus = "approved"
	RunStatusRejected               RunStatus = "rejected"
	RunStatusLocked                 RunStatus = "locked"
	RunStatusUnlocked               RunStatus = "unlocked"
)

var runStatuses = []RunStatus{
	RunStatusDraft,
	RunStatusUnderReview,
	RunStatusPendingFinanceApproval,
	RunStatusApproved,
	RunStatusRejected,
	RunStatusLocked,
	RunStatusUnlocked,
}

func (s RunStatus) IsValid() bool {
	for _, status := range runStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Run is one payroll batch for a pay period and organizational entity.
// Counts and totals are fixed at creation; transitions only touch status,
// actor and timestamp fields.
type Run struct {
	ID             string
	RunCode        string
	PayrollPeriod  time.Time
	Entity         string
	EmployeeCount  int
	ExceptionCount int
	TotalNetPay    decimal.Decimal
	Status         RunStatus
	PaymentStatus  PaymentStatus

	PayrollSpecialistID string
	PayrollManagerID    *string
	FinanceStaffID      *string
	ManagerApprovedAt   *time.Time
	FinanceApprovedAt   *time.Time
	RejectedBy          *string
	RejectedAt          *time.Time
	RejectionReason     *string
	LockedAt            *time.Time
	UnlockedAt          *time.Time
	UnlockReason        *string

	ConfigSnapshot payrollconfig.Snapshot
	Policy         Policy

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PeriodEnd returns the last day of the run's month.
func (r Run) PeriodEnd() time.Time {
	return PeriodBounds(r.PayrollPeriod).End
}

type BankStatus string

const (
	BankStatusValid   BankStatus = "valid"
	BankStatusMissing BankStatus = "missing"
)

// EmployeeDetail is one employee's computed breakdown within a run.
// NetSalary keeps the raw, possibly negative, value; NetPay is clamped at zero.
type EmployeeDetail struct {
	ID              string
	RunID           string
	EmployeeID      string
	BaseSalary      decimal.Decimal
	AllowancesTotal decimal.Decimal
	BonusTotal      decimal.Decimal
	BenefitTotal    decimal.Decimal
	GrossSalary     decimal.Decimal
	DeductionsTotal decimal.Decimal
	NetSalary       decimal.Decimal
	NetPay          decimal.Decimal
	BankStatus      BankStatus
	Exceptions      Exceptions
	Breakdown       Breakdown
	CreatedAt       time.Time

	// Joined from employees
	EmployeeCode      *string
	EmployeeName      *string
	BankName          *string
	BankAccountNumber *string
}

type LineItem struct {
	ID     string          `json:"id,omitempty"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type AppliedTax struct {
	RuleID string          `json:"rule_id"`
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

type AppliedInsurance struct {
	BracketID    string          `json:"bracket_id"`
	Name         string          `json:"name"`
	EmployeeRate decimal.Decimal `json:"employee_rate"`
	EmployerRate decimal.Decimal `json:"employer_rate"`
	Amount       decimal.Decimal `json:"amount"`
}

// Breakdown is the matched subset of configuration and inputs that produced
// a detail's totals.
type Breakdown struct {
	Allowances          []LineItem        `json:"allowances"`
	Bonuses             []LineItem        `json:"bonuses"`
	Benefits            []LineItem        `json:"benefits"`
	Penalties           []LineItem        `json:"penalties"`
	Taxes               []AppliedTax      `json:"taxes"`
	Insurance           *AppliedInsurance `json:"insurance,omitempty"`
	AttendanceDeduction decimal.Decimal   `json:"attendance_deduction"`
	LeaveDeduction      decimal.Decimal   `json:"leave_deduction"`

	WorkedDays            int     `json:"worked_days"`
	DaysInMonth           int     `json:"days_in_month"`
	ExpectedWorkingDays   int     `json:"expected_working_days"`
	ActualWorkingDays     int     `json:"actual_working_days"`
	AbsentDays            int     `json:"absent_days"`
	UnpaidLeaveDays       float64 `json:"unpaid_leave_days"`
	PaidLeaveExceededDays float64 `json:"paid_leave_exceeded_days"`
}

// Payslip is the immutable employee-facing record produced after lock and payment.
type Payslip struct {
	ID               string
	RunID            string
	EmployeeID       string
	Earnings         Earnings
	Deductions       Deductions
	TotalGrossSalary decimal.Decimal
	TotalDeductions  decimal.Decimal
	NetPay           decimal.Decimal
	PaymentStatus    PaymentStatus
	DocumentPath     *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined for reads
	RunCode       *string
	PayrollPeriod *time.Time
	EmployeeCode  *string
	EmployeeName  *string
}

type Earnings struct {
	BaseSalary decimal.Decimal `json:"base_salary"`
	Allowances []LineItem      `json:"allowances"`
	Bonuses    []LineItem      `json:"bonuses"`
	Benefits   []LineItem      `json:"benefits"`
	Refunds    []LineItem      `json:"refunds"`
}

type Deductions struct {
	Taxes               []AppliedTax       `json:"taxes"`
	Insurance           []AppliedInsurance `json:"insurance"`
	Penalties           []LineItem         `json:"penalties"`
	AttendanceDeduction decimal.Decimal    `json:"attendance_deduction"`
	LeaveDeduction      decimal.Decimal    `json:"leave_deduction"`
	Total               decimal.Decimal    `json:"total"`
}

// InstanceStatus is the review state of a signing-bonus or termination-benefit
// instance, independent of the approval status of its configuration.
type InstanceStatus string

const (
	InstanceStatusPending  InstanceStatus = "pending"
	InstanceStatusApproved InstanceStatus = "approved"
	InstanceStatusRejected InstanceStatus = "rejected"
)

func (s InstanceStatus) IsValid() bool {
	return s == InstanceStatusPending || s == InstanceStatusApproved || s == InstanceStatusRejected
}

type SigningBonusInstance struct {
	ID              string
	EmployeeID      string
	SigningBonusID  string
	GivenAmount     decimal.Decimal
	Status          InstanceStatus
	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string
	PaidAt          *time.Time
	PaidInRunID     *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined
	EmployeeName *string
}

type TerminationBenefitInstance struct {
	ID              string
	EmployeeID      string
	BenefitName     string
	GivenAmount     decimal.Decimal
	Status          InstanceStatus
	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string
	PaidAt          *time.Time
	PaidInRunID     *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined
	EmployeeName *string
}

// Penalty is a one-off deduction. It is applied by exactly one finance-approved run.
type Penalty struct {
	ID             string
	EmployeeID     string
	Reason         string
	Amount         decimal.Decimal
	AppliedAt      *time.Time
	AppliedInRunID *string
}

// Period holds the first and last day of a pay month.
type Period struct {
	Start       time.Time
	End         time.Time
	DaysInMonth int
}

// PeriodBounds returns the calendar month containing t, in UTC, at day granularity.
func PeriodBounds(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return Period{Start: start, End: end, DaysInMonth: end.Day()}
}
