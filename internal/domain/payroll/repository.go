package payroll

import (
	"context"
	"time"
)

type RunRepository interface {
	// NextRunSequence atomically increments and returns the run counter for year.
	NextRunSequence(ctx context.Context, year int) (int, error)
	CreateRun(ctx context.Context, run Run) (Run, error)
	CreateDetails(ctx context.Context, details []EmployeeDetail) error
	GetRunByID(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, int64, error)
	// UpdateRunStatus persists workflow fields only when the stored status
	// still equals expected. It returns ErrInvalidTransition otherwise.
	UpdateRunStatus(ctx context.Context, run Run, expected RunStatus) error
	ListDetailsByRunID(ctx context.Context, runID string) ([]EmployeeDetail, error)
}

type PayslipRepository interface {
	CountByRunID(ctx context.Context, runID string) (int, error)
	Create(ctx context.Context, payslip Payslip) (Payslip, error)
	UpdateDocumentPath(ctx context.Context, id string, path string) error
	GetByID(ctx context.Context, id string) (Payslip, error)
	ListByRunID(ctx context.Context, runID string) ([]Payslip, error)
	ListByEmployeeID(ctx context.Context, employeeID string) ([]Payslip, error)
}

type SigningBonusRepository interface {
	// ListPayableByEmployee returns approved instances not yet marked paid.
	ListPayableByEmployee(ctx context.Context, employeeID string) ([]SigningBonusInstance, error)
	List(ctx context.Context, filter InstanceFilter) ([]SigningBonusInstance, error)
	GetByID(ctx context.Context, id string) (SigningBonusInstance, error)
	GetByEmployeeAndBonus(ctx context.Context, employeeID, signingBonusID string) (SigningBonusInstance, error)
	Create(ctx context.Context, instance SigningBonusInstance) (SigningBonusInstance, error)
	// UpdateReview writes the review fields if the instance is still pending.
	UpdateReview(ctx context.Context, instance SigningBonusInstance) error
	MarkPaid(ctx context.Context, ids []string, runID string, paidAt time.Time) error
}

type TerminationBenefitRepository interface {
	// ListPayableByEmployee returns approved instances not yet marked paid.
	ListPayableByEmployee(ctx context.Context, employeeID string) ([]TerminationBenefitInstance, error)
	List(ctx context.Context, filter InstanceFilter) ([]TerminationBenefitInstance, error)
	GetByID(ctx context.Context, id string) (TerminationBenefitInstance, error)
	UpdateReview(ctx context.Context, instance TerminationBenefitInstance) error
	MarkPaid(ctx context.Context, ids []string, runID string, paidAt time.Time) error
}

type PenaltyRepository interface {
	// ListOutstandingByEmployee returns penalties no run has applied yet.
	ListOutstandingByEmployee(ctx context.Context, employeeID string) ([]Penalty, error)
	MarkApplied(ctx context.Context, ids []string, runID string, appliedAt time.Time) error
}
