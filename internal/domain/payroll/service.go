package payroll

import (
	"context"
)

type RunService interface {
	CreateRun(ctx context.Context, req CreateRunRequest) (RunResponse, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]RunResponse, Pagination, error)
	GetRun(ctx context.Context, id string) (RunResponse, error)
	ListEmployeeDetails(ctx context.Context, runID string) ([]EmployeeDetailResponse, error)
	Transition(ctx context.Context, runID string, action Action, req TransitionRequest) (RunResponse, error)
	ExportRun(ctx context.Context, runID string, format ExportFormat) (ExportFile, error)
}

type PayslipService interface {
	GeneratePayslips(ctx context.Context, runID string) ([]PayslipResponse, error)
	ListByRun(ctx context.Context, runID string) ([]PayslipResponse, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]PayslipResponse, error)
	GetDocument(ctx context.Context, payslipID string) (PayslipDocument, error)
}

type ReviewService interface {
	ListSigningBonuses(ctx context.Context, filter InstanceFilter) ([]SigningBonusResponse, error)
	ApproveSigningBonus(ctx context.Context, id string) (SigningBonusResponse, error)
	RejectSigningBonus(ctx context.Context, id string, req ReviewRequest) (SigningBonusResponse, error)
	ListTerminationBenefits(ctx context.Context, filter InstanceFilter) ([]TerminationBenefitResponse, error)
	ApproveTerminationBenefit(ctx context.Context, id string) (TerminationBenefitResponse, error)
	RejectTerminationBenefit(ctx context.Context, id string, req ReviewRequest) (TerminationBenefitResponse, error)
}

// SigningBonusReconciler backfills and promotes signing-bonus instances from
// signed contracts. Used before run creation and by the scheduler.
type SigningBonusReconciler interface {
	Reconcile(ctx context.Context) (ReconcileResult, error)
}

type ReconcileResult struct {
	Created  int
	Promoted int
	Failed   int
}
