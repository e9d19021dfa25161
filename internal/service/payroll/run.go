package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/onestaff/onestaff-os/internal/domain/attendance"
	"github.com/onestaff/onestaff-os/internal/domain/employee"
	"github.com/onestaff/onestaff-os/internal/domain/leave"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/domain/payrollconfig"
	"github.com/onestaff/onestaff-os/internal/pkg/database"
	"github.com/onestaff/onestaff-os/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Repositories groups every store the payroll services read or write.
type Repositories struct {
	Runs                payroll.RunRepository
	Payslips            payroll.PayslipRepository
	SigningBonuses      payroll.SigningBonusRepository
	TerminationBenefits payroll.TerminationBenefitRepository
	Penalties           payroll.PenaltyRepository
	Employees           employee.EmployeeRepository
	Attendance          attendance.AttendanceRepository
	Leaves              leave.LeaveRepository
	Config              payrollconfig.ConfigRepository
}

type RunServiceImpl struct {
	tx         database.Transactor
	repos      Repositories
	snapshots  *SnapshotReader
	loader     *inputLoader
	calculator *Calculator
	reconciler payroll.SigningBonusReconciler
	events     EventPublisher
	now        func() time.Time
}

func NewRunService(
	tx database.Transactor,
	repos Repositories,
	calculator *Calculator,
	reconciler payroll.SigningBonusReconciler,
	events EventPublisher,
) payroll.RunService {
	return &RunServiceImpl{
		tx:         tx,
		repos:      repos,
		snapshots:  NewSnapshotReader(repos.Config),
		calculator: calculator,
		reconciler: reconciler,
		events:     events,
		now:        nowUTC,
		loader: &inputLoader{
			attendanceRepo: repos.Attendance,
			leaveRepo:      repos.Leaves,
			bonusRepo:      repos.SigningBonuses,
			benefitRepo:    repos.TerminationBenefits,
			penaltyRepo:    repos.Penalties,
		},
	}
}

// ========== RUN CREATION ==========

func (s *RunServiceImpl) CreateRun(ctx context.Context, req payroll.CreateRunRequest) (payroll.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}

	actorID, err := getActorFromContext(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	periodStart, err := validator.ParsePeriod(req.PayrollPeriod)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	period := payroll.PeriodBounds(periodStart)

	// Best effort: stale signing-bonus instances must not block a run.
	if s.reconciler != nil {
		if result, err := s.reconciler.Reconcile(ctx); err != nil {
			slog.WarnContext(ctx, "Signing bonus reconciliation failed", "error", err)
		} else if result.Created > 0 || result.Promoted > 0 {
			slog.InfoContext(ctx, "Signing bonus instances reconciled",
				"created", result.Created, "promoted", result.Promoted, "failed", result.Failed)
		}
	}

	employees, err := s.repos.Employees.GetActive(ctx)
	if err != nil {
		return payroll.RunResponse{}, fmt.Errorf("failed to get active employees: %w", err)
	}
	if len(employees) == 0 {
		return payroll.RunResponse{}, payroll.ErrNoActiveEmployees
	}

	snapshot, err := s.snapshots.Load(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	details := make([]payroll.EmployeeDetail, 0, len(employees))
	totalNetPay := decimal.Zero
	exceptionCount := 0

	for _, emp := range employees {
		detail, err := s.calculateEmployee(ctx, emp, period, snapshot)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return payroll.RunResponse{}, ctxErr
			}
			slog.ErrorContext(ctx, "Payroll calculation failed for employee",
				"employee_id", emp.ID, "period", req.PayrollPeriod, "error", err)
			exceptionCount++
			continue
		}
		if len(detail.Exceptions) > 0 {
			exceptionCount++
		}
		totalNetPay = totalNetPay.Add(detail.NetPay)
		details = append(details, detail)
	}

	run := payroll.Run{
		PayrollPeriod:       period.Start,
		Entity:              req.Entity,
		EmployeeCount:       len(details),
		ExceptionCount:      exceptionCount,
		TotalNetPay:         totalNetPay,
		Status:              payroll.RunStatusDraft,
		PaymentStatus:       payroll.PaymentStatusPending,
		PayrollSpecialistID: actorID,
		ConfigSnapshot:      snapshot,
		Policy:              s.calculator.Policy(),
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		seq, err := s.repos.Runs.NextRunSequence(txCtx, period.Start.Year())
		if err != nil {
			return err
		}
		run.RunCode = fmt.Sprintf("PR-%d-%04d", period.Start.Year(), seq)

		created, err := s.repos.Runs.CreateRun(txCtx, run)
		if err != nil {
			return err
		}
		for i := range details {
			details[i].RunID = created.ID
		}
		if err := s.repos.Runs.CreateDetails(txCtx, details); err != nil {
			return err
		}

		run = created
		return nil
	})
	if err != nil {
		return payroll.RunResponse{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	slog.InfoContext(ctx, "Payroll run created",
		"run_id", run.ID,
		"run_code", run.RunCode,
		"employees", run.EmployeeCount,
		"exceptions", run.ExceptionCount,
		"total_net_pay", run.TotalNetPay.StringFixed(2),
	)

	publish(s.events, EventRunCreated, payroll.RunEvent{
		RunID:      run.ID,
		RunCode:    run.RunCode,
		Status:     run.Status,
		Action:     "create",
		ActorID:    actorID,
		OccurredAt: s.now(),
	})

	return mapToRunResponse(run), nil
}

func (s *RunServiceImpl) calculateEmployee(ctx context.Context, emp employee.Employee, period payroll.Period, snapshot payrollconfig.Snapshot) (payroll.EmployeeDetail, error) {
	inputs, err := s.loader.load(ctx, emp, period)
	if err != nil {
		return payroll.EmployeeDetail{}, err
	}

	summary, err := ResolveAttendance(period, s.calculator.Policy(), inputs.records, inputs.leaves)
	if err != nil {
		return payroll.EmployeeDetail{}, err
	}

	return s.calculator.Calculate(CalculationInput{
		Employee:            emp,
		Period:              period,
		Snapshot:            snapshot,
		SigningBonuses:      inputs.signingBonuses,
		TerminationBenefits: inputs.terminationBenefits,
		Penalties:           inputs.penalties,
		Attendance:          summary,
	}), nil
}

// ========== READS ==========

func (s *RunServiceImpl) ListRuns(ctx context.Context, filter payroll.RunFilter) ([]payroll.RunResponse, payroll.Pagination, error) {
	if err := filter.Validate(); err != nil {
		return nil, payroll.Pagination{}, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	runs, total, err := s.repos.Runs.ListRuns(ctx, filter)
	if err != nil {
		return nil, payroll.Pagination{}, err
	}

	pagination := payroll.Pagination{
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}
	return mapToRunResponses(runs), pagination, nil
}

func (s *RunServiceImpl) GetRun(ctx context.Context, id string) (payroll.RunResponse, error) {
	if err := validateID(id); err != nil {
		return payroll.RunResponse{}, err
	}

	run, err := s.repos.Runs.GetRunByID(ctx, id)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	return mapToRunResponse(run), nil
}

func (s *RunServiceImpl) ListEmployeeDetails(ctx context.Context, runID string) ([]payroll.EmployeeDetailResponse, error) {
	if err := validateID(runID); err != nil {
		return nil, err
	}
	if _, err := s.repos.Runs.GetRunByID(ctx, runID); err != nil {
		return nil, err
	}

	details, err := s.repos.Runs.ListDetailsByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.EmployeeDetailResponse, 0, len(details))
	for _, d := range details {
		responses = append(responses, mapToDetailResponse(d))
	}
	return responses, nil
}

// ========== WORKFLOW ==========

func (s *RunServiceImpl) Transition(ctx context.Context, runID string, action payroll.Action, req payroll.TransitionRequest) (payroll.RunResponse, error) {
	if err := validateID(runID); err != nil {
		return payroll.RunResponse{}, err
	}

	actorID, err := getActorFromContext(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	var (
		run  payroll.Run
		prev payroll.RunStatus
	)
	now := s.now()

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.repos.Runs.GetRunByID(txCtx, runID)
		if err != nil {
			return err
		}

		prev, err = current.Apply(action, actorID, req.ReasonFor(action), now)
		if err != nil {
			return err
		}
		if err := s.repos.Runs.UpdateRunStatus(txCtx, current, prev); err != nil {
			return err
		}

		if action == payroll.ActionFinanceApprove {
			if err := s.settleRunItems(txCtx, current.ID, now); err != nil {
				return err
			}
		}

		run = current
		return nil
	})
	if err != nil {
		if errors.Is(err, payroll.ErrInvalidTransition) || errors.Is(err, payroll.ErrReasonRequired) || errors.Is(err, payroll.ErrRunNotFound) {
			return payroll.RunResponse{}, err
		}
		return payroll.RunResponse{}, fmt.Errorf("failed to %s payroll run: %w", action, err)
	}

	slog.InfoContext(ctx, "Payroll run transitioned",
		"run_id", run.ID, "action", string(action), "from", string(prev), "to", string(run.Status), "actor_id", actorID)

	publish(s.events, EventRunTransitioned, payroll.RunEvent{
		RunID:          run.ID,
		RunCode:        run.RunCode,
		Status:         run.Status,
		PreviousStatus: prev,
		Action:         string(action),
		ActorID:        actorID,
		OccurredAt:     now,
	})

	return mapToRunResponse(run), nil
}

// settleRunItems marks the signing bonuses and termination benefits paid by
// this run and its penalties applied, so later runs skip them.
func (s *RunServiceImpl) settleRunItems(ctx context.Context, runID string, at time.Time) error {
	details, err := s.repos.Runs.ListDetailsByRunID(ctx, runID)
	if err != nil {
		return err
	}

	var bonusIDs, benefitIDs, penaltyIDs []string
	for _, d := range details {
		bonusIDs = appendLineItemIDs(bonusIDs, d.Breakdown.Bonuses)
		benefitIDs = appendLineItemIDs(benefitIDs, d.Breakdown.Benefits)
		penaltyIDs = appendLineItemIDs(penaltyIDs, d.Breakdown.Penalties)
	}

	if err := s.repos.SigningBonuses.MarkPaid(ctx, bonusIDs, runID, at); err != nil {
		return err
	}
	if err := s.repos.TerminationBenefits.MarkPaid(ctx, benefitIDs, runID, at); err != nil {
		return err
	}
	return s.repos.Penalties.MarkApplied(ctx, penaltyIDs, runID, at)
}

func appendLineItemIDs(ids []string, items []payroll.LineItem) []string {
	for _, item := range items {
		if item.ID != "" {
			ids = append(ids, item.ID)
		}
	}
	return ids
}
