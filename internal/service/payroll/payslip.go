package payroll

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/onestaff/onestaff-os/internal/domain/employee"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/pkg/document"
	"github.com/onestaff/onestaff-os/internal/pkg/storage"
)

type PayslipServiceImpl struct {
	runRepo     payroll.RunRepository
	payslipRepo payroll.PayslipRepository
	employees   employee.EmployeeRepository
	storage     storage.FileStorage
	renderer    *document.PayslipRenderer
	events      EventPublisher
	now         func() time.Time
}

func NewPayslipService(
	runRepo payroll.RunRepository,
	payslipRepo payroll.PayslipRepository,
	employees employee.EmployeeRepository,
	fileStorage storage.FileStorage,
	renderer *document.PayslipRenderer,
	events EventPublisher,
) payroll.PayslipService {
	return &PayslipServiceImpl{
		runRepo:     runRepo,
		payslipRepo: payslipRepo,
		employees:   employees,
		storage:     fileStorage,
		renderer:    renderer,
		events:      events,
		now:         nowUTC,
	}
}

// GeneratePayslips issues one payslip per detail of a locked, paid run. It
// refuses to run twice for the same run.
func (s *PayslipServiceImpl) GeneratePayslips(ctx context.Context, runID string) ([]payroll.PayslipResponse, error) {
	if err := validateID(runID); err != nil {
		return nil, err
	}

	run, err := s.runRepo.GetRunByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status != payroll.RunStatusLocked {
		return nil, fmt.Errorf("%w: run %s is %s", payroll.ErrRunNotLocked, run.RunCode, run.Status)
	}
	if run.PaymentStatus != payroll.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: run %s payment is %s", payroll.ErrRunNotPaid, run.RunCode, run.PaymentStatus)
	}

	existing, err := s.payslipRepo.CountByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: %d payslip(s) exist for run %s", payroll.ErrPayslipsAlreadyGenerated, existing, run.RunCode)
	}

	details, err := s.runRepo.ListDetailsByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	payslips := make([]payroll.Payslip, 0, len(details))
	for _, d := range details {
		created, err := s.payslipRepo.Create(ctx, buildPayslip(run, d))
		if err != nil {
			slog.ErrorContext(ctx, "Failed to generate payslip",
				"run_id", run.ID, "employee_id", d.EmployeeID, "error", err)
			continue
		}
		created.RunCode = &run.RunCode
		created.PayrollPeriod = &run.PayrollPeriod
		created.EmployeeCode = d.EmployeeCode
		created.EmployeeName = d.EmployeeName

		s.archive(ctx, &created)
		payslips = append(payslips, created)
	}

	slog.InfoContext(ctx, "Payslips generated",
		"run_id", run.ID, "run_code", run.RunCode, "count", len(payslips), "details", len(details))

	actorID, _ := getActorFromContext(ctx)
	publish(s.events, EventPayslipsGenerated, payroll.RunEvent{
		RunID:        run.ID,
		RunCode:      run.RunCode,
		Status:       run.Status,
		Action:       "generate-payslips",
		ActorID:      actorID,
		PayslipCount: len(payslips),
		OccurredAt:   s.now(),
	})

	return mapToPayslipResponses(payslips), nil
}

// buildPayslip re-derives tax and insurance membership from the snapshot and
// policy stored on the run. The deduction total is taken from the detail as is.
func buildPayslip(run payroll.Run, d payroll.EmployeeDetail) payroll.Payslip {
	insurance := []payroll.AppliedInsurance{}
	if ins := MatchInsurance(run.ConfigSnapshot.InsuranceBrackets, d.GrossSalary); ins != nil {
		insurance = append(insurance, *ins)
	}

	return payroll.Payslip{
		RunID:      run.ID,
		EmployeeID: d.EmployeeID,
		Earnings: payroll.Earnings{
			BaseSalary: d.BaseSalary,
			Allowances: nonNil(d.Breakdown.Allowances),
			Bonuses:    nonNil(d.Breakdown.Bonuses),
			Benefits:   nonNil(d.Breakdown.Benefits),
			Refunds:    []payroll.LineItem{},
		},
		Deductions: payroll.Deductions{
			Taxes:               MatchTaxRules(run.Policy, run.ConfigSnapshot.TaxRules, d.GrossSalary),
			Insurance:           insurance,
			Penalties:           nonNil(d.Breakdown.Penalties),
			AttendanceDeduction: d.Breakdown.AttendanceDeduction,
			LeaveDeduction:      d.Breakdown.LeaveDeduction,
			Total:               d.DeductionsTotal,
		},
		TotalGrossSalary: d.GrossSalary,
		TotalDeductions:  d.DeductionsTotal,
		NetPay:           d.NetPay,
		PaymentStatus:    run.PaymentStatus,
	}
}

// archive stores the rendered PDF. Failures leave the payslip without a
// document; it is rendered on demand instead.
func (s *PayslipServiceImpl) archive(ctx context.Context, p *payroll.Payslip) {
	if s.storage == nil || s.renderer == nil {
		return
	}

	content, err := s.renderer.Render(*p)
	if err != nil {
		slog.WarnContext(ctx, "Failed to render payslip document", "payslip_id", p.ID, "error", err)
		return
	}

	path := fmt.Sprintf("payslips/%s/%s", p.RunID, document.Filename(*p))
	stored, err := s.storage.Upload(ctx, bytes.NewReader(content), path, "application/pdf")
	if err != nil {
		slog.WarnContext(ctx, "Failed to archive payslip document", "payslip_id", p.ID, "error", err)
		return
	}
	if err := s.payslipRepo.UpdateDocumentPath(ctx, p.ID, stored); err != nil {
		slog.WarnContext(ctx, "Failed to record payslip document path", "payslip_id", p.ID, "error", err)
		if err := s.storage.Delete(ctx, stored); err != nil {
			slog.WarnContext(ctx, "Failed to remove unrecorded payslip document", "path", stored, "error", err)
		}
		return
	}
	p.DocumentPath = &stored
}

// ========== READS ==========

func (s *PayslipServiceImpl) ListByRun(ctx context.Context, runID string) ([]payroll.PayslipResponse, error) {
	if err := validateID(runID); err != nil {
		return nil, err
	}
	if _, err := s.runRepo.GetRunByID(ctx, runID); err != nil {
		return nil, err
	}

	payslips, err := s.payslipRepo.ListByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}
	return mapToPayslipResponses(payslips), nil
}

func (s *PayslipServiceImpl) ListByEmployee(ctx context.Context, employeeID string) ([]payroll.PayslipResponse, error) {
	if err := validateID(employeeID); err != nil {
		return nil, err
	}
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	payslips, err := s.payslipRepo.ListByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToPayslipResponses(payslips), nil
}

// GetDocument returns the archived PDF, rendering it when no archived copy
// can be read.
func (s *PayslipServiceImpl) GetDocument(ctx context.Context, payslipID string) (payroll.PayslipDocument, error) {
	if err := validateID(payslipID); err != nil {
		return payroll.PayslipDocument{}, err
	}

	p, err := s.payslipRepo.GetByID(ctx, payslipID)
	if err != nil {
		return payroll.PayslipDocument{}, err
	}
	filename := document.Filename(p)

	if p.DocumentPath != nil && s.storage != nil {
		content, err := s.download(ctx, *p.DocumentPath)
		if err == nil {
			return payroll.PayslipDocument{EmployeeID: p.EmployeeID, Filename: filename, Content: content}, nil
		}
		slog.WarnContext(ctx, "Archived payslip document unreadable, rendering", "payslip_id", p.ID, "error", err)
	}

	if s.renderer == nil {
		return payroll.PayslipDocument{}, fmt.Errorf("payslip %s has no document", p.ID)
	}
	content, err := s.renderer.Render(p)
	if err != nil {
		return payroll.PayslipDocument{}, err
	}
	return payroll.PayslipDocument{EmployeeID: p.EmployeeID, Filename: filename, Content: content}, nil
}

func (s *PayslipServiceImpl) download(ctx context.Context, path string) ([]byte, error) {
	rc, err := s.storage.Download(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
