package payroll

import (
	"bytes"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/onestaff/onestaff-os/internal/domain/employee"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/pkg/document"
	"github.com/onestaff/onestaff-os/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payslipFixture struct {
	service   payroll.PayslipService
	runs      *fakeRunRepo
	payslips  *fakePayslipRepo
	employees *fakeEmployeeRepo
	storage   *storage.LocalStorage
	dir       string
	events    *recordingPublisher
}

func newPayslipFixture(t *testing.T) *payslipFixture {
	t.Helper()
	dir := t.TempDir()
	local, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	f := &payslipFixture{
		runs:      newFakeRunRepo(),
		payslips:  newFakePayslipRepo(),
		employees: &fakeEmployeeRepo{},
		storage:   local,
		dir:       dir,
		events:    &recordingPublisher{},
	}
	f.service = NewPayslipService(f.runs, f.payslips, f.employees, local, document.NewPayslipRenderer("OneStaff", "EGP"), f.events)
	return f
}

// lockedRun stores a locked, paid run with two details computed against the
// standard snapshot.
func (f *payslipFixture) lockedRun(t *testing.T, status payroll.RunStatus, payment payroll.PaymentStatus) string {
	t.Helper()
	calc := NewCalculator(payroll.DefaultPolicy())
	snapshot := standardSnapshot()

	var details []payroll.EmployeeDetail
	for _, emp := range []string{"a", "b"} {
		d := calc.Calculate(CalculationInput{
			Employee:   testEmployee(emp, 10000),
			Period:     march2025,
			Snapshot:   snapshot,
			Attendance: fullAttendance(),
		})
		details = append(details, d)
	}

	return f.runs.put(payroll.Run{
		RunCode:        "PR-2025-0004",
		PayrollPeriod:  march2025.Start,
		Status:         status,
		PaymentStatus:  payment,
		ConfigSnapshot: snapshot,
		Policy:         payroll.DefaultPolicy(),
	}, details...)
}

func TestPayslipService_Generate(t *testing.T) {
	f := newPayslipFixture(t)
	ctx := actorContext(t, testActorID)
	runID := f.lockedRun(t, payroll.RunStatusLocked, payroll.PaymentStatusPaid)

	payslips, err := f.service.GeneratePayslips(ctx, runID)
	require.NoError(t, err)
	require.Len(t, payslips, 2)

	for _, p := range payslips {
		assert.Equal(t, runID, p.RunID)
		assert.True(t, p.HasDocument)
		assert.Equal(t, "PR-2025-0004", *p.RunCode)
		assert.Equal(t, "2025-03", *p.PayrollPeriod)
		assert.Equal(t, payroll.PaymentStatusPaid, p.PaymentStatus)

		assert.True(t, p.TotalGrossSalary.Equal(dec("10500")))
		assert.True(t, p.TotalDeductions.Equal(dec("1575")))
		assert.True(t, p.NetPay.Equal(dec("8925")))
		require.Len(t, p.Deductions.Taxes, 1)
		assert.Equal(t, "tax-5", p.Deductions.Taxes[0].RuleID)
		require.Len(t, p.Deductions.Insurance, 1)
		assert.NotNil(t, p.Earnings.Refunds)
		assert.Empty(t, p.Earnings.Refunds)
	}

	assert.Equal(t, []string{EventPayslipsGenerated}, f.events.names())

	_, err = f.service.GeneratePayslips(ctx, runID)
	assert.ErrorIs(t, err, payroll.ErrPayslipsAlreadyGenerated)
	count, err := f.payslips.CountByRunID(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPayslipService_GenerateRequiresLockedAndPaid(t *testing.T) {
	f := newPayslipFixture(t)
	ctx := actorContext(t, testActorID)

	approved := f.lockedRun(t, payroll.RunStatusApproved, payroll.PaymentStatusPaid)
	_, err := f.service.GeneratePayslips(ctx, approved)
	require.ErrorIs(t, err, payroll.ErrRunNotLocked)
	assert.Contains(t, err.Error(), "must be locked")

	unpaid := f.lockedRun(t, payroll.RunStatusLocked, payroll.PaymentStatusPending)
	_, err = f.service.GeneratePayslips(ctx, unpaid)
	assert.ErrorIs(t, err, payroll.ErrRunNotPaid)

	assert.Empty(t, f.payslips.payslips)
}

func TestPayslipService_Reads(t *testing.T) {
	f := newPayslipFixture(t)
	ctx := actorContext(t, testActorID)
	runID := f.lockedRun(t, payroll.RunStatusLocked, payroll.PaymentStatusPaid)

	_, err := f.service.GeneratePayslips(ctx, runID)
	require.NoError(t, err)

	byRun, err := f.service.ListByRun(ctx, runID)
	require.NoError(t, err)
	assert.Len(t, byRun, 2)

	stored, err := f.payslips.ListByRunID(ctx, runID)
	require.NoError(t, err)
	employeeID := stored[0].EmployeeID

	_, err = f.service.ListByEmployee(ctx, employeeID)
	assert.ErrorIs(t, err, payroll.ErrInvalidID)

	doc, err := f.service.GetDocument(ctx, stored[0].ID)
	require.NoError(t, err)
	assert.Equal(t, employeeID, doc.EmployeeID)
	assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF")))
	assert.Contains(t, doc.Filename, ".pdf")
}

func TestPayslipService_GetDocumentRendersWhenArchiveIsMissing(t *testing.T) {
	f := newPayslipFixture(t)
	ctx := actorContext(t, testActorID)

	missing := "payslips/gone.pdf"
	created, err := f.payslips.Create(ctx, payroll.Payslip{
		RunID:        "run",
		EmployeeID:   "emp",
		NetPay:       dec("100"),
		DocumentPath: &missing,
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)

	doc, err := f.service.GetDocument(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF")))
	assert.Equal(t, "payslip_run_emp.pdf", doc.Filename)
}

func TestPayslipService_UnknownRun(t *testing.T) {
	f := newPayslipFixture(t)
	_, err := f.service.GeneratePayslips(actorContext(t, testActorID), "3f1c1d1e-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, payroll.ErrRunNotFound)
}

func TestPayslipService_ListByEmployee(t *testing.T) {
	f := newPayslipFixture(t)
	ctx := actorContext(t, testActorID)

	emp := testEmployee(uuid.NewString(), 10000)
	f.employees.active = []employee.Employee{emp}
	_, err := f.payslips.Create(ctx, payroll.Payslip{RunID: "run", EmployeeID: emp.ID, NetPay: dec("100")})
	require.NoError(t, err)

	payslips, err := f.service.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, payslips, 1)
	assert.Equal(t, emp.ID, payslips[0].EmployeeID)

	_, err = f.service.ListByEmployee(ctx, uuid.NewString())
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestPayslipService_GenerateRemovesUnrecordedDocuments(t *testing.T) {
	f := newPayslipFixture(t)
	ctx := actorContext(t, testActorID)
	runID := f.lockedRun(t, payroll.RunStatusLocked, payroll.PaymentStatusPaid)
	f.payslips.updateErr = assert.AnError

	payslips, err := f.service.GeneratePayslips(ctx, runID)
	require.NoError(t, err)
	require.Len(t, payslips, 2)

	for _, p := range payslips {
		assert.False(t, p.HasDocument)
	}

	var files []string
	err = filepath.WalkDir(f.dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			files = append(files, path)
		}
		return err
	})
	require.NoError(t, err)
	assert.Empty(t, files)
}
