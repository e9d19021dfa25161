package payroll

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/onestaff/onestaff-os/internal/domain/attendance"
	"github.com/onestaff/onestaff-os/internal/domain/employee"
	"github.com/onestaff/onestaff-os/internal/domain/leave"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/domain/payrollconfig"
	"github.com/onestaff/onestaff-os/internal/pkg/sse"
	"github.com/stretchr/testify/require"
)

const testActorID = "11111111-1111-4111-8111-111111111111"

// actorContext returns a context carrying verified claims for userID, the way
// jwtauth.Verifier leaves it for the services.
func actorContext(t *testing.T, userID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{"user_id": userID, "type": "access"})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []sse.Event
}

func (p *recordingPublisher) Publish(topic string, event sse.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.Event)
	}
	return names
}

// ========== RUNS ==========

type fakeRunRepo struct {
	mu       sync.Mutex
	seq      map[int]int
	runs     map[string]payroll.Run
	details  map[string][]payroll.EmployeeDetail
	createFn func(run payroll.Run) error
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{
		seq:     make(map[int]int),
		runs:    make(map[string]payroll.Run),
		details: make(map[string][]payroll.EmployeeDetail),
	}
}

func (r *fakeRunRepo) NextRunSequence(ctx context.Context, year int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq[year]++
	return r.seq[year], nil
}

func (r *fakeRunRepo) CreateRun(ctx context.Context, run payroll.Run) (payroll.Run, error) {
	if r.createFn != nil {
		if err := r.createFn(run); err != nil {
			return payroll.Run{}, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	run.ID = uuid.NewString()
	run.CreatedAt = time.Now().UTC()
	run.UpdatedAt = run.CreatedAt
	r.runs[run.ID] = run
	return run, nil
}

func (r *fakeRunRepo) CreateDetails(ctx context.Context, details []payroll.EmployeeDetail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range details {
		d.ID = uuid.NewString()
		r.details[d.RunID] = append(r.details[d.RunID], d)
	}
	return nil
}

func (r *fakeRunRepo) GetRunByID(ctx context.Context, id string) (payroll.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	return run, nil
}

func (r *fakeRunRepo) ListRuns(ctx context.Context, filter payroll.RunFilter) ([]payroll.Run, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var runs []payroll.Run
	for _, run := range r.runs {
		if filter.Status != nil && string(run.Status) != *filter.Status {
			continue
		}
		runs = append(runs, run)
	}
	return runs, int64(len(runs)), nil
}

func (r *fakeRunRepo) UpdateRunStatus(ctx context.Context, run payroll.Run, expected payroll.RunStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.runs[run.ID]
	if !ok || stored.Status != expected {
		return fmt.Errorf("%w: run %s requires status %s", payroll.ErrInvalidTransition, run.RunCode, expected)
	}
	r.runs[run.ID] = run
	return nil
}

func (r *fakeRunRepo) ListDetailsByRunID(ctx context.Context, runID string) ([]payroll.EmployeeDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]payroll.EmployeeDetail(nil), r.details[runID]...), nil
}

// put stores run as is and returns its id.
func (r *fakeRunRepo) put(run payroll.Run, details ...payroll.EmployeeDetail) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	r.runs[run.ID] = run
	for _, d := range details {
		d.RunID = run.ID
		r.details[run.ID] = append(r.details[run.ID], d)
	}
	return run.ID
}

// ========== PAYSLIPS ==========

type fakePayslipRepo struct {
	mu        sync.Mutex
	payslips  map[string]payroll.Payslip
	updateErr error
}

func newFakePayslipRepo() *fakePayslipRepo {
	return &fakePayslipRepo{payslips: make(map[string]payroll.Payslip)}
}

func (r *fakePayslipRepo) CountByRunID(ctx context.Context, runID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.payslips {
		if p.RunID == runID {
			n++
		}
	}
	return n, nil
}

func (r *fakePayslipRepo) Create(ctx context.Context, p payroll.Payslip) (payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.payslips {
		if existing.RunID == p.RunID && existing.EmployeeID == p.EmployeeID {
			return payroll.Payslip{}, payroll.ErrPayslipsAlreadyGenerated
		}
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	r.payslips[p.ID] = p
	return p, nil
}

func (r *fakePayslipRepo) UpdateDocumentPath(ctx context.Context, id string, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	p, ok := r.payslips[id]
	if !ok {
		return payroll.ErrPayslipNotFound
	}
	p.DocumentPath = &path
	r.payslips[id] = p
	return nil
}

func (r *fakePayslipRepo) GetByID(ctx context.Context, id string) (payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payslips[id]
	if !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return p, nil
}

func (r *fakePayslipRepo) ListByRunID(ctx context.Context, runID string) ([]payroll.Payslip, error) {
	return r.filter(func(p payroll.Payslip) bool { return p.RunID == runID }), nil
}

func (r *fakePayslipRepo) ListByEmployeeID(ctx context.Context, employeeID string) ([]payroll.Payslip, error) {
	return r.filter(func(p payroll.Payslip) bool { return p.EmployeeID == employeeID }), nil
}

func (r *fakePayslipRepo) filter(keep func(payroll.Payslip) bool) []payroll.Payslip {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Payslip
	for _, p := range r.payslips {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// ========== SIGNING BONUSES AND BENEFITS ==========

type fakeSigningBonusRepo struct {
	mu        sync.Mutex
	instances map[string]payroll.SigningBonusInstance
	paidRuns  map[string]string
}

func newFakeSigningBonusRepo(instances ...payroll.SigningBonusInstance) *fakeSigningBonusRepo {
	r := &fakeSigningBonusRepo{
		instances: make(map[string]payroll.SigningBonusInstance),
		paidRuns:  make(map[string]string),
	}
	for _, i := range instances {
		r.instances[i.ID] = i
	}
	return r
}

func (r *fakeSigningBonusRepo) ListPayableByEmployee(ctx context.Context, employeeID string) ([]payroll.SigningBonusInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.SigningBonusInstance
	for _, i := range r.instances {
		if i.EmployeeID == employeeID && i.Status == payroll.InstanceStatusApproved && i.PaidAt == nil {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *fakeSigningBonusRepo) List(ctx context.Context, filter payroll.InstanceFilter) ([]payroll.SigningBonusInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.SigningBonusInstance
	for _, i := range r.instances {
		if i.Status == filter.Status {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *fakeSigningBonusRepo) GetByID(ctx context.Context, id string) (payroll.SigningBonusInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.instances[id]
	if !ok {
		return payroll.SigningBonusInstance{}, payroll.ErrSigningBonusInstanceNotFound
	}
	return i, nil
}

func (r *fakeSigningBonusRepo) GetByEmployeeAndBonus(ctx context.Context, employeeID, signingBonusID string) (payroll.SigningBonusInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.instances {
		if i.EmployeeID == employeeID && i.SigningBonusID == signingBonusID {
			return i, nil
		}
	}
	return payroll.SigningBonusInstance{}, payroll.ErrSigningBonusInstanceNotFound
}

func (r *fakeSigningBonusRepo) Create(ctx context.Context, instance payroll.SigningBonusInstance) (payroll.SigningBonusInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	instance.ID = uuid.NewString()
	r.instances[instance.ID] = instance
	return instance, nil
}

func (r *fakeSigningBonusRepo) UpdateReview(ctx context.Context, instance payroll.SigningBonusInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.instances[instance.ID]
	if !ok {
		return payroll.ErrSigningBonusInstanceNotFound
	}
	if stored.Status != payroll.InstanceStatusPending {
		return payroll.ErrInstanceAlreadyReviewed
	}
	r.instances[instance.ID] = instance
	return nil
}

func (r *fakeSigningBonusRepo) MarkPaid(ctx context.Context, ids []string, runID string, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		i, ok := r.instances[id]
		if !ok || i.PaidAt != nil {
			continue
		}
		i.PaidAt = &paidAt
		i.PaidInRunID = &runID
		r.instances[id] = i
		r.paidRuns[id] = runID
	}
	return nil
}

type fakeTerminationBenefitRepo struct {
	mu        sync.Mutex
	instances map[string]payroll.TerminationBenefitInstance
}

func newFakeTerminationBenefitRepo(instances ...payroll.TerminationBenefitInstance) *fakeTerminationBenefitRepo {
	r := &fakeTerminationBenefitRepo{instances: make(map[string]payroll.TerminationBenefitInstance)}
	for _, i := range instances {
		r.instances[i.ID] = i
	}
	return r
}

func (r *fakeTerminationBenefitRepo) ListPayableByEmployee(ctx context.Context, employeeID string) ([]payroll.TerminationBenefitInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.TerminationBenefitInstance
	for _, i := range r.instances {
		if i.EmployeeID == employeeID && i.Status == payroll.InstanceStatusApproved && i.PaidAt == nil {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *fakeTerminationBenefitRepo) List(ctx context.Context, filter payroll.InstanceFilter) ([]payroll.TerminationBenefitInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.TerminationBenefitInstance
	for _, i := range r.instances {
		if i.Status == filter.Status {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *fakeTerminationBenefitRepo) GetByID(ctx context.Context, id string) (payroll.TerminationBenefitInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.instances[id]
	if !ok {
		return payroll.TerminationBenefitInstance{}, payroll.ErrTerminationBenefitNotFound
	}
	return i, nil
}

func (r *fakeTerminationBenefitRepo) UpdateReview(ctx context.Context, instance payroll.TerminationBenefitInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.instances[instance.ID]
	if !ok {
		return payroll.ErrTerminationBenefitNotFound
	}
	if stored.Status != payroll.InstanceStatusPending {
		return payroll.ErrInstanceAlreadyReviewed
	}
	r.instances[instance.ID] = instance
	return nil
}

func (r *fakeTerminationBenefitRepo) MarkPaid(ctx context.Context, ids []string, runID string, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		i, ok := r.instances[id]
		if !ok || i.PaidAt != nil {
			continue
		}
		i.PaidAt = &paidAt
		i.PaidInRunID = &runID
		r.instances[id] = i
	}
	return nil
}

type fakePenaltyRepo struct {
	mu         sync.Mutex
	byEmployee map[string][]payroll.Penalty
}

func (r *fakePenaltyRepo) ListOutstandingByEmployee(ctx context.Context, employeeID string) ([]payroll.Penalty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Penalty
	for _, p := range r.byEmployee[employeeID] {
		if p.AppliedAt == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePenaltyRepo) MarkApplied(ctx context.Context, ids []string, runID string, appliedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		for emp, penalties := range r.byEmployee {
			for i := range penalties {
				if penalties[i].ID == id && penalties[i].AppliedAt == nil {
					r.byEmployee[emp][i].AppliedAt = &appliedAt
					r.byEmployee[emp][i].AppliedInRunID = &runID
				}
			}
		}
	}
	return nil
}

// ========== EMPLOYEES, ATTENDANCE, LEAVE, CONFIG ==========

type fakeEmployeeRepo struct {
	active    []employee.Employee
	contracts []employee.Contract
	err       error
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	for _, e := range r.active {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) GetActive(ctx context.Context) ([]employee.Employee, error) {
	return r.active, r.err
}

func (r *fakeEmployeeRepo) GetSignedContractsWithSigningBonus(ctx context.Context) ([]employee.Contract, error) {
	return r.contracts, r.err
}

type fakeAttendanceRepo struct {
	byEmployee map[string][]attendance.Record
}

func (r *fakeAttendanceRepo) ListByEmployeeBetween(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	return r.byEmployee[employeeID], nil
}

type fakeLeaveRepo struct {
	requests     map[string][]leave.LeaveRequest
	entitlements map[string]leave.Entitlement
}

func (r *fakeLeaveRepo) ListApprovedOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	return r.requests[employeeID], nil
}

func (r *fakeLeaveRepo) GetEntitlement(ctx context.Context, employeeID, leaveTypeID string) (leave.Entitlement, error) {
	e, ok := r.entitlements[employeeID+"/"+leaveTypeID]
	if !ok {
		return leave.Entitlement{}, leave.ErrEntitlementNotFound
	}
	return e, nil
}

type fakeConfigRepo struct {
	allowances []payrollconfig.Allowance
	taxRules   []payrollconfig.TaxRule
	brackets   []payrollconfig.InsuranceBracket
	bonuses    map[string]payrollconfig.SigningBonus

	// started is signalled when a load begins; release, when set, holds it open.
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	loads int
}

func (r *fakeConfigRepo) ListApprovedAllowances(ctx context.Context) ([]payrollconfig.Allowance, error) {
	r.mu.Lock()
	r.loads++
	r.mu.Unlock()

	if r.started != nil {
		select {
		case r.started <- struct{}{}:
		default:
		}
	}
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.allowances, nil
}

func (r *fakeConfigRepo) ListApprovedTaxRules(ctx context.Context) ([]payrollconfig.TaxRule, error) {
	return r.taxRules, nil
}

func (r *fakeConfigRepo) ListApprovedInsuranceBrackets(ctx context.Context) ([]payrollconfig.InsuranceBracket, error) {
	return r.brackets, nil
}

func (r *fakeConfigRepo) GetSigningBonusByID(ctx context.Context, id string) (payrollconfig.SigningBonus, error) {
	b, ok := r.bonuses[id]
	if !ok {
		return payrollconfig.SigningBonus{}, payrollconfig.ErrSigningBonusNotFound
	}
	return b, nil
}

type fakeReconciler struct {
	calls int
}

func (r *fakeReconciler) Reconcile(ctx context.Context) (payroll.ReconcileResult, error) {
	r.calls++
	return payroll.ReconcileResult{}, nil
}
