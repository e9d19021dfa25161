package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReconciler struct {
	calls  int
	result payroll.ReconcileResult
	err    error
}

func (s *stubReconciler) Reconcile(ctx context.Context) (payroll.ReconcileResult, error) {
	s.calls++
	return s.result, s.err
}

func TestScheduler_RunOnce(t *testing.T) {
	reconciler := &stubReconciler{result: payroll.ReconcileResult{Created: 2}}
	scheduler := NewScheduler()
	NewPayrollJobs(reconciler, time.Hour).RegisterJobs(scheduler)

	require.NoError(t, scheduler.RunOnce(context.Background()))
	assert.Equal(t, 1, reconciler.calls)
}

func TestScheduler_RunOnceReportsFailure(t *testing.T) {
	reconciler := &stubReconciler{err: errors.New("database unavailable")}
	scheduler := NewScheduler()
	NewPayrollJobs(reconciler, time.Hour).RegisterJobs(scheduler)

	err := scheduler.RunOnce(context.Background())
	assert.EqualError(t, err, "database unavailable")
}

func TestScheduler_RecoversFromPanic(t *testing.T) {
	scheduler := NewScheduler()
	scheduler.AddJob("boom", time.Hour, func(ctx context.Context) error {
		panic("unexpected")
	})

	err := scheduler.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	ran := make(chan struct{}, 1)
	scheduler := NewScheduler()
	scheduler.AddJob("tick", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	scheduler.Start()
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	scheduler.Stop()
}
