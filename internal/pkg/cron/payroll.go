package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/onestaff/onestaff-os/internal/domain/payroll"
)

type PayrollJobs struct {
	reconciler payroll.SigningBonusReconciler
	interval   time.Duration
}

func NewPayrollJobs(reconciler payroll.SigningBonusReconciler, interval time.Duration) *PayrollJobs {
	return &PayrollJobs{
		reconciler: reconciler,
		interval:   interval,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("reconcile_signing_bonuses", j.interval, j.ReconcileSigningBonuses)
}

// ReconcileSigningBonuses backfills signing-bonus instances between runs so
// reviewers see them before the next run is created.
func (j *PayrollJobs) ReconcileSigningBonuses(ctx context.Context) error {
	result, err := j.reconciler.Reconcile(ctx)
	if err != nil {
		return err
	}

	if result.Created > 0 || result.Promoted > 0 || result.Failed > 0 {
		slog.Info("Cron: signing bonuses reconciled",
			"created", result.Created,
			"promoted", result.Promoted,
			"failed", result.Failed,
		)
	}
	return nil
}
