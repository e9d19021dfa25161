package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/onestaff/onestaff-os/internal/domain/payrollconfig"
	"golang.org/x/sync/singleflight"
)

// SnapshotReader loads the approved payroll configuration. Draft and rejected
// rows are invisible. Concurrent loads share one round of queries.
type SnapshotReader struct {
	configRepo payrollconfig.ConfigRepository
	group      singleflight.Group
	now        func() time.Time
}

func NewSnapshotReader(configRepo payrollconfig.ConfigRepository) *SnapshotReader {
	return &SnapshotReader{
		configRepo: configRepo,
		now:        time.Now,
	}
}

// Load returns the approved allowances, tax rules and insurance brackets.
// Empty collections are a valid result. The shared load is detached from the
// caller's cancellation; each caller stops waiting when its own ctx is done.
func (r *SnapshotReader) Load(ctx context.Context) (payrollconfig.Snapshot, error) {
	ch := r.group.DoChan("approved", func() (interface{}, error) {
		return r.load(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return payrollconfig.Snapshot{}, res.Err
		}
		return res.Val.(payrollconfig.Snapshot), nil
	case <-ctx.Done():
		return payrollconfig.Snapshot{}, ctx.Err()
	}
}

func (r *SnapshotReader) load(ctx context.Context) (payrollconfig.Snapshot, error) {
	allowances, err := r.configRepo.ListApprovedAllowances(ctx)
	if err != nil {
		return payrollconfig.Snapshot{}, fmt.Errorf("failed to load allowances: %w", err)
	}
	taxRules, err := r.configRepo.ListApprovedTaxRules(ctx)
	if err != nil {
		return payrollconfig.Snapshot{}, fmt.Errorf("failed to load tax rules: %w", err)
	}
	brackets, err := r.configRepo.ListApprovedInsuranceBrackets(ctx)
	if err != nil {
		return payrollconfig.Snapshot{}, fmt.Errorf("failed to load insurance brackets: %w", err)
	}

	return payrollconfig.Snapshot{
		Allowances:        nonNil(allowances),
		TaxRules:          nonNil(taxRules),
		InsuranceBrackets: nonNil(brackets),
		LoadedAt:          r.now().UTC(),
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
