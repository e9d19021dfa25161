package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/onestaff/onestaff-os/internal/domain/employee"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/domain/payrollconfig"
)

// SigningBonusReconcilerImpl makes sure every signed contract carrying a
// signing bonus has an instance, and promotes pending instances whose bonus
// configuration has since been approved.
type SigningBonusReconcilerImpl struct {
	employeeRepo employee.EmployeeRepository
	configRepo   payrollconfig.ConfigRepository
	bonusRepo    payroll.SigningBonusRepository
	now          func() time.Time
}

func NewSigningBonusReconciler(
	employeeRepo employee.EmployeeRepository,
	configRepo payrollconfig.ConfigRepository,
	bonusRepo payroll.SigningBonusRepository,
) payroll.SigningBonusReconciler {
	return &SigningBonusReconcilerImpl{
		employeeRepo: employeeRepo,
		configRepo:   configRepo,
		bonusRepo:    bonusRepo,
		now:          nowUTC,
	}
}

// Reconcile fails only when contracts cannot be listed. Per-contract errors
// are logged and counted in the result.
func (r *SigningBonusReconcilerImpl) Reconcile(ctx context.Context) (payroll.ReconcileResult, error) {
	var result payroll.ReconcileResult

	contracts, err := r.employeeRepo.GetSignedContractsWithSigningBonus(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list signed contracts: %w", err)
	}

	for _, c := range contracts {
		if !c.IsSigned() || c.SigningBonusID == nil {
			continue
		}

		outcome, err := r.reconcileContract(ctx, c)
		if err != nil {
			result.Failed++
			slog.WarnContext(ctx, "Failed to reconcile signing bonus",
				"contract_id", c.ID, "employee_id", c.EmployeeID, "error", err)
			continue
		}
		switch outcome {
		case outcomeCreated:
			result.Created++
		case outcomePromoted:
			result.Promoted++
		}
	}

	return result, nil
}

type reconcileOutcome int

const (
	outcomeUnchanged reconcileOutcome = iota
	outcomeCreated
	outcomePromoted
)

func (r *SigningBonusReconcilerImpl) reconcileContract(ctx context.Context, c employee.Contract) (reconcileOutcome, error) {
	bonus, err := r.configRepo.GetSigningBonusByID(ctx, *c.SigningBonusID)
	if err != nil {
		return outcomeUnchanged, err
	}

	instance, err := r.bonusRepo.GetByEmployeeAndBonus(ctx, c.EmployeeID, bonus.ID)
	if errors.Is(err, payroll.ErrSigningBonusInstanceNotFound) {
		status := payroll.InstanceStatusPending
		if bonus.IsApproved() {
			status = payroll.InstanceStatusApproved
		}
		_, err := r.bonusRepo.Create(ctx, payroll.SigningBonusInstance{
			EmployeeID:     c.EmployeeID,
			SigningBonusID: bonus.ID,
			GivenAmount:    bonus.Amount,
			Status:         status,
		})
		if err != nil {
			return outcomeUnchanged, err
		}
		return outcomeCreated, nil
	}
	if err != nil {
		return outcomeUnchanged, err
	}

	if instance.Status != payroll.InstanceStatusPending || !bonus.IsApproved() {
		return outcomeUnchanged, nil
	}

	now := r.now()
	instance.Status = payroll.InstanceStatusApproved
	instance.ReviewedAt = &now
	instance.UpdatedAt = now
	if err := r.bonusRepo.UpdateReview(ctx, instance); err != nil {
		return outcomeUnchanged, err
	}
	return outcomePromoted, nil
}
