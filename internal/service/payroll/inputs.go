package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/onestaff/onestaff-os/internal/domain/attendance"
	"github.com/onestaff/onestaff-os/internal/domain/employee"
	"github.com/onestaff/onestaff-os/internal/domain/leave"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"golang.org/x/sync/errgroup"
)

type employeeInputs struct {
	records             []attendance.Record
	leaves              []PeriodLeave
	signingBonuses      []payroll.SigningBonusInstance
	terminationBenefits []payroll.TerminationBenefitInstance
	penalties           []payroll.Penalty
}

// inputLoader fetches the per-employee inputs of a calculation. The queries
// are independent and run concurrently.
type inputLoader struct {
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.LeaveRepository
	bonusRepo      payroll.SigningBonusRepository
	benefitRepo    payroll.TerminationBenefitRepository
	penaltyRepo    payroll.PenaltyRepository
}

func (l *inputLoader) load(ctx context.Context, emp employee.Employee, period payroll.Period) (employeeInputs, error) {
	var in employeeInputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, err := l.attendanceRepo.ListByEmployeeBetween(gctx, emp.ID, period.Start, period.End)
		if err != nil {
			return fmt.Errorf("failed to load attendance: %w", err)
		}
		in.records = records
		return nil
	})

	g.Go(func() error {
		leaves, err := l.loadLeaves(gctx, emp.ID, period)
		if err != nil {
			return err
		}
		in.leaves = leaves
		return nil
	})

	g.Go(func() error {
		bonuses, err := l.bonusRepo.ListPayableByEmployee(gctx, emp.ID)
		if err != nil {
			return fmt.Errorf("failed to load signing bonuses: %w", err)
		}
		in.signingBonuses = bonuses
		return nil
	})

	g.Go(func() error {
		benefits, err := l.benefitRepo.ListPayableByEmployee(gctx, emp.ID)
		if err != nil {
			return fmt.Errorf("failed to load termination benefits: %w", err)
		}
		in.terminationBenefits = benefits
		return nil
	})

	g.Go(func() error {
		penalties, err := l.penaltyRepo.ListOutstandingByEmployee(gctx, emp.ID)
		if err != nil {
			return fmt.Errorf("failed to load penalties: %w", err)
		}
		in.penalties = penalties
		return nil
	})

	if err := g.Wait(); err != nil {
		return employeeInputs{}, err
	}
	return in, nil
}

// loadLeaves returns approved leaves overlapping the period, each paired with
// the entitlement of its type when the type draws on a balance.
func (l *inputLoader) loadLeaves(ctx context.Context, employeeID string, period payroll.Period) ([]PeriodLeave, error) {
	requests, err := l.leaveRepo.ListApprovedOverlapping(ctx, employeeID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load leave requests: %w", err)
	}

	entitlements := make(map[string]*leave.Entitlement)
	leaves := make([]PeriodLeave, 0, len(requests))
	for _, req := range requests {
		pl := PeriodLeave{Request: req}
		if req.LeaveType.IsPaidDeductible() {
			ent, seen := entitlements[req.LeaveTypeID]
			if !seen {
				e, err := l.leaveRepo.GetEntitlement(ctx, employeeID, req.LeaveTypeID)
				switch {
				case err == nil:
					ent = &e
				case errors.Is(err, leave.ErrEntitlementNotFound):
					ent = nil
				default:
					return nil, fmt.Errorf("failed to load leave entitlement: %w", err)
				}
				entitlements[req.LeaveTypeID] = ent
			}
			pl.Entitlement = ent
		}
		leaves = append(leaves, pl)
	}
	return leaves, nil
}
