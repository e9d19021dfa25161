package payroll

import (
	"fmt"
	"math"

	"github.com/onestaff/onestaff-os/internal/domain/attendance"
	"github.com/onestaff/onestaff-os/internal/domain/leave"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
)

// AttendanceSummary is the resolved attendance and leave position of one
// employee for one period.
type AttendanceSummary struct {
	ExpectedWorkingDays   int
	ActualWorkingDays     int
	AbsentDays            int
	UnpaidLeaveDays       float64
	PaidLeaveExceededDays float64
}

// TotalUnpaidDays is the number of leave days deducted from salary.
func (s AttendanceSummary) TotalUnpaidDays() float64 {
	return s.UnpaidLeaveDays + s.PaidLeaveExceededDays
}

// PeriodLeave is an approved leave request with the entitlement of its type.
// Entitlement is nil when the employee has none for that type.
type PeriodLeave struct {
	Request     leave.LeaveRequest
	Entitlement *leave.Entitlement
}

// ResolveAttendance derives working, absent and unpaid leave days for a period.
func ResolveAttendance(period payroll.Period, policy payroll.Policy, records []attendance.Record, leaves []PeriodLeave) (AttendanceSummary, error) {
	summary := AttendanceSummary{
		ExpectedWorkingDays: policy.ExpectedWorkingDays(period.DaysInMonth),
	}

	for _, r := range records {
		day := dateOf(r.Date)
		if day.Before(period.Start) || day.After(period.End) {
			continue
		}
		if r.CountsAsWorked() {
			summary.ActualWorkingDays++
		}
	}
	if absent := summary.ExpectedWorkingDays - summary.ActualWorkingDays; absent > 0 {
		summary.AbsentDays = absent
	}

	// Remaining exceeded balance per leave type, consumed across requests.
	remaining := make(map[string]float64)

	for _, l := range leaves {
		req := l.Request
		if req.Status != leave.LeaveRequestStatusApproved {
			continue
		}

		days := daysInPeriod(req, period)
		if days <= 0 {
			continue
		}

		switch {
		case req.LeaveType.IsUnpaid():
			summary.UnpaidLeaveDays += days

		case req.LeaveType.IsPaidDeductible():
			if l.Entitlement == nil {
				return AttendanceSummary{}, fmt.Errorf("%w: employee %s, leave type %s",
					leave.ErrEntitlementNotFound, req.EmployeeID, req.LeaveTypeID)
			}
			left, seen := remaining[req.LeaveTypeID]
			if !seen {
				left = l.Entitlement.Exceeded()
			}
			attributed := math.Min(days, left)
			remaining[req.LeaveTypeID] = left - attributed
			summary.PaidLeaveExceededDays += attributed
		}
	}

	return summary, nil
}

// daysInPeriod is the inclusive overlap of the request with the period, capped
// by the request's own duration.
func daysInPeriod(req leave.LeaveRequest, period payroll.Period) float64 {
	from := dateOf(req.StartDate)
	if from.Before(period.Start) {
		from = period.Start
	}
	to := dateOf(req.EndDate)
	if to.After(period.End) {
		to = period.End
	}

	days := float64(inclusiveDays(from, to))
	if req.DurationDays > 0 && days > req.DurationDays {
		days = req.DurationDays
	}
	return days
}
