package leave

import (
	"time"
)

type LeaveType struct {
	ID   string
	Name string
	// Paid leave keeps full salary; unpaid leave is deducted day for day.
	Paid bool
	// Deductible paid leave consumes the entitlement balance.
	Deductible bool
}

// IsUnpaid reports whether every day of this leave type is unpaid.
func (t LeaveType) IsUnpaid() bool {
	return !t.Paid
}

// IsPaidDeductible reports whether days count against the entitlement balance.
func (t LeaveType) IsPaidDeductible() bool {
	return t.Paid && t.Deductible
}

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending   LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved  LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected  LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled LeaveRequestStatus = "cancelled"
)

type LeaveRequest struct {
	ID           string
	EmployeeID   string
	LeaveTypeID  string
	StartDate    time.Time
	EndDate      time.Time
	DurationDays float64
	Status       LeaveRequestStatus

	LeaveType LeaveType
}

// Entitlement is an employee's balance counters for one leave type.
type Entitlement struct {
	ID                string
	EmployeeID        string
	LeaveTypeID       string
	YearlyEntitlement float64
	CarryForward      float64
	Taken             float64
	Pending           float64
}

// Exceeded returns how many taken+pending days exceed the total entitlement.
func (e Entitlement) Exceeded() float64 {
	exceeded := (e.Taken + e.Pending) - (e.YearlyEntitlement + e.CarryForward)
	if exceeded < 0 {
		return 0
	}
	return exceeded
}
