package payroll

import (
	"testing"
	"time"

	"github.com/onestaff/onestaff-os/internal/domain/attendance"
	"github.com/onestaff/onestaff-os/internal/domain/leave"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 0, 0, 0, 0, time.UTC)
}

// workedRecords returns n full-day records from the 1st of March.
func workedRecords(n int) []attendance.Record {
	records := make([]attendance.Record, 0, n)
	for d := 1; d <= n; d++ {
		records = append(records, attendance.Record{Date: day(time.March, d), WorkHoursInMinutes: 480})
	}
	return records
}

var (
	unpaidLeave = leave.LeaveType{ID: "lt-unpaid", Name: "Unpaid", Paid: false}
	annualLeave = leave.LeaveType{ID: "lt-annual", Name: "Annual", Paid: true, Deductible: true}
	sickLeave   = leave.LeaveType{ID: "lt-sick", Name: "Sick", Paid: true, Deductible: false}
)

func leaveRequest(t leave.LeaveType, from, to time.Time, days float64) leave.LeaveRequest {
	return leave.LeaveRequest{
		ID:           "lr-" + t.ID + from.Format("0102"),
		EmployeeID:   "emp-1",
		LeaveTypeID:  t.ID,
		StartDate:    from,
		EndDate:      to,
		DurationDays: days,
		Status:       leave.LeaveRequestStatusApproved,
		LeaveType:    t,
	}
}

func TestResolveAttendance_CountsWorkedAndAbsentDays(t *testing.T) {
	records := workedRecords(20)
	records = append(records,
		attendance.Record{Date: day(time.March, 21), WorkHoursInMinutes: 300, HasMissedPunch: true},
		attendance.Record{Date: day(time.March, 22)},
		attendance.Record{Date: day(time.April, 1), WorkHoursInMinutes: 480},
	)

	summary, err := ResolveAttendance(march2025, payroll.DefaultPolicy(), records, nil)
	require.NoError(t, err)

	assert.Equal(t, 22, summary.ExpectedWorkingDays)
	assert.Equal(t, 20, summary.ActualWorkingDays)
	assert.Equal(t, 2, summary.AbsentDays)
}

func TestResolveAttendance_OverworkIsNotNegativeAbsence(t *testing.T) {
	summary, err := ResolveAttendance(march2025, payroll.DefaultPolicy(), workedRecords(25), nil)
	require.NoError(t, err)

	assert.Equal(t, 25, summary.ActualWorkingDays)
	assert.Zero(t, summary.AbsentDays)
}

func TestResolveAttendance_LeaveDays(t *testing.T) {
	leaves := []PeriodLeave{
		{Request: leaveRequest(unpaidLeave, day(time.March, 24), day(time.March, 25), 2)},
		{Request: leaveRequest(sickLeave, day(time.March, 10), day(time.March, 12), 3)},
		{
			Request:     leaveRequest(annualLeave, day(time.March, 26), day(time.March, 28), 3),
			Entitlement: &leave.Entitlement{YearlyEntitlement: 10, Taken: 12},
		},
		{
			Request:     leaveRequest(annualLeave, day(time.March, 31), day(time.March, 31), 1),
			Entitlement: &leave.Entitlement{YearlyEntitlement: 10, Taken: 12},
		},
	}

	summary, err := ResolveAttendance(march2025, payroll.DefaultPolicy(), workedRecords(22), leaves)
	require.NoError(t, err)

	assert.Equal(t, 2.0, summary.UnpaidLeaveDays)
	// The exceeded balance of 2 is consumed by the first annual request only.
	assert.Equal(t, 2.0, summary.PaidLeaveExceededDays)
	assert.Equal(t, 4.0, summary.TotalUnpaidDays())
}

func TestResolveAttendance_ExceededLeaveDeductsDailyRate(t *testing.T) {
	leaves := []PeriodLeave{{
		Request:     leaveRequest(annualLeave, day(time.March, 3), day(time.March, 7), 5),
		Entitlement: &leave.Entitlement{YearlyEntitlement: 21, CarryForward: 1, Taken: 20, Pending: 4},
	}}

	summary, err := ResolveAttendance(march2025, payroll.DefaultPolicy(), workedRecords(22), leaves)
	require.NoError(t, err)
	assert.Equal(t, 2.0, summary.PaidLeaveExceededDays)

	detail := NewCalculator(payroll.DefaultPolicy()).Calculate(CalculationInput{
		Employee:   testEmployee("1", 2200),
		Period:     march2025,
		Attendance: summary,
	})
	// Daily rate is 2200 / 22.
	assert.True(t, detail.Breakdown.LeaveDeduction.Equal(dec("200")))
}

func TestResolveAttendance_LeaveOverlappingPeriodStart(t *testing.T) {
	leaves := []PeriodLeave{
		{Request: leaveRequest(unpaidLeave, day(time.February, 27), day(time.March, 2), 4)},
	}

	summary, err := ResolveAttendance(march2025, payroll.DefaultPolicy(), workedRecords(22), leaves)
	require.NoError(t, err)
	assert.Equal(t, 2.0, summary.UnpaidLeaveDays)
}

func TestResolveAttendance_HalfDayLeaveUsesDuration(t *testing.T) {
	leaves := []PeriodLeave{
		{Request: leaveRequest(unpaidLeave, day(time.March, 5), day(time.March, 5), 0.5)},
	}

	summary, err := ResolveAttendance(march2025, payroll.DefaultPolicy(), workedRecords(22), leaves)
	require.NoError(t, err)
	assert.Equal(t, 0.5, summary.UnpaidLeaveDays)
}

func TestResolveAttendance_MissingEntitlement(t *testing.T) {
	leaves := []PeriodLeave{
		{Request: leaveRequest(annualLeave, day(time.March, 3), day(time.March, 4), 2)},
	}

	_, err := ResolveAttendance(march2025, payroll.DefaultPolicy(), workedRecords(22), leaves)
	assert.ErrorIs(t, err, leave.ErrEntitlementNotFound)
}
