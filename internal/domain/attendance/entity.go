package attendance

import (
	"time"
)

type Record struct {
	ID                 string
	EmployeeID         string
	Date               time.Time
	ClockIn            *time.Time
	ClockOut           *time.Time
	WorkHoursInMinutes int
	HasMissedPunch     bool
}

// CountsAsWorked reports whether the record proves a worked day: positive
// worked minutes and no missing punch.
func (r Record) CountsAsWorked() bool {
	return r.WorkHoursInMinutes > 0 && !r.HasMissedPunch
}
