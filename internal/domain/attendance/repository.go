package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// ListByEmployeeBetween returns records whose date falls in [from, to].
	ListByEmployeeBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)
}
