package leave

import (
	"context"
	"time"
)

type LeaveRepository interface {
	// ListApprovedOverlapping returns approved requests of the employee that
	// intersect [from, to], each with its leave type populated.
	ListApprovedOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]LeaveRequest, error)
	GetEntitlement(ctx context.Context, employeeID, leaveTypeID string) (Entitlement, error)
}
