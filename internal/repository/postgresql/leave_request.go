package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/onestaff/onestaff-os/internal/domain/leave"
	"github.com/onestaff/onestaff-os/internal/pkg/database"
)

type leaveRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) leave.LeaveRepository {
	return &leaveRepositoryImpl{db: db}
}

func (r *leaveRepositoryImpl) ListApprovedOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lr.id, lr.employee_id, lr.leave_type_id, lr.start_date, lr.end_date, lr.duration_days, lr.status,
			   lt.id, lt.name, lt.paid, lt.deductible
		FROM leave_requests lr
		INNER JOIN leave_types lt ON lt.id = lr.leave_type_id
		WHERE lr.employee_id = $1
		  AND lr.status = $2
		  AND lr.start_date <= $4
		  AND lr.end_date >= $3
		ORDER BY lr.start_date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, leave.LeaveRequestStatusApproved, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var lr leave.LeaveRequest
		err := rows.Scan(
			&lr.ID, &lr.EmployeeID, &lr.LeaveTypeID, &lr.StartDate, &lr.EndDate, &lr.DurationDays, &lr.Status,
			&lr.LeaveType.ID, &lr.LeaveType.Name, &lr.LeaveType.Paid, &lr.LeaveType.Deductible,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}

func (r *leaveRepositoryImpl) GetEntitlement(ctx context.Context, employeeID, leaveTypeID string) (leave.Entitlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, leave_type_id, yearly_entitlement, carry_forward, taken, pending
		FROM leave_entitlements
		WHERE employee_id = $1 AND leave_type_id = $2
	`

	var e leave.Entitlement
	err := q.QueryRow(ctx, query, employeeID, leaveTypeID).Scan(
		&e.ID, &e.EmployeeID, &e.LeaveTypeID, &e.YearlyEntitlement, &e.CarryForward, &e.Taken, &e.Pending,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Entitlement{}, leave.ErrEntitlementNotFound
		}
		return leave.Entitlement{}, fmt.Errorf("failed to get leave entitlement: %w", err)
	}
	return e, nil
}
