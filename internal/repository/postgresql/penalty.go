package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/pkg/database"
)

type penaltyRepositoryImpl struct {
	db *database.DB
}

func NewPenaltyRepository(db *database.DB) payroll.PenaltyRepository {
	return &penaltyRepositoryImpl{db: db}
}

func (r *penaltyRepositoryImpl) ListOutstandingByEmployee(ctx context.Context, employeeID string) ([]payroll.Penalty, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, reason, amount, applied_at, applied_in_run_id
		FROM employee_penalties
		WHERE employee_id = $1 AND applied_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list penalties: %w", err)
	}
	defer rows.Close()

	var penalties []payroll.Penalty
	for rows.Next() {
		var p payroll.Penalty
		if err := rows.Scan(&p.ID, &p.EmployeeID, &p.Reason, &p.Amount, &p.AppliedAt, &p.AppliedInRunID); err != nil {
			return nil, fmt.Errorf("failed to scan penalty: %w", err)
		}
		penalties = append(penalties, p)
	}
	return penalties, rows.Err()
}

func (r *penaltyRepositoryImpl) MarkApplied(ctx context.Context, ids []string, runID string, appliedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_penalties
		SET applied_at = $1, applied_in_run_id = $2
		WHERE id = ANY($3) AND applied_at IS NULL
	`

	if _, err := q.Exec(ctx, query, appliedAt, runID, ids); err != nil {
		return fmt.Errorf("failed to mark penalties applied: %w", err)
	}
	return nil
}
