package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/pkg/database"
)

type terminationBenefitRepositoryImpl struct {
	db *database.DB
}

func NewTerminationBenefitRepository(db *database.DB) payroll.TerminationBenefitRepository {
	return &terminationBenefitRepositoryImpl{db: db}
}

const terminationBenefitSelect = `
	SELECT tb.id, tb.employee_id, tb.benefit_name, tb.given_amount, tb.status, tb.reviewed_by,
		   tb.reviewed_at, tb.rejection_reason, tb.paid_at, tb.paid_in_run_id, tb.created_at, tb.updated_at, e.full_name
	FROM employee_termination_benefits tb
	LEFT JOIN employees e ON e.id = tb.employee_id`

func scanTerminationBenefit(row pgx.Row) (payroll.TerminationBenefitInstance, error) {
	var b payroll.TerminationBenefitInstance
	err := row.Scan(
		&b.ID, &b.EmployeeID, &b.BenefitName, &b.GivenAmount, &b.Status, &b.ReviewedBy,
		&b.ReviewedAt, &b.RejectionReason, &b.PaidAt, &b.PaidInRunID, &b.CreatedAt, &b.UpdatedAt, &b.EmployeeName,
	)
	return b, err
}

func (r *terminationBenefitRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]payroll.TerminationBenefitInstance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list termination benefits: %w", err)
	}
	defer rows.Close()

	var benefits []payroll.TerminationBenefitInstance
	for rows.Next() {
		b, err := scanTerminationBenefit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan termination benefit: %w", err)
		}
		benefits = append(benefits, b)
	}
	return benefits, rows.Err()
}

func (r *terminationBenefitRepositoryImpl) ListPayableByEmployee(ctx context.Context, employeeID string) ([]payroll.TerminationBenefitInstance, error) {
	query := terminationBenefitSelect + `
		WHERE tb.employee_id = $1 AND tb.status = $2 AND tb.paid_at IS NULL
		ORDER BY tb.created_at ASC
	`
	return r.list(ctx, query, employeeID, payroll.InstanceStatusApproved)
}

func (r *terminationBenefitRepositoryImpl) List(ctx context.Context, filter payroll.InstanceFilter) ([]payroll.TerminationBenefitInstance, error) {
	query := terminationBenefitSelect + `
		WHERE tb.status = $1
		ORDER BY tb.created_at ASC
	`
	return r.list(ctx, query, filter.Status)
}

func (r *terminationBenefitRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.TerminationBenefitInstance, error) {
	q := GetQuerier(ctx, r.db)

	b, err := scanTerminationBenefit(q.QueryRow(ctx, terminationBenefitSelect+` WHERE tb.id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.TerminationBenefitInstance{}, payroll.ErrTerminationBenefitNotFound
		}
		return payroll.TerminationBenefitInstance{}, fmt.Errorf("failed to get termination benefit: %w", err)
	}
	return b, nil
}

func (r *terminationBenefitRepositoryImpl) UpdateReview(ctx context.Context, instance payroll.TerminationBenefitInstance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_termination_benefits
		SET status = $1, reviewed_by = $2, reviewed_at = $3, rejection_reason = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6
	`

	tag, err := q.Exec(ctx, query,
		instance.Status, instance.ReviewedBy, instance.ReviewedAt, instance.RejectionReason,
		instance.ID, payroll.InstanceStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to update termination benefit review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrInstanceAlreadyReviewed
	}
	return nil
}

func (r *terminationBenefitRepositoryImpl) MarkPaid(ctx context.Context, ids []string, runID string, paidAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_termination_benefits
		SET paid_at = $1, paid_in_run_id = $2, updated_at = NOW()
		WHERE id = ANY($3) AND paid_at IS NULL
	`

	if _, err := q.Exec(ctx, query, paidAt, runID, ids); err != nil {
		return fmt.Errorf("failed to mark termination benefits paid: %w", err)
	}
	return nil
}
