package postgresql

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/pkg/database"
)

type signingBonusRepositoryImpl struct {
	db *database.DB
}

func NewSigningBonusRepository(db *database.DB) payroll.SigningBonusRepository {
	return &signingBonusRepositoryImpl{db: db}
}

const signingBonusColumns = `
	sb.id, sb.employee_id, sb.signing_bonus_id, sb.given_amount, sb.status, sb.reviewed_by,
	sb.reviewed_at, sb.rejection_reason, sb.paid_at, sb.paid_in_run_id, sb.created_at, sb.updated_at,
	e.full_name`

func scanSigningBonus(row pgx.Row) (payroll.SigningBonusInstance, error) {
	var b payroll.SigningBonusInstance
	err := row.Scan(
		&b.ID, &b.EmployeeID, &b.SigningBonusID, &b.GivenAmount, &b.Status, &b.ReviewedBy,
		&b.ReviewedAt, &b.RejectionReason, &b.PaidAt, &b.PaidInRunID, &b.CreatedAt, &b.UpdatedAt,
		&b.EmployeeName,
	)
	return b, err
}

func (r *signingBonusRepositoryImpl) query(ctx context.Context, where sq.Sqlizer) ([]payroll.SigningBonusInstance, error) {
	q := GetQuerier(ctx, r.db)

	query, args, err := psql.Select(signingBonusColumns).
		From("employee_signing_bonuses sb").
		LeftJoin("employees e ON e.id = sb.employee_id").
		Where(where).
		OrderBy("sb.created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build signing bonus query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list signing bonuses: %w", err)
	}
	defer rows.Close()

	var bonuses []payroll.SigningBonusInstance
	for rows.Next() {
		b, err := scanSigningBonus(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signing bonus: %w", err)
		}
		bonuses = append(bonuses, b)
	}
	return bonuses, rows.Err()
}

func (r *signingBonusRepositoryImpl) ListPayableByEmployee(ctx context.Context, employeeID string) ([]payroll.SigningBonusInstance, error) {
	return r.query(ctx, sq.And{
		sq.Eq{"sb.employee_id": employeeID},
		sq.Eq{"sb.status": payroll.InstanceStatusApproved},
		sq.Eq{"sb.paid_at": nil},
	})
}

func (r *signingBonusRepositoryImpl) List(ctx context.Context, filter payroll.InstanceFilter) ([]payroll.SigningBonusInstance, error) {
	return r.query(ctx, sq.Eq{"sb.status": filter.Status})
}

func (r *signingBonusRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.SigningBonusInstance, error) {
	bonuses, err := r.query(ctx, sq.Eq{"sb.id": id})
	if err != nil {
		return payroll.SigningBonusInstance{}, err
	}
	if len(bonuses) == 0 {
		return payroll.SigningBonusInstance{}, payroll.ErrSigningBonusInstanceNotFound
	}
	return bonuses[0], nil
}

func (r *signingBonusRepositoryImpl) GetByEmployeeAndBonus(ctx context.Context, employeeID, signingBonusID string) (payroll.SigningBonusInstance, error) {
	bonuses, err := r.query(ctx, sq.Eq{"sb.employee_id": employeeID, "sb.signing_bonus_id": signingBonusID})
	if err != nil {
		return payroll.SigningBonusInstance{}, err
	}
	if len(bonuses) == 0 {
		return payroll.SigningBonusInstance{}, payroll.ErrSigningBonusInstanceNotFound
	}
	return bonuses[0], nil
}

func (r *signingBonusRepositoryImpl) Create(ctx context.Context, instance payroll.SigningBonusInstance) (payroll.SigningBonusInstance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee_signing_bonuses (
			id, employee_id, signing_bonus_id, given_amount, status, reviewed_by, reviewed_at
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	created := instance
	err := q.QueryRow(ctx, query,
		instance.EmployeeID, instance.SigningBonusID, instance.GivenAmount, instance.Status,
		instance.ReviewedBy, instance.ReviewedAt,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return payroll.SigningBonusInstance{}, fmt.Errorf("failed to create signing bonus: %w", err)
	}
	return created, nil
}

func (r *signingBonusRepositoryImpl) UpdateReview(ctx context.Context, instance payroll.SigningBonusInstance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_signing_bonuses
		SET status = $1, reviewed_by = $2, reviewed_at = $3, rejection_reason = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6
	`

	tag, err := q.Exec(ctx, query,
		instance.Status, instance.ReviewedBy, instance.ReviewedAt, instance.RejectionReason,
		instance.ID, payroll.InstanceStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to update signing bonus review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrInstanceAlreadyReviewed
	}
	return nil
}

func (r *signingBonusRepositoryImpl) MarkPaid(ctx context.Context, ids []string, runID string, paidAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_signing_bonuses
		SET paid_at = $1, paid_in_run_id = $2, updated_at = NOW()
		WHERE id = ANY($3) AND paid_at IS NULL
	`

	if _, err := q.Exec(ctx, query, paidAt, runID, ids); err != nil {
		return fmt.Errorf("failed to mark signing bonuses paid: %w", err)
	}
	return nil
}
