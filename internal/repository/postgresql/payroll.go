package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/pkg/database"
	"github.com/onestaff/onestaff-os/internal/pkg/validator"
)

type runRepositoryImpl struct {
	db *database.DB
}

func NewRunRepository(db *database.DB) payroll.RunRepository {
	return &runRepositoryImpl{db: db}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const runColumns = `
	id, run_code, payroll_period, entity, employee_count, exception_count, total_net_pay,
	status, payment_status, payroll_specialist_id, payroll_manager_id, finance_staff_id,
	manager_approved_at, finance_approved_at, rejected_by, rejected_at, rejection_reason,
	locked_at, unlocked_at, unlock_reason, config_snapshot, policy, created_at, updated_at`

func scanRun(row pgx.Row) (payroll.Run, error) {
	var (
		run          payroll.Run
		snapshotJSON []byte
		policyJSON   []byte
	)
	err := row.Scan(
		&run.ID, &run.RunCode, &run.PayrollPeriod, &run.Entity, &run.EmployeeCount, &run.ExceptionCount, &run.TotalNetPay,
		&run.Status, &run.PaymentStatus, &run.PayrollSpecialistID, &run.PayrollManagerID, &run.FinanceStaffID,
		&run.ManagerApprovedAt, &run.FinanceApprovedAt, &run.RejectedBy, &run.RejectedAt, &run.RejectionReason,
		&run.LockedAt, &run.UnlockedAt, &run.UnlockReason, &snapshotJSON, &policyJSON, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return payroll.Run{}, err
	}

	if len(snapshotJSON) > 0 {
		if err := json.Unmarshal(snapshotJSON, &run.ConfigSnapshot); err != nil {
			return payroll.Run{}, fmt.Errorf("failed to decode config snapshot: %w", err)
		}
	}
	if len(policyJSON) > 0 {
		if err := json.Unmarshal(policyJSON, &run.Policy); err != nil {
			return payroll.Run{}, fmt.Errorf("failed to decode policy: %w", err)
		}
	}
	return run, nil
}

// ========== RUNS ==========

func (r *runRepositoryImpl) NextRunSequence(ctx context.Context, year int) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_run_sequences (year, last_value)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = payroll_run_sequences.last_value + 1
		RETURNING last_value
	`

	var seq int
	if err := q.QueryRow(ctx, query, year).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to allocate run sequence: %w", err)
	}
	return seq, nil
}

func (r *runRepositoryImpl) CreateRun(ctx context.Context, run payroll.Run) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	snapshotJSON, err := json.Marshal(run.ConfigSnapshot)
	if err != nil {
		return payroll.Run{}, fmt.Errorf("failed to encode config snapshot: %w", err)
	}
	policyJSON, err := json.Marshal(run.Policy)
	if err != nil {
		return payroll.Run{}, fmt.Errorf("failed to encode policy: %w", err)
	}

	query := `
		INSERT INTO payroll_runs (
			id, run_code, payroll_period, entity, employee_count, exception_count, total_net_pay,
			status, payment_status, payroll_specialist_id, config_snapshot, policy
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + runColumns

	created, err := scanRun(q.QueryRow(ctx, query,
		run.RunCode, run.PayrollPeriod, run.Entity, run.EmployeeCount, run.ExceptionCount, run.TotalNetPay,
		run.Status, run.PaymentStatus, run.PayrollSpecialistID, snapshotJSON, policyJSON,
	))
	if err != nil {
		if isUniqueViolation(err, "uk_payroll_runs_run_code") {
			return payroll.Run{}, payroll.ErrRunCodeConflict
		}
		return payroll.Run{}, fmt.Errorf("failed to create payroll run: %w", err)
	}
	return created, nil
}

func (r *runRepositoryImpl) GetRunByID(ctx context.Context, id string) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE id = $1`

	run, err := scanRun(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Run{}, payroll.ErrRunNotFound
		}
		return payroll.Run{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	return run, nil
}

func (r *runRepositoryImpl) ListRuns(ctx context.Context, filter payroll.RunFilter) ([]payroll.Run, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := sq.And{}
	if filter.Status != nil {
		where = append(where, sq.Eq{"status": strings.ToLower(*filter.Status)})
	}
	if filter.Entity != nil {
		where = append(where, sq.Eq{"entity": *filter.Entity})
	}
	if filter.Period != nil {
		period, err := validator.ParsePeriod(*filter.Period)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to parse period filter: %w", err)
		}
		where = append(where, sq.Eq{"payroll_period": period})
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("payroll_runs").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll runs: %w", err)
	}

	listQuery, listArgs, err := psql.Select(runColumns).
		From("payroll_runs").
		Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64((filter.Page - 1) * filter.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := q.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return runs, total, nil
}

func (r *runRepositoryImpl) UpdateRunStatus(ctx context.Context, run payroll.Run, expected payroll.RunStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs SET
			status = $1,
			payment_status = $2,
			payroll_manager_id = $3,
			finance_staff_id = $4,
			manager_approved_at = $5,
			finance_approved_at = $6,
			rejected_by = $7,
			rejected_at = $8,
			rejection_reason = $9,
			locked_at = $10,
			unlocked_at = $11,
			unlock_reason = $12,
			updated_at = NOW()
		WHERE id = $13 AND status = $14
	`

	tag, err := q.Exec(ctx, query,
		run.Status, run.PaymentStatus, run.PayrollManagerID, run.FinanceStaffID,
		run.ManagerApprovedAt, run.FinanceApprovedAt, run.RejectedBy, run.RejectedAt, run.RejectionReason,
		run.LockedAt, run.UnlockedAt, run.UnlockReason,
		run.ID, expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll run status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: run %s requires status %s", payroll.ErrInvalidTransition, run.RunCode, expected)
	}
	return nil
}

// ========== DETAILS ==========

func (r *runRepositoryImpl) CreateDetails(ctx context.Context, details []payroll.EmployeeDetail) error {
	if len(details) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_run_details (
			id, run_id, employee_id, base_salary, allowances_total, bonus_total, benefit_total,
			gross_salary, deductions_total, net_salary, net_pay, bank_status, exceptions, breakdown
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	batch := &pgx.Batch{}
	for _, d := range details {
		exceptionsJSON, err := json.Marshal(d.Exceptions)
		if err != nil {
			return fmt.Errorf("failed to encode exceptions: %w", err)
		}
		breakdownJSON, err := json.Marshal(d.Breakdown)
		if err != nil {
			return fmt.Errorf("failed to encode breakdown: %w", err)
		}
		batch.Queue(query,
			d.RunID, d.EmployeeID, d.BaseSalary, d.AllowancesTotal, d.BonusTotal, d.BenefitTotal,
			d.GrossSalary, d.DeductionsTotal, d.NetSalary, d.NetPay, d.BankStatus, exceptionsJSON, breakdownJSON,
		)
	}

	br := q.SendBatch(ctx, batch)
	defer br.Close()

	for range details {
		if _, err := br.Exec(); err != nil {
			if isUniqueViolation(err, "uk_payroll_run_details_run_employee") {
				return payroll.ErrDetailAlreadyExist
			}
			return fmt.Errorf("failed to create payroll run detail: %w", err)
		}
	}
	return nil
}

func (r *runRepositoryImpl) ListDetailsByRunID(ctx context.Context, runID string) ([]payroll.EmployeeDetail, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d.id, d.run_id, d.employee_id, d.base_salary, d.allowances_total, d.bonus_total, d.benefit_total,
			   d.gross_salary, d.deductions_total, d.net_salary, d.net_pay, d.bank_status, d.exceptions, d.breakdown,
			   d.created_at, e.employee_code, e.full_name, e.bank_name, e.bank_account_number
		FROM payroll_run_details d
		LEFT JOIN employees e ON e.id = d.employee_id
		WHERE d.run_id = $1
		ORDER BY e.employee_code ASC
	`

	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll run details: %w", err)
	}
	defer rows.Close()

	var details []payroll.EmployeeDetail
	for rows.Next() {
		var (
			d              payroll.EmployeeDetail
			exceptionsJSON []byte
			breakdownJSON  []byte
		)
		err := rows.Scan(
			&d.ID, &d.RunID, &d.EmployeeID, &d.BaseSalary, &d.AllowancesTotal, &d.BonusTotal, &d.BenefitTotal,
			&d.GrossSalary, &d.DeductionsTotal, &d.NetSalary, &d.NetPay, &d.BankStatus, &exceptionsJSON, &breakdownJSON,
			&d.CreatedAt, &d.EmployeeCode, &d.EmployeeName, &d.BankName, &d.BankAccountNumber,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll run detail: %w", err)
		}
		if len(exceptionsJSON) > 0 {
			if err := json.Unmarshal(exceptionsJSON, &d.Exceptions); err != nil {
				return nil, fmt.Errorf("failed to decode exceptions: %w", err)
			}
		}
		if len(breakdownJSON) > 0 {
			if err := json.Unmarshal(breakdownJSON, &d.Breakdown); err != nil {
				return nil, fmt.Errorf("failed to decode breakdown: %w", err)
			}
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
