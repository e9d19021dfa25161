package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/pkg/database"
)

type payslipRepositoryImpl struct {
	db *database.DB
}

func NewPayslipRepository(db *database.DB) payroll.PayslipRepository {
	return &payslipRepositoryImpl{db: db}
}

const payslipSelect = `
	SELECT p.id, p.run_id, p.employee_id, p.earnings, p.deductions, p.total_gross_salary,
		   p.total_deductions, p.net_pay, p.payment_status, p.document_path, p.created_at, p.updated_at,
		   r.run_code, r.payroll_period, e.employee_code, e.full_name
	FROM payslips p
	INNER JOIN payroll_runs r ON r.id = p.run_id
	LEFT JOIN employees e ON e.id = p.employee_id`

func scanPayslip(row pgx.Row) (payroll.Payslip, error) {
	var (
		p              payroll.Payslip
		earningsJSON   []byte
		deductionsJSON []byte
	)
	err := row.Scan(
		&p.ID, &p.RunID, &p.EmployeeID, &earningsJSON, &deductionsJSON, &p.TotalGrossSalary,
		&p.TotalDeductions, &p.NetPay, &p.PaymentStatus, &p.DocumentPath, &p.CreatedAt, &p.UpdatedAt,
		&p.RunCode, &p.PayrollPeriod, &p.EmployeeCode, &p.EmployeeName,
	)
	if err != nil {
		return payroll.Payslip{}, err
	}
	if err := json.Unmarshal(earningsJSON, &p.Earnings); err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to decode earnings: %w", err)
	}
	if err := json.Unmarshal(deductionsJSON, &p.Deductions); err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to decode deductions: %w", err)
	}
	return p, nil
}

func (r *payslipRepositoryImpl) CountByRunID(ctx context.Context, runID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payslips WHERE run_id = $1`, runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count payslips: %w", err)
	}
	return count, nil
}

func (r *payslipRepositoryImpl) Create(ctx context.Context, payslip payroll.Payslip) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	earningsJSON, err := json.Marshal(payslip.Earnings)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to encode earnings: %w", err)
	}
	deductionsJSON, err := json.Marshal(payslip.Deductions)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to encode deductions: %w", err)
	}

	query := `
		INSERT INTO payslips (
			id, run_id, employee_id, earnings, deductions, total_gross_salary,
			total_deductions, net_pay, payment_status
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	created := payslip
	err = q.QueryRow(ctx, query,
		payslip.RunID, payslip.EmployeeID, earningsJSON, deductionsJSON, payslip.TotalGrossSalary,
		payslip.TotalDeductions, payslip.NetPay, payslip.PaymentStatus,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uk_payslips_run_employee") {
			return payroll.Payslip{}, payroll.ErrPayslipsAlreadyGenerated
		}
		return payroll.Payslip{}, fmt.Errorf("failed to create payslip: %w", err)
	}
	return created, nil
}

func (r *payslipRepositoryImpl) UpdateDocumentPath(ctx context.Context, id string, path string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE payslips SET document_path = $1, updated_at = NOW() WHERE id = $2`, path, id)
	if err != nil {
		return fmt.Errorf("failed to update payslip document path: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayslipNotFound
	}
	return nil
}

func (r *payslipRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPayslip(q.QueryRow(ctx, payslipSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}
	return p, nil
}

func (r *payslipRepositoryImpl) ListByRunID(ctx context.Context, runID string) ([]payroll.Payslip, error) {
	return r.list(ctx, payslipSelect+` WHERE p.run_id = $1 ORDER BY e.employee_code ASC`, runID)
}

func (r *payslipRepositoryImpl) ListByEmployeeID(ctx context.Context, employeeID string) ([]payroll.Payslip, error) {
	return r.list(ctx, payslipSelect+` WHERE p.employee_id = $1 ORDER BY r.payroll_period DESC`, employeeID)
}

func (r *payslipRepositoryImpl) list(ctx context.Context, query string, arg string) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var payslips []payroll.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		payslips = append(payslips, p)
	}
	return payslips, rows.Err()
}
