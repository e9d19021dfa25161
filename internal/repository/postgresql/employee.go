package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/onestaff/onestaff-os/internal/domain/employee"
	"github.com/onestaff/onestaff-os/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	e.id, e.employee_code, e.full_name, e.employment_status, e.hire_date,
	e.pay_grade_id, e.bank_name, e.bank_account_number,
	pg.id, pg.name, pg.base_salary`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var (
		emp       employee.Employee
		gradeID   *string
		gradeName *string
		gradeBase decimal.NullDecimal
	)
	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.Status, &emp.HireDate,
		&emp.PayGradeID, &emp.BankName, &emp.BankAccountNumber,
		&gradeID, &gradeName, &gradeBase,
	)
	if err != nil {
		return employee.Employee{}, err
	}

	if gradeID != nil && gradeBase.Valid {
		emp.PayGrade = &employee.PayGrade{ID: *gradeID, BaseSalary: gradeBase.Decimal}
		if gradeName != nil {
			emp.PayGrade.Name = *gradeName
		}
	}
	return emp, nil
}

func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		LEFT JOIN pay_grades pg ON pg.id = e.pay_grade_id
		WHERE e.id = $1 AND e.deleted_at IS NULL
	`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

func (r *employeeRepositoryImpl) GetActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		LEFT JOIN pay_grades pg ON pg.id = e.pay_grade_id
		WHERE e.employment_status = $1 AND e.deleted_at IS NULL
		ORDER BY e.employee_code ASC
	`

	rows, err := q.Query(ctx, query, employee.EmploymentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (r *employeeRepositoryImpl) GetSignedContractsWithSigningBonus(ctx context.Context) ([]employee.Contract, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, signing_bonus_id, signed_at
		FROM employment_contracts
		WHERE signed_at IS NOT NULL AND signing_bonus_id IS NOT NULL
		ORDER BY signed_at ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list signed contracts: %w", err)
	}
	defer rows.Close()

	var contracts []employee.Contract
	for rows.Next() {
		var c employee.Contract
		if err := rows.Scan(&c.ID, &c.EmployeeID, &c.SigningBonusID, &c.SignedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}
