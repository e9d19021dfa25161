package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/onestaff/onestaff-os/internal/domain/payrollconfig"
	"github.com/onestaff/onestaff-os/internal/pkg/database"
)

type configRepositoryImpl struct {
	db *database.DB
}

func NewConfigRepository(db *database.DB) payrollconfig.ConfigRepository {
	return &configRepositoryImpl{db: db}
}

func (r *configRepositoryImpl) ListApprovedAllowances(ctx context.Context) ([]payrollconfig.Allowance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, amount, status
		FROM allowances
		WHERE status = $1
		ORDER BY created_at ASC
	`

	rows, err := q.Query(ctx, query, payrollconfig.ConfigStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to list allowances: %w", err)
	}
	defer rows.Close()

	var allowances []payrollconfig.Allowance
	for rows.Next() {
		var a payrollconfig.Allowance
		if err := rows.Scan(&a.ID, &a.Name, &a.Amount, &a.Status); err != nil {
			return nil, fmt.Errorf("failed to scan allowance: %w", err)
		}
		allowances = append(allowances, a)
	}
	return allowances, rows.Err()
}

func (r *configRepositoryImpl) ListApprovedTaxRules(ctx context.Context) ([]payrollconfig.TaxRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, description, rate, status
		FROM tax_rules
		WHERE status = $1
		ORDER BY created_at ASC
	`

	rows, err := q.Query(ctx, query, payrollconfig.ConfigStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax rules: %w", err)
	}
	defer rows.Close()

	var rules []payrollconfig.TaxRule
	for rows.Next() {
		var t payrollconfig.TaxRule
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Rate, &t.Status); err != nil {
			return nil, fmt.Errorf("failed to scan tax rule: %w", err)
		}
		rules = append(rules, t)
	}
	return rules, rows.Err()
}

func (r *configRepositoryImpl) ListApprovedInsuranceBrackets(ctx context.Context) ([]payrollconfig.InsuranceBracket, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, min_salary, max_salary, employee_rate, employer_rate, status
		FROM insurance_brackets
		WHERE status = $1
		ORDER BY min_salary ASC, created_at ASC
	`

	rows, err := q.Query(ctx, query, payrollconfig.ConfigStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to list insurance brackets: %w", err)
	}
	defer rows.Close()

	var brackets []payrollconfig.InsuranceBracket
	for rows.Next() {
		var b payrollconfig.InsuranceBracket
		err := rows.Scan(&b.ID, &b.Name, &b.MinSalary, &b.MaxSalary, &b.EmployeeRate, &b.EmployerRate, &b.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to scan insurance bracket: %w", err)
		}
		brackets = append(brackets, b)
	}
	return brackets, rows.Err()
}

func (r *configRepositoryImpl) GetSigningBonusByID(ctx context.Context, id string) (payrollconfig.SigningBonus, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, position_name, amount, status
		FROM signing_bonuses
		WHERE id = $1
	`

	var b payrollconfig.SigningBonus
	err := q.QueryRow(ctx, query, id).Scan(&b.ID, &b.PositionName, &b.Amount, &b.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payrollconfig.SigningBonus{}, payrollconfig.ErrSigningBonusNotFound
		}
		return payrollconfig.SigningBonus{}, fmt.Errorf("failed to get signing bonus: %w", err)
	}
	return b, nil
}
