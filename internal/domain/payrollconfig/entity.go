package payrollconfig

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConfigStatus is the approval state of a configuration row. Only approved
// rows are visible to payroll.
type ConfigStatus string

const (
	ConfigStatusDraft    ConfigStatus = "draft"
	ConfigStatusApproved ConfigStatus = "approved"
	ConfigStatusRejected ConfigStatus = "rejected"
)

type Allowance struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Status ConfigStatus    `json:"status"`
}

type TaxRule struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Rate        decimal.Decimal `json:"rate"`
	Status      ConfigStatus    `json:"status"`
}

type InsuranceBracket struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	MinSalary    decimal.Decimal `json:"min_salary"`
	MaxSalary    decimal.Decimal `json:"max_salary"`
	EmployeeRate decimal.Decimal `json:"employee_rate"`
	EmployerRate decimal.Decimal `json:"employer_rate"`
	Status       ConfigStatus    `json:"status"`
}

// Contains reports whether salary lies in [MinSalary, MaxSalary].
func (b InsuranceBracket) Contains(salary decimal.Decimal) bool {
	return salary.GreaterThanOrEqual(b.MinSalary) && salary.LessThanOrEqual(b.MaxSalary)
}

// SigningBonus is the configured bonus attached to a position's contract.
type SigningBonus struct {
	ID           string
	PositionName string
	Amount       decimal.Decimal
	Status       ConfigStatus
}

func (b SigningBonus) IsApproved() bool {
	return b.Status == ConfigStatusApproved
}

// Snapshot is the approved configuration as read at run creation. It is
// persisted on the run so later stages never consult live configuration.
type Snapshot struct {
	Allowances        []Allowance        `json:"allowances"`
	TaxRules          []TaxRule          `json:"tax_rules"`
	InsuranceBrackets []InsuranceBracket `json:"insurance_brackets"`
	LoadedAt          time.Time          `json:"loaded_at"`
}

// AllowanceTotal sums every approved allowance. Allowances are a global pool.
func (s Snapshot) AllowanceTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Allowances {
		total = total.Add(a.Amount)
	}
	return total
}
