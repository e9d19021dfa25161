package employee

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the payroll-relevant projection of an employee profile. The
// profile itself is owned by the employee module; payroll only reads it.
type Employee struct {
	ID                string
	EmployeeCode      string
	FullName          string
	Status            EmploymentStatus
	HireDate          time.Time
	PayGradeID        *string
	BankName          *string
	BankAccountNumber *string

	// Joined from pay_grades
	PayGrade *PayGrade
}

// HasBankDetails reports whether both account number and bank name are present.
func (e Employee) HasBankDetails() bool {
	return e.BankName != nil && strings.TrimSpace(*e.BankName) != "" &&
		e.BankAccountNumber != nil && strings.TrimSpace(*e.BankAccountNumber) != ""
}

type PayGrade struct {
	ID         string
	Name       string
	BaseSalary decimal.Decimal
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusOnLeave    EmploymentStatus = "on_leave"
	EmploymentStatusSuspended  EmploymentStatus = "suspended"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// Contract is a signed employment contract, read for signing-bonus reconciliation.
type Contract struct {
	ID             string
	EmployeeID     string
	SigningBonusID *string
	SignedAt       *time.Time
}

// IsSigned reports whether the contract has been countersigned.
func (c Contract) IsSigned() bool {
	return c.SignedAt != nil
}
