package payroll

import (
	"fmt"
	"time"

	"github.com/onestaff/onestaff-os/internal/domain/employee"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/domain/payrollconfig"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculationInput is everything the calculator needs for one employee and period.
type CalculationInput struct {
	Employee            employee.Employee
	Period              payroll.Period
	Snapshot            payrollconfig.Snapshot
	SigningBonuses      []payroll.SigningBonusInstance
	TerminationBenefits []payroll.TerminationBenefitInstance
	Penalties           []payroll.Penalty
	Attendance          AttendanceSummary
}

// Calculator computes one employee's payroll detail. It performs no I/O.
type Calculator struct {
	policy payroll.Policy
}

func NewCalculator(policy payroll.Policy) *Calculator {
	return &Calculator{policy: policy}
}

func (c *Calculator) Policy() payroll.Policy {
	return c.policy
}

// Calculate returns the detail for in. RunID and ID are left for the caller.
func (c *Calculator) Calculate(in CalculationInput) payroll.EmployeeDetail {
	var exceptions payroll.Exceptions
	emp := in.Employee

	detail := payroll.EmployeeDetail{
		EmployeeID:        emp.ID,
		EmployeeCode:      &emp.EmployeeCode,
		EmployeeName:      &emp.FullName,
		BankName:          emp.BankName,
		BankAccountNumber: emp.BankAccountNumber,
	}

	// Bank details
	detail.BankStatus = payroll.BankStatusValid
	if !emp.HasBankDetails() {
		detail.BankStatus = payroll.BankStatusMissing
		exceptions = append(exceptions, payroll.Exception{
			Kind:    payroll.ExceptionMissingBankAccount,
			Message: "Missing bank account details",
		})
	}

	// Base salary
	gradeBase := decimal.Zero
	if emp.PayGrade != nil {
		gradeBase = emp.PayGrade.BaseSalary
	} else {
		exceptions = append(exceptions, payroll.Exception{
			Kind:    payroll.ExceptionMissingPayGrade,
			Message: "Missing pay grade assignment",
		})
	}
	baseSalary := gradeBase

	// Proration for mid-period hires
	workedDays := in.Period.DaysInMonth
	hired := dateOf(emp.HireDate)
	if hired.After(in.Period.Start) {
		workedDays = inclusiveDays(hired, in.Period.End)
		if workedDays > in.Period.DaysInMonth {
			workedDays = in.Period.DaysInMonth
		}
		baseSalary = roundMoney(gradeBase.
			Mul(decimal.NewFromInt(int64(workedDays))).
			Div(decimal.NewFromInt(int64(in.Period.DaysInMonth))))
		exceptions = append(exceptions, payroll.Exception{
			Kind:    payroll.ExceptionProration,
			Message: fmt.Sprintf("Prorated salary: %d/%d days worked", workedDays, in.Period.DaysInMonth),
			Params: map[string]string{
				"worked_days":   fmt.Sprint(workedDays),
				"days_in_month": fmt.Sprint(in.Period.DaysInMonth),
			},
		})
	}

	breakdown := payroll.Breakdown{
		Allowances:            []payroll.LineItem{},
		Bonuses:               []payroll.LineItem{},
		Benefits:              []payroll.LineItem{},
		Penalties:             []payroll.LineItem{},
		Taxes:                 []payroll.AppliedTax{},
		AttendanceDeduction:   decimal.Zero,
		LeaveDeduction:        decimal.Zero,
		WorkedDays:            workedDays,
		DaysInMonth:           in.Period.DaysInMonth,
		ExpectedWorkingDays:   in.Attendance.ExpectedWorkingDays,
		ActualWorkingDays:     in.Attendance.ActualWorkingDays,
		AbsentDays:            in.Attendance.AbsentDays,
		UnpaidLeaveDays:       in.Attendance.UnpaidLeaveDays,
		PaidLeaveExceededDays: in.Attendance.PaidLeaveExceededDays,
	}

	// Earnings
	allowances := decimal.Zero
	for _, a := range in.Snapshot.Allowances {
		allowances = allowances.Add(a.Amount)
		breakdown.Allowances = append(breakdown.Allowances, payroll.LineItem{ID: a.ID, Name: a.Name, Amount: a.Amount})
	}

	bonuses := decimal.Zero
	for _, b := range in.SigningBonuses {
		if b.Status != payroll.InstanceStatusApproved || b.PaidAt != nil {
			continue
		}
		bonuses = bonuses.Add(b.GivenAmount)
		breakdown.Bonuses = append(breakdown.Bonuses, payroll.LineItem{ID: b.ID, Name: "Signing bonus", Amount: b.GivenAmount})
	}

	benefits := decimal.Zero
	for _, b := range in.TerminationBenefits {
		if b.Status != payroll.InstanceStatusApproved {
			continue
		}
		benefits = benefits.Add(b.GivenAmount)
		breakdown.Benefits = append(breakdown.Benefits, payroll.LineItem{ID: b.ID, Name: b.BenefitName, Amount: b.GivenAmount})
	}

	gross := baseSalary.Add(allowances).Add(bonuses).Add(benefits)

	// Deductions
	deductions := decimal.Zero

	breakdown.Taxes = MatchTaxRules(c.policy, in.Snapshot.TaxRules, gross)
	for _, t := range breakdown.Taxes {
		deductions = deductions.Add(t.Amount)
	}

	breakdown.Insurance = MatchInsurance(in.Snapshot.InsuranceBrackets, gross)
	if breakdown.Insurance != nil {
		deductions = deductions.Add(breakdown.Insurance.Amount)
	}

	for _, p := range in.Penalties {
		deductions = deductions.Add(p.Amount)
		breakdown.Penalties = append(breakdown.Penalties, payroll.LineItem{ID: p.ID, Name: p.Reason, Amount: p.Amount})
	}

	expected := in.Attendance.ExpectedWorkingDays
	if expected > 0 {
		dailyRate := baseSalary.Div(decimal.NewFromInt(int64(expected)))

		if absent := in.Attendance.AbsentDays; absent > 0 {
			amount := roundMoney(dailyRate.Mul(decimal.NewFromInt(int64(absent))))
			breakdown.AttendanceDeduction = amount
			deductions = deductions.Add(amount)
			exceptions = append(exceptions, payroll.Exception{
				Kind:    payroll.ExceptionAbsenceDeduction,
				Message: fmt.Sprintf("Absent %d day(s): deducted %s", absent, amount.StringFixed(2)),
				Params: map[string]string{
					"absent_days": fmt.Sprint(absent),
					"amount":      amount.StringFixed(2),
				},
			})
		}

		if unpaid := in.Attendance.TotalUnpaidDays(); unpaid > 0 {
			amount := roundMoney(dailyRate.Mul(decimal.NewFromFloat(unpaid)))
			breakdown.LeaveDeduction = amount
			deductions = deductions.Add(amount)
			exceptions = append(exceptions, leaveException(in.Attendance, amount))
		}
	}

	net := gross.Sub(deductions)
	netPay := net
	if net.IsNegative() {
		netPay = decimal.Zero
		exceptions = append(exceptions, payroll.Exception{
			Kind:    payroll.ExceptionNegativeNetPay,
			Message: fmt.Sprintf("Negative net pay %s clamped to 0", net.StringFixed(2)),
			Params:  map[string]string{"net_salary": net.StringFixed(2)},
		})
	}

	if emp.PayGrade != nil && gross.GreaterThan(gradeBase.Mul(c.policy.SpikeMultiplier)) {
		exceptions = append(exceptions, payroll.Exception{
			Kind:    payroll.ExceptionSalarySpike,
			Message: "Sudden salary spike detected",
			Params: map[string]string{
				"gross_salary": gross.StringFixed(2),
				"base_salary":  gradeBase.StringFixed(2),
			},
		})
	}

	detail.BaseSalary = baseSalary
	detail.AllowancesTotal = allowances
	detail.BonusTotal = bonuses
	detail.BenefitTotal = benefits
	detail.GrossSalary = gross
	detail.DeductionsTotal = deductions
	detail.NetSalary = net
	detail.NetPay = netPay
	detail.Exceptions = exceptions
	detail.Breakdown = breakdown
	return detail
}

// MatchTaxRules applies the first bracket rule containing the annualized gross
// and, above the policy threshold, the solidarity rule.
func MatchTaxRules(policy payroll.Policy, rules []payrollconfig.TaxRule, gross decimal.Decimal) []payroll.AppliedTax {
	applied := []payroll.AppliedTax{}
	annual := gross.Mul(decimal.NewFromInt(int64(policy.AnnualizationFactor)))

	bracketMatched, solidarityMatched := false, false
	for _, rule := range rules {
		if policy.IsSolidarityRule(rule.Name) {
			if solidarityMatched || !annual.GreaterThan(policy.SolidarityThreshold) {
				continue
			}
			solidarityMatched = true
			applied = append(applied, applyTax(rule, gross))
			continue
		}
		if bracketMatched {
			continue
		}
		bracket, ok := policy.BracketFor(rule.Name)
		if !ok || !bracket.Contains(annual) {
			continue
		}
		bracketMatched = true
		applied = append(applied, applyTax(rule, gross))
	}
	return applied
}

// MatchInsurance returns the first bracket containing the monthly gross, or nil.
func MatchInsurance(brackets []payrollconfig.InsuranceBracket, gross decimal.Decimal) *payroll.AppliedInsurance {
	for _, b := range brackets {
		if !b.Contains(gross) {
			continue
		}
		return &payroll.AppliedInsurance{
			BracketID:    b.ID,
			Name:         b.Name,
			EmployeeRate: b.EmployeeRate,
			EmployerRate: b.EmployerRate,
			Amount:       roundMoney(gross.Mul(b.EmployeeRate).Div(hundred)),
		}
	}
	return nil
}

func applyTax(rule payrollconfig.TaxRule, gross decimal.Decimal) payroll.AppliedTax {
	return payroll.AppliedTax{
		RuleID: rule.ID,
		Name:   rule.Name,
		Rate:   rule.Rate,
		Amount: roundMoney(gross.Mul(rule.Rate).Div(hundred)),
	}
}

func leaveException(a AttendanceSummary, amount decimal.Decimal) payroll.Exception {
	unpaid := decimal.NewFromFloat(a.UnpaidLeaveDays).String()
	exceeded := decimal.NewFromFloat(a.PaidLeaveExceededDays).String()

	var reason string
	switch {
	case a.UnpaidLeaveDays > 0 && a.PaidLeaveExceededDays > 0:
		reason = fmt.Sprintf("%s unpaid leave day(s) and %s exceeded paid leave day(s)", unpaid, exceeded)
	case a.UnpaidLeaveDays > 0:
		reason = fmt.Sprintf("%s unpaid leave day(s)", unpaid)
	default:
		reason = fmt.Sprintf("%s exceeded paid leave day(s)", exceeded)
	}

	return payroll.Exception{
		Kind:    payroll.ExceptionLeaveDeduction,
		Message: fmt.Sprintf("Leave deduction %s for %s", amount.StringFixed(2), reason),
		Params: map[string]string{
			"unpaid_leave_days":        unpaid,
			"paid_leave_exceeded_days": exceeded,
			"amount":                   amount.StringFixed(2),
		},
	}
}

func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// inclusiveDays counts calendar days in [from, to]. It is 0 when to is before from.
func inclusiveDays(from, to time.Time) int {
	from, to = dateOf(from), dateOf(to)
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}
