package payroll

import "strings"

type ExceptionKind string

const (
	ExceptionMissingBankAccount ExceptionKind = "missing_bank_account"
	ExceptionMissingPayGrade    ExceptionKind = "missing_pay_grade"
	ExceptionProration          ExceptionKind = "proration"
	ExceptionAbsenceDeduction   ExceptionKind = "absence_deduction"
	ExceptionLeaveDeduction     ExceptionKind = "leave_deduction"
	ExceptionNegativeNetPay     ExceptionKind = "negative_net_pay"
	ExceptionSalarySpike        ExceptionKind = "salary_spike"
)

// Exception is a data-quality annotation on a detail. It never blocks a run.
type Exception struct {
	Kind    ExceptionKind     `json:"kind"`
	Message string            `json:"message"`
	Params  map[string]string `json:"params,omitempty"`
}

type Exceptions []Exception

// Narrative joins the messages with "; ". It is nil when there is nothing to report.
func (e Exceptions) Narrative() *string {
	if len(e) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(e))
	for _, ex := range e {
		msgs = append(msgs, ex.Message)
	}
	text := strings.Join(msgs, "; ")
	return &text
}

func (e Exceptions) Has(kind ExceptionKind) bool {
	for _, ex := range e {
		if ex.Kind == kind {
			return true
		}
	}
	return false
}
