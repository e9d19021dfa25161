package document

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// PayslipRenderer draws payslips as single-page A4 PDFs.
type PayslipRenderer struct {
	company  string
	currency string
}

func NewPayslipRenderer(company, currency string) *PayslipRenderer {
	return &PayslipRenderer{company: company, currency: currency}
}

// Filename is the archive name of a payslip document.
func Filename(p payroll.Payslip) string {
	code := p.EmployeeID
	if p.EmployeeCode != nil {
		code = *p.EmployeeCode
	}
	run := p.RunID
	if p.RunCode != nil {
		run = *p.RunCode
	}
	return fmt.Sprintf("payslip_%s_%s.pdf", run, code)
}

func (r *PayslipRenderer) Render(p payroll.Payslip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslip", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, r.company)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	if p.EmployeeName != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Employee: %s", *p.EmployeeName))
		pdf.Ln(6)
	}
	if p.EmployeeCode != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Employee code: %s", *p.EmployeeCode))
		pdf.Ln(6)
	}
	if p.PayrollPeriod != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Period: %s", p.PayrollPeriod.Format("January 2006")))
		pdf.Ln(6)
	}
	if p.RunCode != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Run: %s", *p.RunCode))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	r.section(pdf, "Earnings")
	r.line(pdf, "Base salary", p.Earnings.BaseSalary)
	r.items(pdf, p.Earnings.Allowances)
	r.items(pdf, p.Earnings.Bonuses)
	r.items(pdf, p.Earnings.Benefits)
	r.items(pdf, p.Earnings.Refunds)
	r.total(pdf, "Gross salary", p.TotalGrossSalary)

	r.section(pdf, "Deductions")
	for _, t := range p.Deductions.Taxes {
		r.line(pdf, fmt.Sprintf("%s (%s%%)", t.Name, t.Rate.String()), t.Amount)
	}
	for _, ins := range p.Deductions.Insurance {
		r.line(pdf, fmt.Sprintf("%s (%s%%)", ins.Name, ins.EmployeeRate.String()), ins.Amount)
	}
	r.items(pdf, p.Deductions.Penalties)
	if p.Deductions.AttendanceDeduction.IsPositive() {
		r.line(pdf, "Absence", p.Deductions.AttendanceDeduction)
	}
	if p.Deductions.LeaveDeduction.IsPositive() {
		r.line(pdf, "Unpaid leave", p.Deductions.LeaveDeduction)
	}
	r.total(pdf, "Total deductions", p.TotalDeductions)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 8, "Net pay", "T", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, r.money(p.NetPay), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render payslip: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PayslipRenderer) section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(180, 7, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

func (r *PayslipRenderer) line(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	pdf.CellFormat(120, 6, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(60, 6, r.money(amount), "", 1, "R", false, 0, "")
}

func (r *PayslipRenderer) items(pdf *gofpdf.Fpdf, items []payroll.LineItem) {
	for _, it := range items {
		r.line(pdf, it.Name, it.Amount)
	}
}

func (r *PayslipRenderer) total(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	pdf.SetFont("Helvetica", "B", 10)
	r.line(pdf, label, amount)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Ln(3)
}

func (r *PayslipRenderer) money(d decimal.Decimal) string {
	return fmt.Sprintf("%s %s", d.StringFixed(2), r.currency)
}
