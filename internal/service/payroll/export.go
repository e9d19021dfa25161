package payroll

import (
	"context"
	"fmt"

	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/pkg/export"
	"github.com/onestaff/onestaff-os/internal/pkg/validator"
)

// bankTransferRow is one line of the bank transfer file.
type bankTransferRow struct {
	EmployeeCode      string `csv:"employee_code"`
	EmployeeName      string `csv:"employee_name"`
	BankName          string `csv:"bank_name"`
	BankAccountNumber string `csv:"bank_account_number"`
	NetPay            string `csv:"net_pay"`
	BankStatus        string `csv:"bank_status"`
}

var supportedExportFormats = []string{string(payroll.ExportFormatXLSX), string(payroll.ExportFormatCSV)}

func (s *RunServiceImpl) ExportRun(ctx context.Context, runID string, format payroll.ExportFormat) (payroll.ExportFile, error) {
	if !validator.IsInSlice(string(format), supportedExportFormats) {
		return payroll.ExportFile{}, fmt.Errorf("%w: %q", payroll.ErrUnsupportedExportFormat, format)
	}
	if err := validateID(runID); err != nil {
		return payroll.ExportFile{}, err
	}

	run, err := s.repos.Runs.GetRunByID(ctx, runID)
	if err != nil {
		return payroll.ExportFile{}, err
	}
	details, err := s.repos.Runs.ListDetailsByRunID(ctx, runID)
	if err != nil {
		return payroll.ExportFile{}, err
	}

	if format == payroll.ExportFormatCSV {
		content, err := export.WriteCSV(bankTransferRows(details))
		if err != nil {
			return payroll.ExportFile{}, err
		}
		return payroll.ExportFile{
			Filename:    fmt.Sprintf("%s_bank_transfer.csv", run.RunCode),
			ContentType: export.ContentTypeCSV,
			Content:     content,
		}, nil
	}

	content, err := export.WriteWorkbook(summarySheet(run), detailSheet(details))
	if err != nil {
		return payroll.ExportFile{}, err
	}
	return payroll.ExportFile{
		Filename:    fmt.Sprintf("%s.xlsx", run.RunCode),
		ContentType: export.ContentTypeXLSX,
		Content:     content,
	}, nil
}

func bankTransferRows(details []payroll.EmployeeDetail) []bankTransferRow {
	rows := make([]bankTransferRow, 0, len(details))
	for _, d := range details {
		rows = append(rows, bankTransferRow{
			EmployeeCode:      deref(d.EmployeeCode),
			EmployeeName:      deref(d.EmployeeName),
			BankName:          deref(d.BankName),
			BankAccountNumber: deref(d.BankAccountNumber),
			NetPay:            d.NetPay.StringFixed(2),
			BankStatus:        string(d.BankStatus),
		})
	}
	return rows
}

func summarySheet(run payroll.Run) export.Sheet {
	return export.Sheet{
		Name:   "Summary",
		Header: []string{"Field", "Value"},
		Rows: [][]interface{}{
			{"Run code", run.RunCode},
			{"Payroll period", run.PayrollPeriod.Format("2006-01")},
			{"Entity", run.Entity},
			{"Status", string(run.Status)},
			{"Payment status", string(run.PaymentStatus)},
			{"Employees", run.EmployeeCount},
			{"Exceptions", run.ExceptionCount},
			{"Total net pay", run.TotalNetPay.StringFixed(2)},
			{"Policy version", run.Policy.Version},
		},
		Widths: map[int]float64{0: 18, 1: 24},
	}
}

func detailSheet(details []payroll.EmployeeDetail) export.Sheet {
	sheet := export.Sheet{
		Name: "Details",
		Header: []string{
			"Employee Code", "Employee Name", "Base Salary", "Allowances", "Bonuses", "Benefits",
			"Gross Salary", "Deductions", "Net Salary", "Net Pay", "Bank Status", "Exceptions",
		},
		Widths: map[int]float64{0: 14, 1: 24, 11: 60},
	}
	for _, d := range details {
		sheet.Rows = append(sheet.Rows, []interface{}{
			deref(d.EmployeeCode),
			deref(d.EmployeeName),
			d.BaseSalary.StringFixed(2),
			d.AllowancesTotal.StringFixed(2),
			d.BonusTotal.StringFixed(2),
			d.BenefitTotal.StringFixed(2),
			d.GrossSalary.StringFixed(2),
			d.DeductionsTotal.StringFixed(2),
			d.NetSalary.StringFixed(2),
			d.NetPay.StringFixed(2),
			string(d.BankStatus),
			deref(d.Exceptions.Narrative()),
		})
	}
	return sheet
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
