package export

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)

var ErrNoSheets = errors.New("workbook needs at least one sheet")

// Sheet is one worksheet: a bold header row followed by data rows.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]interface{}
	// Widths sets column widths by zero-based column index.
	Widths map[int]float64
}

// WriteWorkbook renders the sheets, in order, into an XLSX file.
func WriteWorkbook(sheets ...Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sheet := range sheets {
		idx, err := f.NewSheet(sheet.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheet %q: %w", sheet.Name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}

		for col, title := range sheet.Header {
			if err := f.SetCellValue(sheet.Name, cell(col, 1), title); err != nil {
				return nil, err
			}
		}
		if len(sheet.Header) > 0 {
			if err := f.SetCellStyle(sheet.Name, cell(0, 1), cell(len(sheet.Header)-1, 1), headerStyle); err != nil {
				return nil, err
			}
		}

		for r, row := range sheet.Rows {
			for col, value := range row {
				if err := f.SetCellValue(sheet.Name, cell(col, r+2), value); err != nil {
					return nil, err
				}
			}
		}

		for col, width := range sheet.Widths {
			name := colName(col)
			if err := f.SetColWidth(sheet.Name, name, name, width); err != nil {
				return nil, err
			}
		}
	}

	if sheets[0].Name != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCSV marshals a slice of structs carrying csv tags, header included.
func WriteCSV(rows interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
