package service

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"idservices-admin/internal/domains/statistics/model"
)

const maxSheetName = 31

// BuildWorkbook writes a report to an XLSX file: bold header row, data from
// row 2, header columns frozen.
func BuildWorkbook(report *model.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := sheetNameFor(report.Title)
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	// Row 1: header
	for colIdx, header := range report.Headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	if len(report.Headers) > 0 {
		headerStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
		})
		if err == nil {
			last, _ := excelize.CoordinatesToCellName(len(report.Headers), 1)
			_ = f.SetCellStyle(sheetName, "A1", last, headerStyle)
		}
		_ = f.SetPanes(sheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}

	// Data rows from row 2
	for i, row := range report.Rows {
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		values := row
		if err := f.SetSheetRow(sheetName, start, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f, nil
}

// Encode renders the report in the requested format.
func Encode(report *model.Report, format model.Format) ([]byte, error) {
	if format == model.FormatCSV {
		return encodeCSV(report)
	}

	f, err := BuildWorkbook(report)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeCSV(report *model.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(report.Headers); err != nil {
		return nil, err
	}
	for _, row := range report.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			if v != nil {
				record[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// Sheet names are limited to 31 characters and may not contain []:*?/\
func sheetNameFor(title string) string {
	name := make([]rune, 0, len(title))
	for _, r := range title {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			r = '-'
		}
		name = append(name, r)
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	if len(name) == 0 {
		return "Statistics"
	}
	return string(name)
}
