package formats

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Danh sách"

// XLSX writes an Excel workbook with one sheet: the title merged across the
// table, a styled header row and one row per document
var XLSX = &ExportFormat{
	Name:        "xlsx",
	Label:       "Excel",
	Extension:   ".xlsx",
	ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	Write:       writeXLSX,
}

func writeXLSX(w io.Writer, t *Table) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	cols := max(len(t.Headers), 1)
	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}

	// row 1: title
	if err := f.SetCellValue(xlsxSheet, "A1", t.Title); err != nil {
		return err
	}
	if cols > 1 {
		if err := f.MergeCell(xlsxSheet, "A1", lastCol+"1"); err != nil {
			return err
		}
	}
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", lastCol+"1", titleStyle); err != nil {
		return err
	}

	// row 2: generation date
	if err := f.SetCellValue(xlsxSheet, "A2", "Ngày xuất: "+t.GeneratedAt.Format("02/01/2006 15:04")); err != nil {
		return err
	}

	// row 3: headers
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    border,
	})
	if err != nil {
		return err
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		Border:    border,
	})
	if err != nil {
		return err
	}

	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A3", &header); err != nil {
		return err
	}
	if len(t.Headers) > 0 {
		if err := f.SetCellStyle(xlsxSheet, "A3", lastCol+"3", headerStyle); err != nil {
			return err
		}
	}

	widths := make([]int, cols)
	for i, h := range t.Headers {
		widths[i] = utf8.RuneCountInString(h)
	}

	for r, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+4)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = v
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(v))
			}
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return err
		}
	}
	if len(t.Rows) > 0 && len(t.Headers) > 0 {
		last, err := excelize.CoordinatesToCellName(cols, len(t.Rows)+3)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(xlsxSheet, "A4", last, cellStyle); err != nil {
			return err
		}
	}

	for i, width := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(xlsxSheet, name, name, float64(min(max(width+2, 6), 60))); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func init() {
	mustRegister(XLSX)
}
