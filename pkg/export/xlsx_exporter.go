package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct {
	sheet string
}

// NewXLSXExporter constructs an exporter writing to the named sheet.
func NewXLSXExporter(sheet string) *XLSXExporter {
	if sheet == "" {
		sheet = defaultSheet
	}
	return &XLSXExporter{sheet: sheet}
}

// Sheet returns the worksheet name used for output.
func (e *XLSXExporter) Sheet() string {
	return e.sheet
}

// Render writes headers on the first row and one row per record.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if e.sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, e.sheet); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}

	headers := append([]string(nil), data.Headers...)
	if err := f.SetSheetRow(e.sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("write xlsx headers: %w", err)
	}
	for i, record := range data.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("xlsx cell: %w", err)
		}
		row := record
		if err := f.SetSheetRow(e.sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write xlsx row: %w", err)
		}
	}
	if err := f.SetColWidth(e.sheet, "A", "A", 30); err != nil {
		return nil, fmt.Errorf("xlsx column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
