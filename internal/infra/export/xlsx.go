// Package export renders certificate result sets as spreadsheets.
package export

import (
	"fmt"
	"time"

	"certificados_dashboard/internal/domain/certificate"

	"github.com/xuri/excelize/v2"
)

// SheetName is the single sheet every export contains.
const SheetName = "Certificados"

const dateFormat = "yyyy-mm-dd"

// XLSX implements the report service's exporter.
type XLSX struct{}

func (XLSX) ToSpreadsheet(rs certificate.ResultSet) ([]byte, error) {
	return ToSpreadsheet(rs)
}

// ToSpreadsheet writes rs into an in-memory workbook: a header row with the
// column names, then one row per record in order. An empty set yields a
// header-only sheet.
func ToSpreadsheet(rs certificate.ResultSet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: stringPtr(dateFormat)})
	if err != nil {
		return nil, fmt.Errorf("failed to create date style: %w", err)
	}

	header := make([]any, len(rs.Columns))
	for i, c := range rs.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for n, rec := range rs.Records {
		row := n + 2
		values := make([]any, len(rec))
		for i, v := range rec {
			values[i] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}
		for i, v := range values {
			if _, ok := v.(time.Time); !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellStyle(SheetName, cell, cell, dateStyle); err != nil {
				return nil, fmt.Errorf("failed to style %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// cellValue maps driver values onto types excelize writes natively.
func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	default:
		return v
	}
}

func stringPtr(s string) *string { return &s }
