// Package report renders distribution records as an XLSX workbook and
// family cards as QR code images.
package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/fair-rice-portal/internal/model"
)

const sheetName = "Distribution Report"

// Header lists the export columns in order.
var Header = []string{
	"Distribution Date",
	"Family Head",
	"Contact Number",
	"Village",
	"Members",
	"Entitlement (kg)",
	"Received (kg)",
	"Deficit (kg)",
}

var columnWidths = []float64{18, 24, 18, 20, 10, 18, 16, 14}

// FileName returns the download name for a report over the given period.
func FileName(year, month *int) string {
	switch {
	case year == nil:
		return "rice_report_all_time.xlsx"
	case month == nil:
		return fmt.Sprintf("rice_report_%d.xlsx", *year)
	default:
		return fmt.Sprintf("rice_report_%d_%d.xlsx", *year, *month)
	}
}

// Export writes rows to a single-sheet workbook and returns its bytes.
func Export(rows []model.DistributionRecordView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// A new workbook starts with a single "Sheet1".
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &Header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	for i, w := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, col, col, w); err != nil {
			return nil, err
		}
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{
			r.DistributionDate.String(),
			r.Family.HeadName,
			r.Family.ContactNumber,
			r.Family.VillageName,
			r.Family.NumMembers,
			r.EntitlementKg.InexactFloat64(),
			r.RiceReceivedKg.InexactFloat64(),
			r.DeficitKg.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
