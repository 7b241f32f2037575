package pipeline

import (
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"hvacquote/internal"
)

// ExportQuoteRowsToXLSX writes the persisted quote lines of one
// request to a spreadsheet, with a summary block recomputed from the
// lines so the sheet always matches what was stored.
func ExportQuoteRowsToXLSX(rows []internal.QuoteLineRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"line_no", "model", "family", "quantity",
		"tons", "tier", "unit_price", "line_total",
		"status", "reason",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	grand := decimal.Zero
	pricedUnits := 0
	totalUnits := 0

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.Position)
		set(2, row.Model)
		set(3, row.Family)
		set(4, row.Quantity)
		set(5, derefFloat(row.Tons))
		set(6, derefString(row.Tier))
		set(7, derefString(row.UnitPrice))
		set(8, derefString(row.LineTotal))
		set(9, string(row.Status))
		set(10, derefString(row.Reason))

		totalUnits += row.Quantity
		if row.Status == internal.LinePriced {
			pricedUnits += row.Quantity
			if row.LineTotal != nil {
				if lineTotal, err := decimal.NewFromString(*row.LineTotal); err == nil {
					grand = grand.Add(lineTotal)
				}
			}
		}
	}

	summaryRow := len(rows) + 3
	summary := [][2]any{
		{"grand_total", grand.String()},
		{"priced_units_count", pricedUnits},
		{"total_units_count", totalUnits},
	}
	for i, pair := range summary {
		keyCell, _ := excelize.CoordinatesToCellName(1, summaryRow+i)
		valCell, _ := excelize.CoordinatesToCellName(2, summaryRow+i)
		_ = f.SetCellValue(sheet, keyCell, pair[0])
		_ = f.SetCellValue(sheet, valCell, pair[1])
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
