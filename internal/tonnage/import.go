package tonnage

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"hvacquote/internal"
)

// ReadCSV loads a tonnage key from a CSV with capacity_code and tons
// columns. The code column is kept verbatim as text so zero-padded
// codes survive the round trip.
func ReadCSV(path string) ([]internal.TonnageCode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("tonnage key %s has no data rows", path)
	}

	codeIdx, tonsIdx, err := keyColumns(records[0])
	if err != nil {
		return nil, fmt.Errorf("tonnage key %s: %w", path, err)
	}

	return rowsToCodes(records[1:], codeIdx, tonsIdx)
}

// ReadXLSX loads a tonnage key from the first sheet of a workbook,
// same column rules as ReadCSV.
func ReadXLSX(path string) ([]internal.TonnageCode, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("tonnage key %s has no data rows", path)
	}

	codeIdx, tonsIdx, err := keyColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("tonnage key %s: %w", path, err)
	}

	return rowsToCodes(rows[1:], codeIdx, tonsIdx)
}

func keyColumns(header []string) (codeIdx, tonsIdx int, err error) {
	codeIdx, tonsIdx = -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "capacity_code", "capacity code", "code":
			codeIdx = i
		case "tons", "tonnage":
			tonsIdx = i
		}
	}
	if codeIdx < 0 || tonsIdx < 0 {
		return 0, 0, fmt.Errorf("missing capacity_code/tons columns")
	}
	return codeIdx, tonsIdx, nil
}

func rowsToCodes(rows [][]string, codeIdx, tonsIdx int) ([]internal.TonnageCode, error) {
	out := make([]internal.TonnageCode, 0, len(rows))
	for _, row := range rows {
		if codeIdx >= len(row) || tonsIdx >= len(row) {
			continue
		}
		code := strings.TrimSpace(row[codeIdx])
		if code == "" {
			continue
		}
		tons, err := strconv.ParseFloat(strings.TrimSpace(row[tonsIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad tons value %q for code %q", row[tonsIdx], code)
		}
		out = append(out, internal.TonnageCode{Code: code, Tons: tons})
	}
	return out, nil
}
