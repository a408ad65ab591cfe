package report

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"shipscan/internal/formatter"
)

// Sheet names of the exported workbook.
const (
	SheetNulls        = "Nulls"
	SheetCountryPairs = "Countries"
	SheetRoutes       = "Routes"
	SheetAverageFOB   = "AverageFOB"
)

// WriteXLSX saves the report as a workbook with one sheet per section.
// Numeric columns are written as numbers.
func (r *Report) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name  string
		table formatter.Table
	}{
		{SheetNulls, r.NullTable()},
		{SheetCountryPairs, r.CountryPairsTable()},
		{SheetRoutes, r.RoutesTable()},
		{SheetAverageFOB, r.AverageFOBTable()},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}

		if err := writeSheet(f, s.name, s.table); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	return nil
}

func writeSheet(f *excelize.File, sheet string, t formatter.Table) error {
	rows := append([][]string{t.Header}, t.Rows...)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
			if i > 0 && j < len(t.Align) && t.Align[j] == formatter.AlignRight {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					values[j] = n
				}
			}
		}

		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	return nil
}
