package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/xuri/excelize/v2"
)

// Result is what a parser extracts from one workbook.
type Result[T any] struct {
	Records []T
	Period  types.Period
	// Skipped counts rows that carried data but could not be placed: field rows
	// before any company/operation label, or nominations dated outside the period.
	Skipped int
}

func sheetName(f *excelize.File, preferred string) string {
	if preferred != "" {
		return preferred
	}
	return f.GetSheetName(f.GetActiveSheetIndex())
}

func rawCell(f *excelize.File, sheet, column string, row int) (string, error) {
	cell, err := excelize.JoinCellName(column, row)
	if err != nil {
		return "", err
	}
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", fmt.Errorf("failed to read %s!%s: %w", sheet, cell, err)
	}
	return strings.TrimSpace(v), nil
}

// parseVolume reads a barrel figure; blank cells count as zero.
func parseVolume(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("not a volume: %q", raw)
	}
	return v, nil
}

// parseDateCell accepts an Excel serial date or one of the textual layouts.
func parseDateCell(raw string) (time.Time, bool) {
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return ParseDate(raw)
}
