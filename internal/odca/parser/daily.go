package parser

import (
	"fmt"
	"io"

	"github.com/farxc/odca-monitor/internal/catalog"
	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/xuri/excelize/v2"
)

type recordKey struct {
	company, operation, field string
}

// ParseDaily decodes a daily station report. The report date comes from the
// file name; labels in the label column switch the current company and
// operation, and every field label emits one record.
func ParseDaily(r io.Reader, filename string, layout DailyLayout, cat *catalog.Catalog) (Result[types.ProductionRecord], error) {
	var result Result[types.ProductionRecord]

	date, err := ReportDateFromFilename(filename)
	if err != nil {
		return result, err
	}
	result.Period = types.Day(date)

	f, err := excelize.OpenReader(r)
	if err != nil {
		return result, fmt.Errorf("failed to open workbook %s: %w", filename, err)
	}
	defer f.Close()

	sheet := sheetName(f, layout.Sheet)
	index := make(map[recordKey]int)
	var company, operation string

	for row := layout.SkipRows + 1; row <= layout.SkipRows+layout.RowCount; row++ {
		label, err := rawCell(f, sheet, layout.LabelColumn, row)
		if err != nil {
			return result, err
		}
		if label == "" {
			continue
		}
		if co, ok := cat.Company(label); ok {
			company = co.Name
			continue
		}
		if op, ok := cat.Operation(label); ok {
			operation = op.Name
			continue
		}
		field, ok := cat.Field(label)
		if !ok {
			continue
		}
		if company == "" || operation == "" {
			result.Skipped++
			continue
		}

		rec := types.ProductionRecord{
			Date:      result.Period.Start,
			Company:   company,
			Operation: operation,
			Field:     field.Name,
		}
		volumes := []struct {
			column string
			dst    *float64
		}{
			{layout.GOVColumn, &rec.GOV},
			{layout.GSVColumn, &rec.GSV},
			{layout.NSVColumn, &rec.NSV},
		}
		for _, v := range volumes {
			raw, err := rawCell(f, sheet, v.column, row)
			if err != nil {
				return result, err
			}
			if *v.dst, err = parseVolume(raw); err != nil {
				return result, fmt.Errorf("%s!%s%d: %w", sheet, v.column, row, err)
			}
		}

		key := recordKey{rec.Company, rec.Operation, rec.Field}
		if i, dup := index[key]; dup {
			result.Records[i] = rec
			continue
		}
		index[key] = len(result.Records)
		result.Records = append(result.Records, rec)
	}

	return result, nil
}
