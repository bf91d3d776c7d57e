package parser

import (
	"fmt"
	"io"

	"github.com/farxc/odca-monitor/internal/catalog"
	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/xuri/excelize/v2"
)

// ParseNominations decodes a monthly nomination sheet. Each non-empty row is a
// day; each catalog nomination column is one company/oil type volume.
func ParseNominations(r io.Reader, filename string, layout NominationLayout, cat *catalog.Catalog) (Result[types.NominationRecord], error) {
	var result Result[types.NominationRecord]

	period, err := NominationPeriodFromFilename(filename)
	if err != nil {
		return result, err
	}
	result.Period = period

	f, err := excelize.OpenReader(r)
	if err != nil {
		return result, fmt.Errorf("failed to open workbook %s: %w", filename, err)
	}
	defer f.Close()

	sheet := sheetName(f, layout.Sheet)
	columns := cat.NominationColumns
	index := make(map[recordKey]int)

	for row := layout.SkipRows + 1; row <= layout.SkipRows+layout.RowCount; row++ {
		rawDate, err := rawCell(f, sheet, layout.DateColumn, row)
		if err != nil {
			return result, err
		}
		raws := make([]string, len(columns))
		empty := rawDate == ""
		for i, col := range columns {
			if raws[i], err = rawCell(f, sheet, col.Column, row); err != nil {
				return result, err
			}
			if raws[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}

		date, ok := parseDateCell(rawDate)
		if !ok {
			return result, fmt.Errorf("%w: %s!%s%d holds %q", ErrInvalidReportDate, sheet, layout.DateColumn, row, rawDate)
		}
		if !period.Contains(date) {
			result.Skipped++
			continue
		}

		for i, col := range columns {
			volume, err := parseVolume(raws[i])
			if err != nil {
				return result, fmt.Errorf("%s!%s%d: %w", sheet, col.Column, row, err)
			}
			co, _ := cat.Company(col.Company)
			oil, _ := cat.OilType(col.OilType)
			rec := types.NominationRecord{
				Date:    date,
				Company: co.Name,
				OilType: oil.Name,
				Volume:  volume,
			}
			// a repeated day overwrites the earlier row
			key := recordKey{company: rec.Company, operation: rec.Date.Format(types.DateLayout), field: rec.OilType}
			if i, dup := index[key]; dup {
				result.Records[i] = rec
				continue
			}
			index[key] = len(result.Records)
			result.Records = append(result.Records, rec)
		}
	}

	return result, nil
}
