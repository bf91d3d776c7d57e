package report

import (
	"fmt"

	"github.com/farxc/odca-monitor/internal/catalog"
	"github.com/farxc/odca-monitor/internal/odca/aggregate"
	"github.com/farxc/odca-monitor/internal/odca/parser"
	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/xuri/excelize/v2"
)

const (
	actSheet    = "ACTA"
	actFirstRow = 8
	// label column F, values J..L, styled through P
	actLabelCol = 6
	actValueCol = 10
	actLastCol  = 16
)

var actHeader = []string{"CAMPO", "GOV (bls)", "GSV (bls)", "NSV (bls)", "API @60ºF", "S&W/Lab", "% Azufre", "VISC 30 °C. /cSt"}

// ActName is the file name of the monthly act.
func ActName(m aggregate.Month) string {
	return fmt.Sprintf("ACTA ODCA_%s-%d.xlsx", parser.Months[m.Month-1], m.Year)
}

// MonthlyAct writes the monthly accumulation per operation and company. Rows
// 1-7 stay free for the station letterhead.
func MonthlyAct(cat *catalog.Catalog, records []types.ProductionRecord, month aggregate.Month, style Style) (*excelize.File, error) {
	style = style.withDefaults()
	period := month.Period()

	usedOps := make(map[string]bool)
	usedCos := make(map[string]bool)
	for _, r := range records {
		if !period.Contains(r.Date) {
			continue
		}
		op, ok := cat.Operation(r.Operation)
		if !ok {
			return nil, &UnknownCategoryError{Kind: "operation", Name: r.Operation}
		}
		co, ok := cat.Company(r.Company)
		if !ok {
			return nil, &UnknownCategoryError{Kind: "company", Name: r.Company}
		}
		usedOps[op.Name] = true
		usedCos[co.Name] = true
	}

	f := excelize.NewFile()
	if err := writeAct(f, cat, records, month, style, usedOps, usedCos); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeAct(f *excelize.File, cat *catalog.Catalog, records []types.ProductionRecord, month aggregate.Month, style Style, usedOps, usedCos map[string]bool) error {
	if err := f.SetSheetName("Sheet1", actSheet); err != nil {
		return err
	}
	w := &actWriter{f: f, row: actFirstRow}
	var err error
	if w.titleStyle, err = headerStyle(f, style, false); err != nil {
		return err
	}
	if w.bodyStyle, err = bodyStyle(f, style, false); err != nil {
		return err
	}

	for _, op := range cat.Operations {
		if !usedOps[op.Name] {
			continue
		}
		if err := w.title(op.Display); err != nil {
			return err
		}
		for _, co := range cat.Companies {
			if !usedCos[co.Name] {
				continue
			}
			if err := w.title(co.Display); err != nil {
				return err
			}
			if err := w.header(); err != nil {
				return err
			}
			for _, fv := range aggregate.MonthlyAccumulation(records, month, op.Name, co.Name) {
				if err := w.values(fv); err != nil {
					return err
				}
			}
			w.row++
		}
	}
	return nil
}

type actWriter struct {
	f          *excelize.File
	row        int
	titleStyle int
	bodyStyle  int
}

func (w *actWriter) title(text string) error {
	first, last := cell(actLabelCol, w.row), cell(actLastCol, w.row)
	if err := w.f.SetCellValue(actSheet, first, text); err != nil {
		return err
	}
	if err := w.f.MergeCell(actSheet, first, last); err != nil {
		return err
	}
	if err := w.f.SetCellStyle(actSheet, first, last, w.titleStyle); err != nil {
		return err
	}
	w.row++
	return nil
}

func (w *actWriter) header() error {
	if err := w.f.SetCellValue(actSheet, cell(actLabelCol, w.row), actHeader[0]); err != nil {
		return err
	}
	for i, h := range actHeader[1:] {
		if err := w.f.SetCellValue(actSheet, cell(actValueCol+i, w.row), h); err != nil {
			return err
		}
	}
	if err := w.f.MergeCell(actSheet, cell(actLabelCol, w.row), cell(actValueCol-1, w.row)); err != nil {
		return err
	}
	if err := w.f.SetCellStyle(actSheet, cell(actLabelCol, w.row), cell(actLastCol, w.row), w.titleStyle); err != nil {
		return err
	}
	w.row++
	return nil
}

func (w *actWriter) values(fv aggregate.FieldVolumes) error {
	label := cell(actLabelCol, w.row)
	if err := w.f.SetCellValue(actSheet, label, "ACUMULADO MENSUAL "+fv.Field); err != nil {
		return err
	}
	if err := w.f.MergeCell(actSheet, label, cell(actValueCol-1, w.row)); err != nil {
		return err
	}
	row := []interface{}{fv.GOV, fv.GSV, fv.NSV}
	if err := w.f.SetSheetRow(actSheet, cell(actValueCol, w.row), &row); err != nil {
		return err
	}
	if err := w.f.SetCellStyle(actSheet, label, cell(actLastCol, w.row), w.bodyStyle); err != nil {
		return err
	}
	w.row++
	return nil
}
