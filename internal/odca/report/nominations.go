package report

import (
	"fmt"

	"github.com/farxc/odca-monitor/internal/catalog"
	"github.com/farxc/odca-monitor/internal/odca/aggregate"
	"github.com/farxc/odca-monitor/internal/odca/parser"
	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const nominationSheet = "Nominaciones"

var resultsHeader = []string{
	"Remitente",
	"Crudos",
	"Nominado Barriles NSV/Día promedio",
	"Transportado Barriles NSV/Día promedio",
	"Notas",
	"Factor de Servicio ODCA",
}

// CompanyResult is one company's sheet of average nominated and transported volumes.
type CompanyResult struct {
	Company string
	Rows    []aggregate.ComplianceRow
}

// NominationsName is the file name of the nomination report for the month
// holding start.
func NominationsName(p types.Period) string {
	return fmt.Sprintf("Nominaciones %s-%d.xlsx", parser.Months[p.Start.Month()-1], p.Start.Year())
}

// CompanyResults groups compliance rows by company, in catalog order, under
// each company's display name.
func CompanyResults(cat *catalog.Catalog, rows []aggregate.ComplianceRow) ([]CompanyResult, error) {
	byCompany := make(map[string][]aggregate.ComplianceRow)
	for _, r := range rows {
		co, ok := cat.Company(r.Company)
		if !ok {
			return nil, &UnknownCategoryError{Kind: "company", Name: r.Company}
		}
		byCompany[co.Name] = append(byCompany[co.Name], r)
	}
	var out []CompanyResult
	for _, co := range cat.Companies {
		if rs, ok := byCompany[co.Name]; ok {
			out = append(out, CompanyResult{Company: co.Display, Rows: rs})
		}
	}
	return out, nil
}

// NominationWorkbook writes the nomination table, closed by its "Promedio" and
// "Días" rows, plus one results sheet per company.
func NominationWorkbook(table aggregate.NominationTable, results []CompanyResult, style Style) (*excelize.File, error) {
	style = style.withDefaults()
	f := excelize.NewFile()
	if err := writeNominations(f, table, results, style); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeNominations(f *excelize.File, table aggregate.NominationTable, results []CompanyResult, style Style) error {
	if err := f.SetSheetName("Sheet1", nominationSheet); err != nil {
		return err
	}

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(nominationSheet, "A1", &header); err != nil {
		return err
	}

	row := 2
	for _, r := range table.Rows {
		values := []interface{}{r.Date.Format(types.DateLayout)}
		for _, v := range r.Values {
			values = append(values, v)
		}
		if err := f.SetSheetRow(nominationSheet, cell(1, row), &values); err != nil {
			return err
		}
		row++
	}

	averages := []interface{}{"Promedio"}
	days := []interface{}{"Días"}
	for _, v := range table.Averages {
		averages = append(averages, v)
		days = append(days, table.Days)
	}
	if err := f.SetSheetRow(nominationSheet, cell(1, row), &averages); err != nil {
		return err
	}
	if err := f.SetSheetRow(nominationSheet, cell(1, row+1), &days); err != nil {
		return err
	}

	lastCol := len(table.Columns)
	if lastCol == 0 {
		lastCol = 1
	}
	if err := styleGrid(f, nominationSheet, lastCol, row+1, []int{1, row, row + 1}, style); err != nil {
		return err
	}

	for _, res := range results {
		if err := writeResults(f, res, style); err != nil {
			return err
		}
	}
	return nil
}

func writeResults(f *excelize.File, res CompanyResult, style Style) error {
	sheet := "Resultados " + cases.Title(language.Spanish).String(res.Company)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := make([]interface{}, len(resultsHeader))
	for i, h := range resultsHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range res.Rows {
		values := []interface{}{res.Company, r.OilType, r.Nominated, r.Transported, "", ""}
		if err := f.SetSheetRow(sheet, cell(1, i+2), &values); err != nil {
			return err
		}
	}
	return styleGrid(f, sheet, len(resultsHeader), len(res.Rows)+1, []int{1}, style)
}

// styleGrid borders, centers and wraps A1 through (lastCol, lastRow). Rows in
// bold get the filled header style.
func styleGrid(f *excelize.File, sheet string, lastCol, lastRow int, bold []int, style Style) error {
	body, err := bodyStyle(f, style, false)
	if err != nil {
		return err
	}
	head, err := headerStyle(f, style, true)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", cell(lastCol, lastRow), body); err != nil {
		return err
	}
	for _, r := range bold {
		if err := f.SetCellStyle(sheet, cell(1, r), cell(lastCol, r), head); err != nil {
			return err
		}
		if err := f.SetRowHeight(sheet, r, 15); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(lastCol)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 15); err != nil {
		return err
	}
	if lastCol > 1 {
		return f.SetColWidth(sheet, "B", last, 13)
	}
	return nil
}
