package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/farxc/odca-monitor/internal/catalog"
	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"
)

// Pivot is a date by column matrix; Values[i][j] belongs to Dates[i] and Columns[j].
type Pivot struct {
	Dates   []time.Time `json:"dates"`
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// DailyTransportedByOilType pivots the NSV a company dispatched through
// outflow operations by date and oil type. Light fields add up under their
// shared oil type.
func DailyTransportedByOilType(cat *catalog.Catalog, records []types.ProductionRecord, period types.Period, company string) Pivot {
	p := Pivot{Dates: []time.Time{}, Values: [][]float64{}}
	for _, ot := range cat.OilTypes {
		p.Columns = append(p.Columns, ot.Name)
	}

	df, ok := frame(records)
	if !ok {
		return p
	}
	df = filter(df, period, map[string]string{colCompany: company})
	outflow := cat.OperationsWithFlow(catalog.FlowOut)
	if len(outflow) == 0 || df.Nrow() == 0 {
		return p
	}
	df = df.Filter(dataframe.F{Colname: colOperation, Comparator: series.In, Comparando: outflow})

	byDate := groups(df, colDate)
	for _, date := range sortedKeys(byDate) {
		d, err := time.Parse(types.DateLayout, date)
		if err != nil {
			continue
		}
		row := make([]float64, len(p.Columns))
		byField := groups(byDate[date], colField)
		for field, g := range byField {
			oil := cat.OilTypeOf(field)
			for j, name := range p.Columns {
				if name == oil {
					row[j] += sum(g, string(types.NSV))
				}
			}
		}
		for j := range row {
			row[j] = round2(row[j])
		}
		p.Dates = append(p.Dates, d)
		p.Values = append(p.Values, row)
	}
	return p
}

type NominationRow struct {
	Date   time.Time `json:"date"`
	Values []float64 `json:"values"`
}

// NominationTable lays nominated and transported volumes side by side, one
// pair of columns per company and nominated oil type.
type NominationTable struct {
	Columns  []string        `json:"columns"`
	Rows     []NominationRow `json:"rows"`
	Averages []float64       `json:"averages"`
	Days     int             `json:"days"`

	pairs []nominationPair
}

type nominationPair struct {
	company string
	oilType string
}

func nominationPairs(cat *catalog.Catalog) ([]string, []nominationPair) {
	columns := []string{"fecha"}
	var pairs []nominationPair
	for _, co := range cat.Companies {
		for _, oil := range co.NominatedOils {
			ot, ok := cat.OilType(oil)
			if !ok {
				continue
			}
			columns = append(columns,
				strings.ToLower("nominado "+ot.Name+" "+co.Key),
				strings.ToLower(ot.TransportLabel+" "+co.Key),
			)
			pairs = append(pairs, nominationPair{company: co.Name, oilType: ot.Name})
		}
	}
	return columns, pairs
}

// NominationReport builds the nomination table for period. A date appears
// when it has a nomination or a transport figure; missing values show as 0
// but are left out of the averages.
func NominationReport(cat *catalog.Catalog, records []types.ProductionRecord, nominations []types.NominationRecord, period types.Period) NominationTable {
	columns, pairs := nominationPairs(cat)
	table := NominationTable{
		Columns:  columns,
		Rows:     []NominationRow{},
		Averages: make([]float64, 2*len(pairs)),
		pairs:    pairs,
	}

	type cell struct{ date, company, oil string }
	type companyDay struct{ date, company string }
	nominated := make(map[cell]float64)
	transported := make(map[cell]float64)
	// a company's transport row exists for every day it dispatched anything
	reported := make(map[companyDay]bool)
	seen := make(map[string]bool)

	for _, n := range nominations {
		if !period.Matches(n.Date) {
			continue
		}
		co, ok := cat.Company(n.Company)
		if !ok {
			continue
		}
		ot, ok := cat.OilType(n.OilType)
		if !ok {
			continue
		}
		date := n.Date.Format(types.DateLayout)
		nominated[cell{date, co.Name, ot.Name}] += n.Volume
		seen[date] = true
	}

	for _, co := range cat.Companies {
		pivot := DailyTransportedByOilType(cat, records, period, co.Name)
		for i, d := range pivot.Dates {
			date := d.Format(types.DateLayout)
			for j, oil := range pivot.Columns {
				transported[cell{date, co.Name, oil}] += pivot.Values[i][j]
			}
			reported[companyDay{date, co.Name}] = true
			seen[date] = true
		}
	}

	var all []string
	for d := range seen {
		all = append(all, d)
	}
	sort.Strings(all)

	cols := make([][]float64, len(table.Averages))
	for _, date := range all {
		d, _ := time.Parse(types.DateLayout, date)
		row := NominationRow{Date: d, Values: make([]float64, len(table.Averages))}
		for k, p := range pairs {
			key := cell{date, p.company, p.oilType}
			if v, ok := nominated[key]; ok {
				row.Values[2*k] = round2(v)
				cols[2*k] = append(cols[2*k], row.Values[2*k])
			}
			if reported[companyDay{date, p.company}] {
				row.Values[2*k+1] = round2(transported[key])
				cols[2*k+1] = append(cols[2*k+1], row.Values[2*k+1])
			}
		}
		table.Rows = append(table.Rows, row)
	}

	table.Days = len(table.Rows)
	for j, values := range cols {
		if len(values) > 0 {
			table.Averages[j] = round2(stat.Mean(values, nil))
		}
	}
	return table
}

type ComplianceRow struct {
	Company       string  `json:"company"`
	OilType       string  `json:"oil_type"`
	Nominated     float64 `json:"nominated"`
	Transported   float64 `json:"transported"`
	CompliancePct float64 `json:"compliance_pct"`
}

// NominationCompliance compares the daily mean nominated volume with the daily
// mean transported volume per company and oil type. Each mean only counts the
// days that carry a figure. company may be empty.
func NominationCompliance(cat *catalog.Catalog, records []types.ProductionRecord, nominations []types.NominationRecord, period types.Period, company string) []ComplianceRow {
	table := NominationReport(cat, records, nominations, period)
	return table.Compliance(cat, company)
}

// Compliance reads the compliance rows off an already built table.
func (t NominationTable) Compliance(cat *catalog.Catalog, company string) []ComplianceRow {
	want := ""
	if company != "" {
		co, ok := cat.Company(company)
		if !ok {
			return []ComplianceRow{}
		}
		want = co.Name
	}

	out := []ComplianceRow{}
	for k, p := range t.pairs {
		if want != "" && p.company != want {
			continue
		}
		row := ComplianceRow{
			Company:     p.company,
			OilType:     p.oilType,
			Nominated:   t.Averages[2*k],
			Transported: t.Averages[2*k+1],
		}
		if row.Nominated != 0 {
			row.CompliancePct = round2(row.Transported / row.Nominated * 100)
		}
		out = append(out, row)
	}
	return out
}
