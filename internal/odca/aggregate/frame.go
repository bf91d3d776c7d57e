package aggregate

import (
	"sort"

	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
)

const (
	colDate      = "date"
	colCompany   = "company"
	colOperation = "operation"
	colField     = "field"
)

type frameRow struct {
	Date      string  `dataframe:"date,string"`
	Company   string  `dataframe:"company,string"`
	Operation string  `dataframe:"operation,string"`
	Field     string  `dataframe:"field,string"`
	GOV       float64 `dataframe:"GOV,float"`
	GSV       float64 `dataframe:"GSV,float"`
	NSV       float64 `dataframe:"NSV,float"`
}

// frame loads production records into a dataframe. It reports false for an
// empty input, which gota refuses to load.
func frame(records []types.ProductionRecord) (dataframe.DataFrame, bool) {
	if len(records) == 0 {
		return dataframe.DataFrame{}, false
	}
	rows := make([]frameRow, len(records))
	for i, r := range records {
		rows[i] = frameRow{
			Date:      r.Date.Format(types.DateLayout),
			Company:   r.Company,
			Operation: r.Operation,
			Field:     r.Field,
			GOV:       r.GOV,
			GSV:       r.GSV,
			NSV:       r.NSV,
		}
	}
	df := dataframe.LoadStructs(rows)
	if df.Err != nil || df.Nrow() == 0 {
		return df, false
	}
	return df, true
}

// filter narrows df to the period and to every non-empty column value in eq.
func filter(df dataframe.DataFrame, period types.Period, eq map[string]string) dataframe.DataFrame {
	var fs []dataframe.F
	if !period.Start.IsZero() {
		fs = append(fs, dataframe.F{Colname: colDate, Comparator: series.GreaterEq, Comparando: period.Start.Format(types.DateLayout)})
	}
	if !period.End.IsZero() {
		fs = append(fs, dataframe.F{Colname: colDate, Comparator: series.Less, Comparando: period.End.Format(types.DateLayout)})
	}
	for col, value := range eq {
		if value != "" {
			fs = append(fs, dataframe.F{Colname: col, Comparator: series.Eq, Comparando: value})
		}
	}
	// chained filters AND together
	for _, f := range fs {
		if df.Err != nil || df.Nrow() == 0 {
			break
		}
		df = df.Filter(f)
	}
	return df
}

// sumIn totals col over the rows whose key column is one of values.
func sumIn(df dataframe.DataFrame, key string, values []string, col string) float64 {
	if len(values) == 0 || df.Err != nil || df.Nrow() == 0 {
		return 0
	}
	return sum(df.Filter(dataframe.F{Colname: key, Comparator: series.In, Comparando: values}), col)
}

// groups splits df by a single column, keyed by that column's value.
func groups(df dataframe.DataFrame, col string) map[string]dataframe.DataFrame {
	out := make(map[string]dataframe.DataFrame)
	if df.Err != nil || df.Nrow() == 0 {
		return out
	}
	for _, g := range df.GroupBy(col).GetGroups() {
		if g.Nrow() == 0 {
			continue
		}
		out[g.Col(col).Records()[0]] = g
	}
	return out
}

func sortedKeys(m map[string]dataframe.DataFrame) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sum(df dataframe.DataFrame, col string) float64 {
	if df.Err != nil || df.Nrow() == 0 {
		return 0
	}
	return floats.Sum(df.Col(col).Float())
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func measureCol(m types.Measure) string {
	switch m {
	case types.GOV, types.GSV, types.NSV:
		return string(m)
	}
	return string(types.GSV)
}
