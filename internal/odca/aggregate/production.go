package aggregate

import (
	"fmt"
	"strings"
	"time"

	"github.com/farxc/odca-monitor/internal/catalog"
	"github.com/farxc/odca-monitor/internal/odca/types"
)

type InventoryFilter struct {
	Period  types.Period
	Company string
	OilType string
	Measure types.Measure
}

type FieldInventory struct {
	Field       string  `json:"field"`
	OilType     string  `json:"oil_type"`
	Received    float64 `json:"received"`
	Transported float64 `json:"transported"`
	Inventory   float64 `json:"inventory"`
}

// InventoryByField balances, per field, what inflow operations received
// against what outflow operations transported.
func InventoryByField(cat *catalog.Catalog, records []types.ProductionRecord, f InventoryFilter) []FieldInventory {
	df, ok := frame(records)
	if !ok {
		return []FieldInventory{}
	}
	col := measureCol(f.Measure)
	df = filter(df, f.Period, map[string]string{colCompany: f.Company})

	inflow := cat.OperationsWithFlow(catalog.FlowIn)
	outflow := cat.OperationsWithFlow(catalog.FlowOut)

	out := []FieldInventory{}
	byField := groups(df, colField)
	for _, field := range sortedKeys(byField) {
		oil := cat.OilTypeOf(field)
		if f.OilType != "" && !strings.EqualFold(oil, f.OilType) {
			continue
		}
		g := byField[field]
		received := sumIn(g, colOperation, inflow, col)
		transported := sumIn(g, colOperation, outflow, col)
		out = append(out, FieldInventory{
			Field:       field,
			OilType:     oil,
			Received:    received,
			Transported: transported,
			Inventory:   received - transported,
		})
	}
	return out
}

// TotalInventory sums the per-field balances into one row named "TOTAL".
func TotalInventory(rows []FieldInventory) FieldInventory {
	total := FieldInventory{Field: "TOTAL"}
	for _, r := range rows {
		total.Received += r.Received
		total.Transported += r.Transported
		total.Inventory += r.Inventory
	}
	return total
}

// Month is a calendar month of a given year.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth reads a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) Period() types.Period {
	return types.MonthPeriod(m.Year, m.Month)
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

type FieldVolumes struct {
	Field string  `json:"field"`
	GOV   float64 `json:"GOV"`
	GSV   float64 `json:"GSV"`
	NSV   float64 `json:"NSV"`
}

// MonthlyAccumulation sums each field's volumes for one operation and company
// over a month, rounded to 2 decimals.
func MonthlyAccumulation(records []types.ProductionRecord, month Month, operation, company string) []FieldVolumes {
	df, ok := frame(records)
	if !ok {
		return []FieldVolumes{}
	}
	df = filter(df, month.Period(), map[string]string{colOperation: operation, colCompany: company})

	out := []FieldVolumes{}
	byField := groups(df, colField)
	for _, field := range sortedKeys(byField) {
		g := byField[field]
		out = append(out, FieldVolumes{
			Field: field,
			GOV:   round2(sum(g, string(types.GOV))),
			GSV:   round2(sum(g, string(types.GSV))),
			NSV:   round2(sum(g, string(types.NSV))),
		})
	}
	return out
}

type CompanyShare struct {
	Company    string  `json:"company"`
	NSV        float64 `json:"NSV"`
	Percentage float64 `json:"percentage"`
}

// ParticipationShare splits the NSV moved by an operation among companies.
func ParticipationShare(records []types.ProductionRecord, period types.Period, operation string) []CompanyShare {
	df, ok := frame(records)
	if !ok {
		return []CompanyShare{}
	}
	df = filter(df, period, map[string]string{colOperation: operation})

	byCompany := groups(df, colCompany)
	total := sum(df, string(types.NSV))
	if total == 0 {
		return []CompanyShare{}
	}

	out := []CompanyShare{}
	for _, company := range sortedKeys(byCompany) {
		nsv := sum(byCompany[company], string(types.NSV))
		out = append(out, CompanyShare{
			Company:    company,
			NSV:        round2(nsv),
			Percentage: round2(nsv / total * 100),
		})
	}
	return out
}

type DailyValue struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type CompanySeries struct {
	Company string       `json:"company"`
	Points  []DailyValue `json:"points"`
}

// NSVHistory returns the daily NSV each company moved through an operation.
func NSVHistory(records []types.ProductionRecord, period types.Period, operation string) []CompanySeries {
	df, ok := frame(records)
	if !ok {
		return []CompanySeries{}
	}
	df = filter(df, period, map[string]string{colOperation: operation})

	out := []CompanySeries{}
	byCompany := groups(df, colCompany)
	for _, company := range sortedKeys(byCompany) {
		series := CompanySeries{Company: company, Points: []DailyValue{}}
		byDate := groups(byCompany[company], colDate)
		for _, date := range sortedKeys(byDate) {
			d, err := time.Parse(types.DateLayout, date)
			if err != nil {
				continue
			}
			series.Points = append(series.Points, DailyValue{Date: d, Value: round2(sum(byDate[date], string(types.NSV)))})
		}
		out = append(out, series)
	}
	return out
}

type FieldTotal struct {
	Company string  `json:"company"`
	Field   string  `json:"field"`
	OilType string  `json:"oil_type"`
	Value   float64 `json:"value"`
}

// TotalsByField sums one measure per company and field for an operation.
func TotalsByField(cat *catalog.Catalog, records []types.ProductionRecord, period types.Period, operation string, measure types.Measure) []FieldTotal {
	df, ok := frame(records)
	if !ok {
		return []FieldTotal{}
	}
	col := measureCol(measure)
	df = filter(df, period, map[string]string{colOperation: operation})

	out := []FieldTotal{}
	byCompany := groups(df, colCompany)
	for _, company := range sortedKeys(byCompany) {
		byField := groups(byCompany[company], colField)
		for _, field := range sortedKeys(byField) {
			out = append(out, FieldTotal{
				Company: company,
				Field:   field,
				OilType: cat.OilTypeOf(field),
				Value:   round2(sum(byField[field], col)),
			})
		}
	}
	return out
}

type Volumes struct {
	GOV float64 `json:"GOV"`
	GSV float64 `json:"GSV"`
	NSV float64 `json:"NSV"`
}

type Indicators struct {
	Date         time.Time `json:"date"`
	PreviousDate time.Time `json:"previous_date"`
	Current      Volumes   `json:"current"`
	Previous     Volumes   `json:"previous"`
	Delta        Volumes   `json:"delta"`
}

// LatestIndicators compares the last reported day of a company's operation
// with the day reported before it.
func LatestIndicators(records []types.ProductionRecord, company, operation string) Indicators {
	var ind Indicators
	df, ok := frame(records)
	if !ok {
		return ind
	}
	df = filter(df, types.Period{}, map[string]string{colCompany: company, colOperation: operation})

	byDate := groups(df, colDate)
	dates := sortedKeys(byDate)
	volumes := func(date string) Volumes {
		g := byDate[date]
		return Volumes{
			GOV: round2(sum(g, string(types.GOV))),
			GSV: round2(sum(g, string(types.GSV))),
			NSV: round2(sum(g, string(types.NSV))),
		}
	}
	if len(dates) == 0 {
		return ind
	}
	last := dates[len(dates)-1]
	ind.Date, _ = time.Parse(types.DateLayout, last)
	ind.Current = volumes(last)
	if len(dates) > 1 {
		prev := dates[len(dates)-2]
		ind.PreviousDate, _ = time.Parse(types.DateLayout, prev)
		ind.Previous = volumes(prev)
	}
	ind.Delta = Volumes{
		GOV: round2(ind.Current.GOV - ind.Previous.GOV),
		GSV: round2(ind.Current.GSV - ind.Previous.GSV),
		NSV: round2(ind.Current.NSV - ind.Previous.NSV),
	}
	return ind
}
