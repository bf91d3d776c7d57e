package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/farxc/odca-monitor/internal/catalog"
	"github.com/farxc/odca-monitor/internal/odca/aggregate"
	"github.com/farxc/odca-monitor/internal/odca/report"
	"github.com/farxc/odca-monitor/internal/odca/types"
)

const (
	defaultStartDate = "2000-01-01"
	defaultEndDate   = "2100-12-31"
)

type paramError struct {
	name  string
	value string
	want  string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid %s %q (%s expected)", e.name, e.value, e.want)
}

func parseDateOrDefault(dateStr, defaultStr string) string {
	if dateStr == "" {
		return defaultStr
	}
	return dateStr
}

func parseTime(dateStr string) (time.Time, error) {
	return time.Parse(types.DateLayout, dateStr)
}

// periodParam reads start_date and end_date as an inclusive range.
func periodParam(r *http.Request) (types.Period, error) {
	q := r.URL.Query()
	startStr := parseDateOrDefault(q.Get("start_date"), defaultStartDate)
	endStr := parseDateOrDefault(q.Get("end_date"), defaultEndDate)

	start, err := parseTime(startStr)
	if err != nil {
		return types.Period{}, &paramError{name: "start_date", value: startStr, want: "YYYY-MM-DD"}
	}
	end, err := parseTime(endStr)
	if err != nil {
		return types.Period{}, &paramError{name: "end_date", value: endStr, want: "YYYY-MM-DD"}
	}
	if end.Before(start) {
		return types.Period{}, &paramError{name: "end_date", value: endStr, want: "a date not before start_date"}
	}
	return types.Inclusive(start, end), nil
}

func monthParam(r *http.Request) (aggregate.Month, error) {
	s := r.URL.Query().Get("month")
	m, err := aggregate.ParseMonth(s)
	if err != nil {
		return aggregate.Month{}, &paramError{name: "month", value: s, want: "YYYY-MM"}
	}
	return m, nil
}

// companyParam returns the canonical company name, or "" when absent.
func (app *application) companyParam(r *http.Request) (string, error) {
	s := r.URL.Query().Get("company")
	if s == "" {
		return "", nil
	}
	co, ok := app.catalog.Company(s)
	if !ok {
		return "", &report.UnknownCategoryError{Kind: "company", Name: s}
	}
	return co.Name, nil
}

// operationParam defaults to the first outflow operation of the catalog.
func (app *application) operationParam(r *http.Request) (string, error) {
	s := r.URL.Query().Get("operation")
	if s == "" {
		if out := app.catalog.OperationsWithFlow(catalog.FlowOut); len(out) > 0 {
			return out[0], nil
		}
		return "", nil
	}
	op, ok := app.catalog.Operation(s)
	if !ok {
		return "", &report.UnknownCategoryError{Kind: "operation", Name: s}
	}
	return op.Name, nil
}

func (app *application) oilTypeParam(r *http.Request) (string, error) {
	s := r.URL.Query().Get("oil_type")
	if s == "" {
		return "", nil
	}
	ot, ok := app.catalog.OilType(s)
	if !ok {
		return "", &report.UnknownCategoryError{Kind: "oil type", Name: s}
	}
	return ot.Name, nil
}

func measureParam(r *http.Request) (types.Measure, error) {
	s := r.URL.Query().Get("measure")
	m, err := types.ParseMeasure(strings.ToUpper(s), types.GSV)
	if err != nil {
		return "", &paramError{name: "measure", value: s, want: "GOV, GSV or NSV"}
	}
	return m, nil
}

func limitParam(r *http.Request, fallback int) int {
	limit := fallback
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 {
			limit = l
		}
	}
	return limit
}
