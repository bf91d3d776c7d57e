package types

import (
	"fmt"
	"time"
)

// DateLayout is the on-disk and wire format of every date in the ledger.
const DateLayout = "2006-01-02"

type ReportKind string

const (
	DailyReport      ReportKind = "daily"
	NominationReport ReportKind = "nominations"
)

var ReportKindNames = map[ReportKind]string{
	DailyReport:      "Reportes diarios",
	NominationReport: "Nominaciones",
}

func ParseReportKind(s string) (ReportKind, error) {
	switch ReportKind(s) {
	case DailyReport, NominationReport:
		return ReportKind(s), nil
	}
	return "", fmt.Errorf("unknown report kind %q", s)
}

type Measure string

const (
	GOV Measure = "GOV"
	GSV Measure = "GSV"
	NSV Measure = "NSV"
)

func ParseMeasure(s string, fallback Measure) (Measure, error) {
	switch Measure(s) {
	case "":
		return fallback, nil
	case GOV, GSV, NSV:
		return Measure(s), nil
	}
	return "", fmt.Errorf("unknown measure %q", s)
}

// ProductionRecord is one field row of a daily station report.
type ProductionRecord struct {
	Date      time.Time `json:"date"`
	Company   string    `json:"company"`
	Operation string    `json:"operation"`
	Field     string    `json:"field"`
	GOV       float64   `json:"GOV"`
	GSV       float64   `json:"GSV"`
	NSV       float64   `json:"NSV"`
}

func (r ProductionRecord) Value(m Measure) float64 {
	switch m {
	case GOV:
		return r.GOV
	case GSV:
		return r.GSV
	default:
		return r.NSV
	}
}

// NominationRecord is a company's declared daily transport volume for an oil type.
type NominationRecord struct {
	Date    time.Time `json:"date"`
	Company string    `json:"company"`
	OilType string    `json:"oil_type"`
	Volume  float64   `json:"volume"`
}

// Period is the half-open date range [Start, End).
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Day returns the period covering a single calendar day.
func Day(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 0, 1)}
}

// MonthPeriod returns the period covering a calendar month.
func MonthPeriod(year int, month time.Month) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

// Inclusive builds a period from two inclusive calendar days.
func Inclusive(first, last time.Time) Period {
	return Period{Start: Day(first).Start, End: Day(last).End}
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Matches is Contains with open bounds: a zero Start or End does not restrict.
func (p Period) Matches(t time.Time) bool {
	return (p.Start.IsZero() || !t.Before(p.Start)) && (p.End.IsZero() || t.Before(p.End))
}

func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}

func (p Period) String() string {
	return fmt.Sprintf("[%s, %s)", p.Start.Format(DateLayout), p.End.Format(DateLayout))
}
