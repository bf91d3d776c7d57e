package store

import (
	"time"

	"github.com/farxc/odca-monitor/internal/odca/types"
)

var (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// IngestionHistory is one attempt to load a report file into the ledger.
type IngestionHistory struct {
	ID          string           `json:"id"`
	Kind        types.ReportKind `json:"kind"`
	SourceFile  string           `json:"source_file"`
	Period      types.Period     `json:"period"`
	Status      string           `json:"status"`
	Records     int              `json:"records"`
	Removed     int              `json:"removed"`
	Error       string           `json:"error,omitempty"`
	ProcessedAt time.Time        `json:"processed_at"`
}

type ProductionFilter struct {
	Period    types.Period
	Company   string
	Operation string
}

type NominationFilter struct {
	Period  types.Period
	Company string
}

// Row shapes shared by the csv and sql backends. Dates travel as YYYY-MM-DD text.

type productionRow struct {
	Date      string  `db:"report_date"`
	Company   string  `db:"company"`
	Operation string  `db:"operation"`
	Field     string  `db:"field"`
	GOV       float64 `db:"gov"`
	GSV       float64 `db:"gsv"`
	NSV       float64 `db:"nsv"`
}

type nominationRow struct {
	Date    string  `db:"report_date"`
	Company string  `db:"company"`
	OilType string  `db:"oil_type"`
	Volume  float64 `db:"nominated"`
}

type historyRow struct {
	ID          string `db:"id"`
	Kind        string `db:"kind"`
	SourceFile  string `db:"source_file"`
	PeriodStart string `db:"period_start"`
	PeriodEnd   string `db:"period_end"`
	Status      string `db:"status"`
	Records     int    `db:"records"`
	Removed     int    `db:"removed"`
	Error       string `db:"error"`
	ProcessedAt string `db:"processed_at"`
}

func toProductionRow(r types.ProductionRecord) productionRow {
	return productionRow{
		Date:      r.Date.Format(types.DateLayout),
		Company:   r.Company,
		Operation: r.Operation,
		Field:     r.Field,
		GOV:       r.GOV,
		GSV:       r.GSV,
		NSV:       r.NSV,
	}
}

func (r productionRow) record() (types.ProductionRecord, error) {
	date, err := time.Parse(types.DateLayout, r.Date)
	if err != nil {
		return types.ProductionRecord{}, err
	}
	return types.ProductionRecord{
		Date:      date,
		Company:   r.Company,
		Operation: r.Operation,
		Field:     r.Field,
		GOV:       r.GOV,
		GSV:       r.GSV,
		NSV:       r.NSV,
	}, nil
}

func toNominationRow(r types.NominationRecord) nominationRow {
	return nominationRow{
		Date:    r.Date.Format(types.DateLayout),
		Company: r.Company,
		OilType: r.OilType,
		Volume:  r.Volume,
	}
}

func (r nominationRow) record() (types.NominationRecord, error) {
	date, err := time.Parse(types.DateLayout, r.Date)
	if err != nil {
		return types.NominationRecord{}, err
	}
	return types.NominationRecord{Date: date, Company: r.Company, OilType: r.OilType, Volume: r.Volume}, nil
}

func toHistoryRow(h IngestionHistory) historyRow {
	row := historyRow{
		ID:          h.ID,
		Kind:        string(h.Kind),
		SourceFile:  h.SourceFile,
		Status:      h.Status,
		Records:     h.Records,
		Removed:     h.Removed,
		Error:       h.Error,
		ProcessedAt: h.ProcessedAt.UTC().Format(time.RFC3339),
	}
	if !h.Period.Start.IsZero() {
		row.PeriodStart = h.Period.Start.Format(types.DateLayout)
	}
	if !h.Period.End.IsZero() {
		row.PeriodEnd = h.Period.End.Format(types.DateLayout)
	}
	return row
}

func (r historyRow) history() IngestionHistory {
	h := IngestionHistory{
		ID:         r.ID,
		Kind:       types.ReportKind(r.Kind),
		SourceFile: r.SourceFile,
		Status:     r.Status,
		Records:    r.Records,
		Removed:    r.Removed,
		Error:      r.Error,
	}
	h.Period.Start, _ = time.Parse(types.DateLayout, r.PeriodStart)
	h.Period.End, _ = time.Parse(types.DateLayout, r.PeriodEnd)
	h.ProcessedAt, _ = time.Parse(time.RFC3339, r.ProcessedAt)
	return h
}

func lessProduction(a, b types.ProductionRecord) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if a.Company != b.Company {
		return a.Company < b.Company
	}
	if a.Operation != b.Operation {
		return a.Operation < b.Operation
	}
	return a.Field < b.Field
}

func lessNomination(a, b types.NominationRecord) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if a.Company != b.Company {
		return a.Company < b.Company
	}
	return a.OilType < b.OilType
}
