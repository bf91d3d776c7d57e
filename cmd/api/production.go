package main

import (
	"context"
	"net/http"

	"github.com/farxc/odca-monitor/internal/odca/aggregate"
	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/farxc/odca-monitor/internal/response"
	"github.com/farxc/odca-monitor/internal/store"
)

type GetIndicatorsResponse = response.APIResponse[aggregate.Indicators]
type GetParticipationResponse = response.APIResponse[[]aggregate.CompanyShare]
type GetNSVHistoryResponse = response.APIResponse[[]aggregate.CompanySeries]
type GetFieldTotalsResponse = response.APIResponse[[]aggregate.FieldTotal]
type GetInventoryResponse = response.APIResponse[InventoryReport]
type GetMonthlyAccumulationResponse = response.APIResponse[MonthlyAccumulation]

type InventoryReport struct {
	Fields []aggregate.FieldInventory `json:"fields"`
	Total  aggregate.FieldInventory   `json:"total"`
}

type MonthlyAccumulation struct {
	Month     string                   `json:"month"`
	Operation string                   `json:"operation"`
	Company   string                   `json:"company,omitempty"`
	Fields    []aggregate.FieldVolumes `json:"fields"`
}

func (app *application) production(ctx context.Context, f store.ProductionFilter) ([]types.ProductionRecord, error) {
	return app.store.Production.Query(ctx, f)
}

// @Summary		Latest indicators
// @Description	GOV, GSV and NSV of the last reported day against the day before it.
// @Tags			Production
// @Produce		json
// @Param			company		query		string					false	"Company name or alias"
// @Param			operation	query		string					false	"Operation, defaults to the first outflow operation"
// @Success		200			{object}	GetIndicatorsResponse
// @Failure		422			{object}	response.ErrorResponse	"Unknown company or operation"
// @Failure		500			{object}	response.ErrorResponse	"Failed to query the ledger"
// @Router			/production/indicators [get]
func (app *application) handleGetIndicators(w http.ResponseWriter, r *http.Request) {
	company, err := app.companyParam(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	operation, err := app.operationParam(r)
	if err != nil {
		writeError(w, "", err)
		return
	}

	records, err := app.production(r.Context(), store.ProductionFilter{Company: company, Operation: operation})
	if err != nil {
		writeError(w, "failed to get indicators", err)
		return
	}

	writeData(w, "Successfully retrieved indicators", aggregate.LatestIndicators(records, company, operation))
}

// @Summary		Participation by company
// @Description	Share of total NSV per company for an operation over a date range.
// @Tags			Production
// @Produce		json
// @Param			start_date	query		string	false	"Start date (YYYY-MM-DD)"	default(2000-01-01)
// @Param			end_date	query		string	false	"End date (YYYY-MM-DD)"		default(2100-12-31)
// @Param			operation	query		string	false	"Operation"
// @Success		200			{object}	GetParticipationResponse
// @Failure		400			{object}	response.ErrorResponse	"Invalid date"
// @Failure		500			{object}	response.ErrorResponse	"Failed to query the ledger"
// @Router			/production/participation [get]
func (app *application) handleGetParticipation(w http.ResponseWriter, r *http.Request) {
	period, operation, err := app.periodAndOperation(r)
	if err != nil {
		writeError(w, "", err)
		return
	}

	records, err := app.production(r.Context(), store.ProductionFilter{Period: period, Operation: operation})
	if err != nil {
		writeError(w, "failed to get participation", err)
		return
	}

	writeData(w, "Successfully retrieved participation", aggregate.ParticipationShare(records, period, operation))
}

// @Summary		NSV history
// @Description	Daily NSV per company for an operation.
// @Tags			Production
// @Produce		json
// @Param			start_date	query		string	false	"Start date (YYYY-MM-DD)"	default(2000-01-01)
// @Param			end_date	query		string	false	"End date (YYYY-MM-DD)"		default(2100-12-31)
// @Param			operation	query		string	false	"Operation"
// @Success		200			{object}	GetNSVHistoryResponse
// @Router			/production/history [get]
func (app *application) handleGetNSVHistory(w http.ResponseWriter, r *http.Request) {
	period, operation, err := app.periodAndOperation(r)
	if err != nil {
		writeError(w, "", err)
		return
	}

	records, err := app.production(r.Context(), store.ProductionFilter{Period: period, Operation: operation})
	if err != nil {
		writeError(w, "failed to get NSV history", err)
		return
	}

	writeData(w, "Successfully retrieved NSV history", aggregate.NSVHistory(records, period, operation))
}

// @Summary		Totals by field
// @Description	Per-company, per-field totals of a measure for an operation.
// @Tags			Production
// @Produce		json
// @Param			start_date	query		string	false	"Start date (YYYY-MM-DD)"	default(2000-01-01)
// @Param			end_date	query		string	false	"End date (YYYY-MM-DD)"		default(2100-12-31)
// @Param			operation	query		string	false	"Operation"
// @Param			measure		query		string	false	"GOV, GSV or NSV"			default(GSV)
// @Success		200			{object}	GetFieldTotalsResponse
// @Router			/production/fields [get]
func (app *application) handleGetFieldTotals(w http.ResponseWriter, r *http.Request) {
	period, operation, err := app.periodAndOperation(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	measure, err := measureParam(r)
	if err != nil {
		writeError(w, "", err)
		return
	}

	records, err := app.production(r.Context(), store.ProductionFilter{Period: period, Operation: operation})
	if err != nil {
		writeError(w, "failed to get field totals", err)
		return
	}

	writeData(w, "Successfully retrieved field totals", aggregate.TotalsByField(app.catalog, records, period, operation, measure))
}

// @Summary		Inventory by field
// @Description	Received minus transported volume per field, with a total row.
// @Tags			Production
// @Produce		json
// @Param			start_date	query		string	false	"Start date (YYYY-MM-DD)"	default(2000-01-01)
// @Param			end_date	query		string	false	"End date (YYYY-MM-DD)"		default(2100-12-31)
// @Param			company		query		string	false	"Company"
// @Param			oil_type	query		string	false	"Oil type"
// @Param			measure		query		string	false	"GOV, GSV or NSV"			default(GSV)
// @Success		200			{object}	GetInventoryResponse
// @Failure		422			{object}	response.ErrorResponse	"Unknown company or oil type"
// @Router			/production/inventory [get]
func (app *application) handleGetInventory(w http.ResponseWriter, r *http.Request) {
	rows, err := app.inventory(r)
	if err != nil {
		writeError(w, "failed to get inventory", err)
		return
	}

	writeData(w, "Successfully retrieved inventory", InventoryReport{
		Fields: rows,
		Total:  aggregate.TotalInventory(rows),
	})
}

func (app *application) inventory(r *http.Request) ([]aggregate.FieldInventory, error) {
	period, err := periodParam(r)
	if err != nil {
		return nil, err
	}
	company, err := app.companyParam(r)
	if err != nil {
		return nil, err
	}
	oilType, err := app.oilTypeParam(r)
	if err != nil {
		return nil, err
	}
	measure, err := measureParam(r)
	if err != nil {
		return nil, err
	}

	records, err := app.production(r.Context(), store.ProductionFilter{Period: period, Company: company})
	if err != nil {
		return nil, err
	}
	return aggregate.InventoryByField(app.catalog, records, aggregate.InventoryFilter{
		Period:  period,
		Company: company,
		OilType: oilType,
		Measure: measure,
	}), nil
}

// @Summary		Monthly accumulation
// @Description	Volumes per field summed over a calendar month, rounded to 2 decimals.
// @Tags			Production
// @Produce		json
// @Param			month		query		string	true	"Month (YYYY-MM)"
// @Param			operation	query		string	false	"Operation"
// @Param			company		query		string	false	"Company"
// @Success		200			{object}	GetMonthlyAccumulationResponse
// @Failure		400			{object}	response.ErrorResponse	"Invalid month"
// @Router			/production/monthly [get]
func (app *application) handleGetMonthlyAccumulation(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	operation, err := app.operationParam(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	company, err := app.companyParam(r)
	if err != nil {
		writeError(w, "", err)
		return
	}

	records, err := app.production(r.Context(), store.ProductionFilter{Period: month.Period(), Company: company, Operation: operation})
	if err != nil {
		writeError(w, "failed to get monthly accumulation", err)
		return
	}

	writeData(w, "Successfully retrieved monthly accumulation", MonthlyAccumulation{
		Month:     month.String(),
		Operation: operation,
		Company:   company,
		Fields:    aggregate.MonthlyAccumulation(records, month, operation, company),
	})
}

func (app *application) periodAndOperation(r *http.Request) (types.Period, string, error) {
	period, err := periodParam(r)
	if err != nil {
		return types.Period{}, "", err
	}
	operation, err := app.operationParam(r)
	if err != nil {
		return types.Period{}, "", err
	}
	return period, operation, nil
}
