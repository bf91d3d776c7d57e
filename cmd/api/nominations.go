package main

import (
	"net/http"

	"github.com/farxc/odca-monitor/internal/odca/aggregate"
	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/farxc/odca-monitor/internal/response"
	"github.com/farxc/odca-monitor/internal/store"
)

type GetNominationTableResponse = response.APIResponse[aggregate.NominationTable]
type GetComplianceResponse = response.APIResponse[[]aggregate.ComplianceRow]
type GetTransportedResponse = response.APIResponse[aggregate.Pivot]

func (app *application) nominationTable(r *http.Request, period types.Period) (aggregate.NominationTable, error) {
	ctx := r.Context()
	records, err := app.store.Production.Query(ctx, store.ProductionFilter{Period: period})
	if err != nil {
		return aggregate.NominationTable{}, err
	}
	nominations, err := app.store.Nominations.Query(ctx, store.NominationFilter{Period: period})
	if err != nil {
		return aggregate.NominationTable{}, err
	}
	return aggregate.NominationReport(app.catalog, records, nominations, period), nil
}

// @Summary		Nomination table
// @Description	Nominated against transported NSV per day, company and oil type, with averages.
// @Tags			Nominations
// @Produce		json
// @Param			start_date	query		string	false	"Start date (YYYY-MM-DD)"	default(2000-01-01)
// @Param			end_date	query		string	false	"End date (YYYY-MM-DD)"		default(2100-12-31)
// @Success		200			{object}	GetNominationTableResponse
// @Failure		400			{object}	response.ErrorResponse	"Invalid date"
// @Failure		500			{object}	response.ErrorResponse	"Failed to query the ledger"
// @Router			/nominations/table [get]
func (app *application) handleGetNominationTable(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		writeError(w, "", err)
		return
	}

	table, err := app.nominationTable(r, period)
	if err != nil {
		writeError(w, "failed to get nomination table", err)
		return
	}

	writeData(w, "Successfully retrieved nomination table", table)
}

// @Summary		Nomination compliance
// @Description	Mean nominated and transported NSV per company and oil type.
// @Tags			Nominations
// @Produce		json
// @Param			start_date	query		string	false	"Start date (YYYY-MM-DD)"	default(2000-01-01)
// @Param			end_date	query		string	false	"End date (YYYY-MM-DD)"		default(2100-12-31)
// @Param			company		query		string	false	"Company"
// @Success		200			{object}	GetComplianceResponse
// @Failure		422			{object}	response.ErrorResponse	"Unknown company"
// @Router			/nominations/compliance [get]
func (app *application) handleGetCompliance(w http.ResponseWriter, r *http.Request) {
	rows, err := app.compliance(r)
	if err != nil {
		writeError(w, "failed to get compliance", err)
		return
	}

	writeData(w, "Successfully retrieved compliance", rows)
}

func (app *application) compliance(r *http.Request) ([]aggregate.ComplianceRow, error) {
	period, err := periodParam(r)
	if err != nil {
		return nil, err
	}
	company, err := app.companyParam(r)
	if err != nil {
		return nil, err
	}
	table, err := app.nominationTable(r, period)
	if err != nil {
		return nil, err
	}
	return table.Compliance(app.catalog, company), nil
}

// @Summary		Transported by oil type
// @Description	Daily transported NSV per oil type, zero-filled.
// @Tags			Nominations
// @Produce		json
// @Param			start_date	query		string	false	"Start date (YYYY-MM-DD)"	default(2000-01-01)
// @Param			end_date	query		string	false	"End date (YYYY-MM-DD)"		default(2100-12-31)
// @Param			company		query		string	false	"Company"
// @Success		200			{object}	GetTransportedResponse
// @Router			/nominations/transported [get]
func (app *application) handleGetTransportedByOilType(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	company, err := app.companyParam(r)
	if err != nil {
		writeError(w, "", err)
		return
	}

	records, err := app.store.Production.Query(r.Context(), store.ProductionFilter{Period: period, Company: company})
	if err != nil {
		writeError(w, "failed to get transported volumes", err)
		return
	}

	writeData(w, "Successfully retrieved transported volumes", aggregate.DailyTransportedByOilType(app.catalog, records, period, company))
}
