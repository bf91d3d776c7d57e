package main

import (
	"bytes"
	"net/http"

	"github.com/farxc/odca-monitor/internal/odca/aggregate"
	"github.com/farxc/odca-monitor/internal/odca/chart"
	"github.com/farxc/odca-monitor/internal/store"
	"gonum.org/v1/plot"
)

// writePNG renders p before touching w so a render failure still gets a JSON error.
func writePNG(w http.ResponseWriter, p *plot.Plot, err error) {
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to build chart: "+err.Error())
		return
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf, p); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to render chart: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// @Summary		Inventory chart
// @Tags			Charts
// @Produce		png
// @Param			start_date	query	string	false	"Start date (YYYY-MM-DD)"
// @Param			end_date	query	string	false	"End date (YYYY-MM-DD)"
// @Param			company		query	string	false	"Company"
// @Param			oil_type	query	string	false	"Oil type"
// @Param			measure		query	string	false	"GOV, GSV or NSV"
// @Success		200
// @Router			/charts/inventory [get]
func (app *application) handleInventoryChart(w http.ResponseWriter, r *http.Request) {
	rows, err := app.inventory(r)
	if err != nil {
		writeError(w, "failed to get inventory", err)
		return
	}
	p, err := chart.Inventory(rows)
	writePNG(w, p, err)
}

// @Summary		Participation chart
// @Tags			Charts
// @Produce		png
// @Param			start_date	query	string	false	"Start date (YYYY-MM-DD)"
// @Param			end_date	query	string	false	"End date (YYYY-MM-DD)"
// @Param			operation	query	string	false	"Operation"
// @Success		200
// @Router			/charts/participation [get]
func (app *application) handleParticipationChart(w http.ResponseWriter, r *http.Request) {
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
	p, err := chart.Participation(aggregate.ParticipationShare(records, period, operation))
	writePNG(w, p, err)
}

// @Summary		NSV history chart
// @Tags			Charts
// @Produce		png
// @Param			start_date	query	string	false	"Start date (YYYY-MM-DD)"
// @Param			end_date	query	string	false	"End date (YYYY-MM-DD)"
// @Param			operation	query	string	false	"Operation"
// @Success		200
// @Router			/charts/history [get]
func (app *application) handleHistoryChart(w http.ResponseWriter, r *http.Request) {
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
	p, err := chart.History(aggregate.NSVHistory(records, period, operation))
	writePNG(w, p, err)
}

// @Summary		Compliance chart
// @Tags			Charts
// @Produce		png
// @Param			start_date	query	string	false	"Start date (YYYY-MM-DD)"
// @Param			end_date	query	string	false	"End date (YYYY-MM-DD)"
// @Param			company		query	string	false	"Company"
// @Success		200
// @Router			/charts/compliance [get]
func (app *application) handleComplianceChart(w http.ResponseWriter, r *http.Request) {
	rows, err := app.compliance(r)
	if err != nil {
		writeError(w, "failed to get compliance", err)
		return
	}
	p, err := chart.Compliance(rows)
	writePNG(w, p, err)
}
