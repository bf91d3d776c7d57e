package main

import (
	"fmt"
	"net/http"

	"github.com/farxc/odca-monitor/internal/odca/report"
	"github.com/farxc/odca-monitor/internal/store"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// writeWorkbook saves f under the reports directory and streams it back.
func (app *application) writeWorkbook(w http.ResponseWriter, f *excelize.File, name string) {
	const component = "Reports"
	defer f.Close()

	path, err := report.Save(f, app.config.reportsDir, name)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write workbook: "+err.Error())
		return
	}
	app.appLogger.Info(component, "Report generated: path=%s bytes=%d", path, buf.Len())

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// @Summary		Monthly act workbook
// @Description	Builds the ACTA ODCA workbook for a month, saves it and downloads it.
// @Tags			Reports
// @Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param			month	query	string	true	"Month (YYYY-MM)"
// @Success		200
// @Failure		400	{object}	response.ErrorResponse	"Invalid month"
// @Failure		422	{object}	response.ErrorResponse	"Company or operation missing from the catalog"
// @Router			/reports/monthly [get]
func (app *application) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, "", err)
		return
	}

	records, err := app.production(r.Context(), store.ProductionFilter{Period: month.Period()})
	if err != nil {
		writeError(w, "failed to get production", err)
		return
	}

	f, err := report.MonthlyAct(app.catalog, records, month, app.config.style)
	if err != nil {
		writeError(w, "failed to build monthly act", err)
		return
	}
	app.writeWorkbook(w, f, report.ActName(month))
}

// @Summary		Nominations workbook
// @Description	Builds the nominations workbook with one results sheet per company, saves it and downloads it.
// @Tags			Reports
// @Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param			start_date	query	string	true	"Start date (YYYY-MM-DD), names the file"
// @Param			end_date	query	string	false	"End date (YYYY-MM-DD)"
// @Success		200
// @Failure		400	{object}	response.ErrorResponse	"Missing or invalid date"
// @Failure		422	{object}	response.ErrorResponse	"Company missing from the catalog"
// @Router			/reports/nominations [get]
func (app *application) handleNominationsReport(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("start_date") == "" {
		writeError(w, "", &paramError{name: "start_date", value: "", want: "YYYY-MM-DD"})
		return
	}
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
	results, err := report.CompanyResults(app.catalog, table.Compliance(app.catalog, ""))
	if err != nil {
		writeError(w, "failed to build results", err)
		return
	}

	f, err := report.NominationWorkbook(table, results, app.config.style)
	if err != nil {
		writeError(w, "failed to build nominations workbook", err)
		return
	}
	app.writeWorkbook(w, f, report.NominationsName(period))
}
