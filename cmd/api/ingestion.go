package main

import (
	"net/http"

	"github.com/farxc/odca-monitor/internal/odca/ingest"
	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/farxc/odca-monitor/internal/response"
	"github.com/farxc/odca-monitor/internal/store"
)

type GetIngestionHistoryResponse = response.APIResponse[[]store.IngestionHistory]
type IngestionResponse = response.APIResponse[[]response.FileResult]

const maxUploadMemory = 32 << 20 // 32 MB, larger parts spill to disk

// @Summary		Get ingestion history
// @Description	Get a list of the latest ingestion records.
// @Tags			Ingestion
// @Produce		json
// @Param			kind	query		string						false	"daily or nominations"
// @Param			limit	query		int							false	"Limit the number of results"	default(10)
// @Success		200		{object}	GetIngestionHistoryResponse	"Successfully retrieved latest ingestion records"
// @Failure		400		{object}	response.ErrorResponse		"Unknown report kind"
// @Failure		500		{object}	response.ErrorResponse		"Failed to get ingestion history"
// @Router			/ingestion/history [get]
func (app *application) handleGetIngestionHistory(w http.ResponseWriter, r *http.Request) {
	var kind types.ReportKind
	if s := r.URL.Query().Get("kind"); s != "" {
		k, err := types.ParseReportKind(s)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		kind = k
	}
	limit := limitParam(r, 10)

	ctx := r.Context()
	data, err := app.store.IngestionHistory.GetLatest(ctx, kind, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get ingestion history: "+err.Error())
		return
	}

	writeData(w, "Successfully retrieved latest ingestion records", data)
}

// @Summary		Upload daily reports
// @Description	Ingests one or more daily station workbooks. Each file replaces the ledger rows of its date.
// @Tags			Ingestion
// @Accept			multipart/form-data
// @Produce		json
// @Param			files	formData	file					true	"Daily report workbooks"
// @Success		200		{object}	IngestionResponse		"Per-file results"
// @Failure		400		{object}	response.ErrorResponse	"No files in the request"
// @Router			/ingestion/daily [post]
func (app *application) handleIngestDaily(w http.ResponseWriter, r *http.Request) {
	app.handleUpload(w, r, types.DailyReport)
}

// @Summary		Upload nomination sheets
// @Description	Ingests one or more monthly nomination workbooks named Nominaciones_<Mes>.<Año>.
// @Tags			Ingestion
// @Accept			multipart/form-data
// @Produce		json
// @Param			files	formData	file					true	"Nomination workbooks"
// @Success		200		{object}	IngestionResponse		"Per-file results"
// @Failure		400		{object}	response.ErrorResponse	"No files in the request"
// @Router			/ingestion/nominations [post]
func (app *application) handleIngestNominations(w http.ResponseWriter, r *http.Request) {
	app.handleUpload(w, r, types.NominationReport)
}

func (app *application) handleUpload(w http.ResponseWriter, r *http.Request, kind types.ReportKind) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no files uploaded (field \"files\")")
		return
	}

	uploads := make([]ingest.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "failed to read "+fh.Filename+": "+err.Error())
			return
		}
		defer f.Close()
		uploads = append(uploads, ingest.Upload{Name: fh.Filename, Reader: f})
	}

	results := app.ingest.IngestBatch(r.Context(), kind, uploads)
	writeData(w, types.ReportKindNames[kind]+" processed", fileResults(results))
}

func fileResults(results []ingest.Result) []response.FileResult {
	out := make([]response.FileResult, 0, len(results))
	for _, res := range results {
		out = append(out, response.FileResult{
			File:    res.File,
			Status:  res.Status,
			Records: res.Records,
			Removed: res.Removed,
			Error:   res.Error,
		})
	}
	return out
}
