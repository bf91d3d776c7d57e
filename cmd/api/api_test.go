package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/farxc/odca-monitor/internal/catalog"
	"github.com/farxc/odca-monitor/internal/logger"
	"github.com/farxc/odca-monitor/internal/odca/aggregate"
	"github.com/farxc/odca-monitor/internal/odca/ingest"
	"github.com/farxc/odca-monitor/internal/odca/parser"
	"github.com/farxc/odca-monitor/internal/odca/report"
	"github.com/farxc/odca-monitor/internal/response"
	"github.com/farxc/odca-monitor/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestApp(t *testing.T) *application {
	t.Helper()
	dir := t.TempDir()
	storage, err := store.NewCSVStorage(filepath.Join(dir, "data"), "")
	require.NoError(t, err)

	appLogger := logger.New(logger.LevelError)
	cat := catalog.Default()
	return &application{
		config: config{
			addr:       ":0",
			ledger:     store.Config{Driver: "csv", DataDir: filepath.Join(dir, "data")},
			reportsDir: filepath.Join(dir, "reports"),
			style:      report.DefaultStyle(),
		},
		store:     storage,
		catalog:   cat,
		ingest:    ingest.NewService(storage, appLogger, cat, parser.DefaultDailyLayout(), parser.DefaultNominationLayout()),
		appLogger: appLogger,
	}
}

func dailyWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	cells := map[string]any{
		"B5":  "GEOPARK",
		"B6":  "RECIBO POR REMITENTE TIGANA",
		"B7":  "JACANA ESTACION",
		"D7":  120,
		"E7":  110,
		"F7":  100,
		"B8":  "DESPACHO POR REMITENTE",
		"B9":  "JACANA ESTACION",
		"D9":  100,
		"E9":  90,
		"F9":  80,
		"B10": "PAREX",
		"B11": "DESPACHO POR REMITENTE",
		"B12": "CHIRICOCA",
		"D12": 50,
		"E12": 45,
		"F12": 20,
	}
	for cell, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", cell, v))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func upload(t *testing.T, mux http.Handler, path string, files map[string][]byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func get(mux http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var res response.APIResponse[T]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.True(t, res.Success)
	return res.Data
}

func seeded(t *testing.T) (*application, http.Handler) {
	t.Helper()
	app := newTestApp(t)
	mux := app.mount()
	rr := upload(t, mux, "/v1/ingestion/daily", map[string][]byte{
		"REPORTE DIARIO 2024-03-15.xlsx": dailyWorkbook(t),
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return app, mux
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)
	rr := get(app.mount(), "/v1/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "available")
}

func TestUploadDaily(t *testing.T) {
	app := newTestApp(t)
	mux := app.mount()

	rr := upload(t, mux, "/v1/ingestion/daily", map[string][]byte{
		"REPORTE DIARIO 2024-03-15.xlsx": dailyWorkbook(t),
	})
	require.Equal(t, http.StatusOK, rr.Code)
	results := decode[[]response.FileResult](t, rr)
	require.Len(t, results, 1)
	assert.Equal(t, store.StatusSuccess, results[0].Status)
	assert.Equal(t, 3, results[0].Records)

	rr = upload(t, mux, "/v1/ingestion/daily", map[string][]byte{
		"REPORTE DIARIO sin fecha.xlsx": dailyWorkbook(t),
	})
	require.Equal(t, http.StatusOK, rr.Code)
	results = decode[[]response.FileResult](t, rr)
	require.Len(t, results, 1)
	assert.Equal(t, store.StatusFailure, results[0].Status)
	assert.NotEmpty(t, results[0].Error)

	rr = get(mux, "/v1/ingestion/history?kind=daily&limit=5")
	require.Equal(t, http.StatusOK, rr.Code)
	history := decode[[]store.IngestionHistory](t, rr)
	assert.Len(t, history, 2)

	assert.Equal(t, http.StatusBadRequest, get(mux, "/v1/ingestion/history?kind=weekly").Code)
}

func TestUploadWithoutFiles(t *testing.T) {
	app := newTestApp(t)
	rr := upload(t, app.mount(), "/v1/ingestion/nominations", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestInventoryEndpoint(t *testing.T) {
	_, mux := seeded(t)

	rr := get(mux, "/v1/production/inventory?start_date=2024-03-01&end_date=2024-03-31&company=geopark")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	inv := decode[InventoryReport](t, rr)
	require.Len(t, inv.Fields, 1)
	assert.Equal(t, "JACANA ESTACION", inv.Fields[0].Field)
	assert.Equal(t, 110.0, inv.Fields[0].Received)
	assert.Equal(t, 90.0, inv.Fields[0].Transported)
	assert.Equal(t, 20.0, inv.Total.Inventory)
}

func TestParticipationAndMonthly(t *testing.T) {
	_, mux := seeded(t)

	rr := get(mux, "/v1/production/participation?start_date=2024-03-15&end_date=2024-03-15")
	require.Equal(t, http.StatusOK, rr.Code)
	shares := decode[[]aggregate.CompanyShare](t, rr)
	require.Len(t, shares, 2)
	total := 0.0
	for _, s := range shares {
		total += s.Percentage
	}
	assert.InDelta(t, 100, total, 0.02)

	rr = get(mux, "/v1/production/monthly?month=2024-03&company=PAREX")
	require.Equal(t, http.StatusOK, rr.Code)
	monthly := decode[MonthlyAccumulation](t, rr)
	require.Len(t, monthly.Fields, 1)
	assert.Equal(t, "CHIRICOCA", monthly.Fields[0].Field)
	assert.Equal(t, 45.0, monthly.Fields[0].GSV)

	rr = get(mux, "/v1/production/indicators?company=GEOPARK")
	require.Equal(t, http.StatusOK, rr.Code)
	ind := decode[aggregate.Indicators](t, rr)
	assert.Equal(t, 80.0, ind.Current.NSV)
}

func TestParameterErrors(t *testing.T) {
	_, mux := seeded(t)

	cases := []struct {
		path string
		want int
	}{
		{"/v1/production/inventory?company=ACME", http.StatusUnprocessableEntity},
		{"/v1/production/history?operation=BOMBEO", http.StatusUnprocessableEntity},
		{"/v1/production/participation?start_date=15/03/2024", http.StatusBadRequest},
		{"/v1/production/fields?measure=TOV", http.StatusBadRequest},
		{"/v1/production/monthly?month=marzo", http.StatusBadRequest},
		{"/v1/nominations/table?start_date=2024-03-31&end_date=2024-03-01", http.StatusBadRequest},
		{"/v1/reports/monthly", http.StatusBadRequest},
		{"/v1/reports/nominations", http.StatusBadRequest},
		{"/v1/reports/nominations?end_date=2024-03-31", http.StatusBadRequest},
	}
	for _, tc := range cases {
		rr := get(mux, tc.path)
		assert.Equal(t, tc.want, rr.Code, tc.path)
		assert.Contains(t, rr.Body.String(), `"error"`, tc.path)
	}
}

func TestEmptyLedgerStillAnswers(t *testing.T) {
	app := newTestApp(t)
	mux := app.mount()

	rr := get(mux, "/v1/nominations/table")
	require.Equal(t, http.StatusOK, rr.Code)
	table := decode[aggregate.NominationTable](t, rr)
	assert.Len(t, table.Columns, 15)
	assert.Empty(t, table.Rows)

	rr = get(mux, "/v1/nominations/compliance?company=verano")
	require.Equal(t, http.StatusOK, rr.Code)

	for _, chart := range []string{"inventory", "participation", "history", "compliance"} {
		rr := get(mux, "/v1/charts/"+chart)
		require.Equal(t, http.StatusOK, rr.Code, chart)
		assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")), chart)
	}
}

func TestMonthlyReportDownload(t *testing.T) {
	app, mux := seeded(t)

	rr := get(mux, "/v1/reports/monthly?month=2024-03")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "ACTA ODCA_Marzo-2024.xlsx")

	_, err := os.Stat(filepath.Join(app.config.reportsDir, "ACTA ODCA_Marzo-2024.xlsx"))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"ACTA"}, f.GetSheetList())
}

func TestNominationsReportDownload(t *testing.T) {
	app, mux := seeded(t)

	rr := get(mux, "/v1/reports/nominations?start_date=2024-03-01&end_date=2024-03-31")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "Nominaciones Marzo-2024.xlsx")

	_, err := os.Stat(filepath.Join(app.config.reportsDir, "Nominaciones Marzo-2024.xlsx"))
	assert.NoError(t, err)
}

func TestTransportedByOilType(t *testing.T) {
	_, mux := seeded(t)

	rr := get(mux, "/v1/nominations/transported?start_date=2024-03-01&end_date=2024-03-31")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	pivot := decode[aggregate.Pivot](t, rr)
	require.Len(t, pivot.Dates, 1)
	assert.Equal(t, []string{"Jacana", "Tigana", "Cabrestero", "Livianos"}, pivot.Columns)
	assert.Equal(t, []float64{80, 0, 0, 20}, pivot.Values[0])
}
