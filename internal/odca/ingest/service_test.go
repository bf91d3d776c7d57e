package ingest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/farxc/odca-monitor/internal/catalog"
	"github.com/farxc/odca-monitor/internal/logger"
	"github.com/farxc/odca-monitor/internal/odca/parser"
	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/farxc/odca-monitor/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, cells map[string]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for axis, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", axis, v))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func dailyReport(t *testing.T, gov float64, withChiricoca bool) []byte {
	cells := map[string]any{
		"B5": "GEOPARK",
		"B6": "DESPACHO POR REMITENTE",
		"B7": "AKIRA",
		"D7": gov,
		"E7": gov - 1,
		"F7": gov - 2,
	}
	if withChiricoca {
		cells["B8"] = "CHIRICOCA"
		cells["D8"] = 10
	}
	return workbook(t, cells)
}

func newService(t *testing.T) (*Service, *store.Storage) {
	t.Helper()
	storage, err := store.NewCSVStorage(t.TempDir(), "")
	require.NoError(t, err)
	svc := NewService(storage, logger.New(logger.LevelError), catalog.Default(), parser.DefaultDailyLayout(), parser.DefaultNominationLayout())
	return svc, storage
}

func TestIngestDailyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, storage := newService(t)
	name := "REPORTE DIARIO 2024-03-15.xlsx"
	data := dailyReport(t, 100, true)

	first := svc.IngestDaily(ctx, name, bytes.NewReader(data))
	require.Equal(t, store.StatusSuccess, first.Status, first.Error)
	assert.Equal(t, 2, first.Records)
	assert.Equal(t, 0, first.Removed)
	before, err := storage.Production.Query(ctx, store.ProductionFilter{})
	require.NoError(t, err)

	second := svc.IngestDaily(ctx, name, bytes.NewReader(data))
	require.Equal(t, store.StatusSuccess, second.Status)
	assert.Equal(t, 2, second.Removed)
	after, err := storage.Production.Query(ctx, store.ProductionFilter{})
	require.NoError(t, err)
	assert.Equal(t, before, after)

	history, err := storage.IngestionHistory.GetLatest(ctx, types.DailyReport, 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestIngestDailyCorrectedReportReplacesDay(t *testing.T) {
	ctx := context.Background()
	svc, storage := newService(t)

	require.Equal(t, store.StatusSuccess, svc.IngestDaily(ctx, "REPORTE DIARIO 2024-03-14.xlsx", bytes.NewReader(dailyReport(t, 50, false))).Status)
	require.Equal(t, store.StatusSuccess, svc.IngestDaily(ctx, "REPORTE DIARIO 2024-03-15.xlsx", bytes.NewReader(dailyReport(t, 100, true))).Status)
	// a corrected report carries a different file name for the same day
	res := svc.IngestDaily(ctx, "REPORTE DIARIO 2024-03-15 corregido.xlsx", bytes.NewReader(dailyReport(t, 120, false)))
	require.Equal(t, store.StatusSuccess, res.Status, res.Error)
	assert.Equal(t, 2, res.Removed)

	got, err := storage.Production.Query(ctx, store.ProductionFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 50.0, got[0].GOV)
	assert.Equal(t, 120.0, got[1].GOV)
	assert.Equal(t, types.Day(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)), res.Period)
}

func TestIngestBatchContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	svc, storage := newService(t)

	results := svc.IngestBatch(ctx, types.DailyReport, []Upload{
		{Name: "REPORTE DIARIO sin fecha.xlsx", Reader: bytes.NewReader(dailyReport(t, 1, false))},
		{Name: "REPORTE DIARIO 2024-03-15.xlsx", Reader: bytes.NewReader([]byte("not a workbook"))},
		{Name: "REPORTE DIARIO 2024-03-16.xlsx", Reader: bytes.NewReader(dailyReport(t, 100, false))},
	})
	require.Len(t, results, 3)
	assert.Equal(t, store.StatusFailure, results[0].Status)
	assert.Contains(t, results[0].Error, parser.ErrInvalidReportDate.Error())
	assert.Equal(t, store.StatusFailure, results[1].Status)
	assert.Equal(t, store.StatusSuccess, results[2].Status)
	assert.Equal(t, 1, results[2].Records)

	got, err := storage.Production.Query(ctx, store.ProductionFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	history, err := storage.IngestionHistory.GetLatest(ctx, types.DailyReport, 0)
	require.NoError(t, err)
	assert.Len(t, history, 3)
	ok, err := storage.IngestionHistory.IsProcessed(ctx, types.DailyReport, "REPORTE DIARIO 2024-03-15.xlsx")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIngestNominationsAndFile(t *testing.T) {
	ctx := context.Background()
	svc, storage := newService(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "Nominaciones_Marzo.2024.xlsx")
	require.NoError(t, os.WriteFile(path, workbook(t, map[string]any{
		"A5": "2024-03-01",
		"B5": 1000,
		"H5": 80,
		"A6": "2024-04-01",
		"B6": 1,
	}), 0o644))

	res := svc.IngestFile(ctx, path)
	require.Equal(t, store.StatusSuccess, res.Status, res.Error)
	assert.Equal(t, types.NominationReport, res.Kind)
	assert.Equal(t, 7, res.Records)
	assert.Equal(t, 1, res.Skipped)

	noms, err := storage.Nominations.Query(ctx, store.NominationFilter{Company: "PAREX"})
	require.NoError(t, err)
	require.Len(t, noms, 4)
	assert.Equal(t, "Livianos", noms[2].OilType)
	assert.Equal(t, 80.0, noms[2].Volume)

	missing := svc.IngestFile(ctx, filepath.Join(dir, "REPORTE DIARIO 2024-03-15.xlsx"))
	assert.Equal(t, store.StatusFailure, missing.Status)
	assert.Equal(t, types.DailyReport, missing.Kind)
}

func TestKindOfAndIsWorkbook(t *testing.T) {
	assert.Equal(t, types.NominationReport, KindOf("/inbox/nominaciones_Marzo.2024.xlsx"))
	assert.Equal(t, types.DailyReport, KindOf("REPORTE DIARIO 2024-03-15.xlsx"))
	assert.True(t, IsWorkbook("a.XLSX"))
	assert.True(t, IsWorkbook("a.xlsm"))
	assert.False(t, IsWorkbook("a.csv"))
	assert.False(t, IsWorkbook("~$a"))
}
