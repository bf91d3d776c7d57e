package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/farxc/odca-monitor/internal/db"
	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse(types.DateLayout, s)
	return t
}

func production(date, company, operation, field string, gov, gsv, nsv float64) types.ProductionRecord {
	return types.ProductionRecord{Date: day(date), Company: company, Operation: operation, Field: field, GOV: gov, GSV: gsv, NSV: nsv}
}

func backends(t *testing.T) map[string]*Storage {
	t.Helper()

	csvStorage, err := NewCSVStorage(filepath.Join(t.TempDir(), "ledger"), "")
	require.NoError(t, err)

	conn, err := db.New("sqlite", filepath.Join(t.TempDir(), "ledger.db"), 1, 1, "1m")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, Migrate(context.Background(), conn))

	return map[string]*Storage{
		"csv":    csvStorage,
		"sqlite": NewStorage(conn),
	}
}

func TestProductionReplaceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			records := []types.ProductionRecord{
				production("2024-03-15", "GEOPARK", "DESPACHO POR REMITENTE", "JACANA ESTACION", 100, 99, 98),
				production("2024-03-15", "PAREX", "ENTREGA POR REMITENTE", "AKIRA", 10, 9, 8),
			}
			period := types.Day(day("2024-03-15"))

			removed, err := s.Production.Replace(ctx, period, records)
			require.NoError(t, err)
			assert.Equal(t, 0, removed)

			removed, err = s.Production.Replace(ctx, period, records)
			require.NoError(t, err)
			assert.Equal(t, 2, removed)

			got, err := s.Production.Query(ctx, ProductionFilter{})
			require.NoError(t, err)
			assert.Equal(t, records, got)
		})
	}
}

func TestProductionReplaceOnlyTouchesItsPeriod(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Production.Replace(ctx, types.Day(day("2024-03-14")), []types.ProductionRecord{
				production("2024-03-14", "GEOPARK", "DESPACHO POR REMITENTE", "AKIRA", 1, 1, 1),
			})
			require.NoError(t, err)
			_, err = s.Production.Replace(ctx, types.Day(day("2024-03-15")), []types.ProductionRecord{
				production("2024-03-15", "GEOPARK", "DESPACHO POR REMITENTE", "AKIRA", 2, 2, 2),
				production("2024-03-15", "GEOPARK", "DESPACHO POR REMITENTE", "CHIRICOCA", 3, 3, 3),
			})
			require.NoError(t, err)

			// corrected report for the 15th drops CHIRICOCA
			removed, err := s.Production.Replace(ctx, types.Day(day("2024-03-15")), []types.ProductionRecord{
				production("2024-03-15", "GEOPARK", "DESPACHO POR REMITENTE", "AKIRA", 5, 5, 5),
			})
			require.NoError(t, err)
			assert.Equal(t, 2, removed)

			got, err := s.Production.Query(ctx, ProductionFilter{})
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, 1.0, got[0].GOV)
			assert.Equal(t, 5.0, got[1].GOV)

			got, err = s.Production.Query(ctx, ProductionFilter{Period: types.Day(day("2024-03-14"))})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, day("2024-03-14"), got[0].Date)
		})
	}
}

func TestProductionQueryFilters(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Production.Replace(ctx, types.MonthPeriod(2024, time.March), []types.ProductionRecord{
				production("2024-03-02", "PAREX", "ENTREGA POR REMITENTE", "AKIRA", 1, 1, 1),
				production("2024-03-01", "GEOPARK", "DESPACHO POR REMITENTE", "AKIRA", 2, 2, 2),
				production("2024-03-01", "GEOPARK", "ENTREGA POR REMITENTE", "AKIRA", 3, 3, 3),
			})
			require.NoError(t, err)

			got, err := s.Production.Query(ctx, ProductionFilter{Company: "GEOPARK"})
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "DESPACHO POR REMITENTE", got[0].Operation)

			got, err = s.Production.Query(ctx, ProductionFilter{Operation: "ENTREGA POR REMITENTE"})
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "GEOPARK", got[0].Company)
			assert.Equal(t, "PAREX", got[1].Company)

			got, err = s.Production.Query(ctx, ProductionFilter{Period: types.Period{Start: day("2024-03-02")}})
			require.NoError(t, err)
			require.Len(t, got, 1)
		})
	}
}

func TestNominationsReplace(t *testing.T) {
	ctx := context.Background()
	march := types.MonthPeriod(2024, time.March)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			records := []types.NominationRecord{
				{Date: day("2024-03-01"), Company: "GEOPARK", OilType: "Jacana", Volume: 1000},
				{Date: day("2024-03-01"), Company: "PAREX", OilType: "Livianos", Volume: 80.5},
			}
			_, err := s.Nominations.Replace(ctx, march, records)
			require.NoError(t, err)
			removed, err := s.Nominations.Replace(ctx, march, records[:1])
			require.NoError(t, err)
			assert.Equal(t, 2, removed)

			got, err := s.Nominations.Query(ctx, NominationFilter{Period: march})
			require.NoError(t, err)
			assert.Equal(t, records[:1], got)

			got, err = s.Nominations.Query(ctx, NominationFilter{Company: "PAREX"})
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestIngestionHistory(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			first := &IngestionHistory{
				Kind:        types.DailyReport,
				SourceFile:  "REPORTE DIARIO 2024-03-15.xlsx",
				Period:      types.Day(day("2024-03-15")),
				Status:      StatusSuccess,
				Records:     12,
				ProcessedAt: time.Date(2024, 3, 16, 8, 0, 0, 0, time.UTC),
			}
			require.NoError(t, s.IngestionHistory.InsertIngestionHistory(ctx, first))
			assert.NotEmpty(t, first.ID)

			second := &IngestionHistory{
				Kind:        types.DailyReport,
				SourceFile:  "REPORTE DIARIO 2024-03-16.xlsx",
				Status:      StatusFailure,
				Error:       "invalid report date",
				ProcessedAt: time.Date(2024, 3, 17, 8, 0, 0, 0, time.UTC),
			}
			require.NoError(t, s.IngestionHistory.InsertIngestionHistory(ctx, second))
			require.NoError(t, s.IngestionHistory.InsertIngestionHistory(ctx, &IngestionHistory{
				Kind: types.NominationReport, SourceFile: "Nominaciones_Marzo.2024.xlsx", Status: StatusSuccess,
			}))

			latest, err := s.IngestionHistory.GetLatest(ctx, types.DailyReport, 10)
			require.NoError(t, err)
			require.Len(t, latest, 2)
			assert.Equal(t, second.ID, latest[0].ID)
			assert.Equal(t, "invalid report date", latest[0].Error)
			assert.Equal(t, first.Period, latest[1].Period)
			assert.Equal(t, 12, latest[1].Records)

			all, err := s.IngestionHistory.GetLatest(ctx, "", 1)
			require.NoError(t, err)
			assert.Len(t, all, 1)

			ok, err := s.IngestionHistory.IsProcessed(ctx, types.DailyReport, first.SourceFile)
			require.NoError(t, err)
			assert.True(t, ok)
			ok, err = s.IngestionHistory.IsProcessed(ctx, types.DailyReport, second.SourceFile)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestCSVStorageWindows1252(t *testing.T) {
	dir := t.TempDir()
	s, err := NewCSVStorage(dir, "windows-1252")
	require.NoError(t, err)

	records := []types.ProductionRecord{production("2024-03-15", "GEOPARK", "RECEPCIÓN", "CAÑO SUR", 1, 2, 3)}
	_, err = s.Production.Replace(context.Background(), types.Day(day("2024-03-15")), records)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "ledger.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "RECEPCI\xd3N")

	got, err := s.Production.Query(context.Background(), ProductionFilter{})
	require.NoError(t, err)
	assert.Equal(t, records, got)

	_, err = NewCSVStorage(dir, "ebcdic")
	assert.Error(t, err)
}

func TestCSVStorageRejectsForeignHeader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ledger.csv"), []byte("a,b,c,d,e,f,g\n"), 0o644))
	s, err := NewCSVStorage(dir, "")
	require.NoError(t, err)

	_, err = s.Production.Query(context.Background(), ProductionFilter{})
	assert.ErrorContains(t, err, "unexpected header")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, closer, err := Open(ctx, Config{Driver: "csv", DataDir: dir})
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	assert.NotNil(t, s.Production)

	s, closer, err = Open(ctx, Config{Driver: "sqlite", DataDir: dir, MaxOpenConns: 1, MaxIdleConns: 1, MaxIdleTime: "1m"})
	require.NoError(t, err)
	defer closer.Close()
	_, err = s.Production.Replace(ctx, types.Day(day("2024-03-15")), nil)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "ledger.db"))
	assert.NoError(t, err)

	_, _, err = Open(ctx, Config{Driver: "mongo"})
	assert.Error(t, err)
}
