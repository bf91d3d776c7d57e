package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/farxc/odca-monitor/internal/logger"
	"github.com/farxc/odca-monitor/internal/odca/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIngester struct {
	mock.Mock
}

func (m *mockIngester) IngestFile(ctx context.Context, path string) ingest.Result {
	args := m.Called(ctx, path)
	return args.Get(0).(ingest.Result)
}

type chanIngester chan string

func (c chanIngester) IngestFile(ctx context.Context, path string) ingest.Result {
	c <- path
	return ingest.Result{File: filepath.Base(path), Status: "success"}
}

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestBackfillIngestsWorkbooksOldestFirst(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	older := filepath.Join(dir, "REPORTE DIARIO 2024-03-15.xlsx")
	newer := filepath.Join(dir, "Nominaciones_Marzo.2024.xlsm")
	touch(t, newer, now)
	touch(t, older, now.Add(-time.Hour))
	touch(t, filepath.Join(dir, "notes.txt"), now)
	touch(t, filepath.Join(dir, "~$REPORTE DIARIO 2024-03-15.xlsx"), now)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.xlsx"), 0o755))

	m := &mockIngester{}
	var order []string
	m.On("IngestFile", mock.Anything, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { order = append(order, args.String(1)) }).
		Return(ingest.Result{Status: "success"})

	w := New(dir, m, logger.New(logger.LevelError))
	require.NoError(t, w.Backfill(context.Background()))

	m.AssertNumberOfCalls(t, "IngestFile", 2)
	assert.Equal(t, []string{older, newer}, order)
}

func TestWatcherIngestsDroppedFiles(t *testing.T) {
	dir := t.TempDir()
	got := make(chanIngester, 4)
	w := New(dir, got, logger.New(logger.LevelError))
	w.Settle = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	path := filepath.Join(dir, "REPORTE DIARIO 2024-03-15.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.csv"), []byte("x"), 0o644))

	select {
	case p := <-got:
		assert.Equal(t, path, p)
	case <-time.After(5 * time.Second):
		t.Fatal("dropped workbook was not ingested")
	}

	// several writes to one file settle into a single ingestion
	select {
	case p := <-got:
		t.Fatalf("unexpected second ingestion of %s", p)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestStartFailsOnMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), make(chanIngester), logger.New(logger.LevelError))
	assert.Error(t, w.Start(context.Background()))
}
