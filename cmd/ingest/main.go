package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/farxc/odca-monitor/internal/catalog"
	"github.com/farxc/odca-monitor/internal/env"
	"github.com/farxc/odca-monitor/internal/logger"
	"github.com/farxc/odca-monitor/internal/odca/ingest"
	"github.com/farxc/odca-monitor/internal/odca/parser"
	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/farxc/odca-monitor/internal/odca/watch"
	"github.com/farxc/odca-monitor/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	const component = "Main"

	_ = godotenv.Load()

	// Configure log output format
	log.SetFlags(0)
	appLogger := logger.New(logger.ParseLevel(env.GetString("LOG_LEVEL", "info")))

	kindPtr := flag.String("kind", "", "Report kind: daily, nominations (default: by file name)")
	watchPtr := flag.Bool("watch", false, "Keep watching the given directory for new workbooks")
	logLevelPtr := flag.String("loglevel", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: ingest [-kind daily|nominations] [-watch] paths...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *logLevelPtr != "" {
		appLogger.SetLogLevel(logger.ParseLevel(*logLevelPtr))
	}

	var kind types.ReportKind
	if *kindPtr != "" {
		k, err := types.ParseReportKind(*kindPtr)
		if err != nil {
			appLogger.Fatal(component, "Invalid kind: %v", err)
		}
		kind = k
	}

	paths := flag.Args()
	if *watchPtr && len(paths) == 0 {
		if dir := env.GetString("WATCH_DIR", ""); dir != "" {
			paths = []string{dir}
		}
	}
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cat, err := catalog.Load(env.GetString("CATALOG_PATH", ""))
	if err != nil {
		appLogger.Fatal(component, "Catalog load failed: error=%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger := store.Config{
		Driver:       env.GetString("LEDGER_DRIVER", "csv"),
		DataDir:      env.GetString("DATA_DIR", "data"),
		Encoding:     env.GetString("LEDGER_ENCODING", "utf-8"),
		Addr:         env.GetString("DB_ADDR", ""),
		MaxOpenConns: env.GetInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns: env.GetInt("DB_MAX_IDLE_CONNS", 25),
		MaxIdleTime:  env.GetString("DB_MAX_IDLE_TIME", "15m"),
	}
	storage, closer, err := store.Open(ctx, ledger)
	if err != nil {
		appLogger.Fatal(component, "Ledger open failed: driver=%s error=%v", ledger.Driver, err)
	}
	defer closer.Close()

	daily, nominations := parser.LayoutsFromEnv()
	service := ingest.NewService(storage, appLogger, cat, daily, nominations)

	if *watchPtr {
		if err := watchInbox(ctx, watch.New(paths[0], service, appLogger), appLogger); err != nil {
			appLogger.Error(component, "Watcher failed: dir=%s error=%v", paths[0], err)
			closer.Close()
			os.Exit(1)
		}
		return
	}

	files, err := collectWorkbooks(paths)
	if err != nil {
		appLogger.Fatal(component, "Input error: %v", err)
	}

	monitor := newBatchMonitor()
	monitor.Start(400*time.Millisecond, appLogger)
	start := time.Now()

	runs := run(ctx, service, monitor, kind, files)

	stats := monitor.Stop()
	failed := summarize(os.Stdout, runs)
	appLogger.Info(component, "Ingestion finished: files=%d failed=%d elapsed=%s peakHeapMB=%d peakGoroutines=%d",
		len(runs), failed, time.Since(start).Round(time.Millisecond), stats.PeakHeapMB, stats.PeakGoroutines)
	if failed > 0 {
		closer.Close()
		os.Exit(1)
	}
}

// watchInbox ingests what is already in the inbox, then keeps ingesting new
// workbooks until ctx is done.
func watchInbox(ctx context.Context, w *watch.Watcher, appLogger *logger.Logger) error {
	const component = "Inbox"
	if err := w.Backfill(ctx); err != nil {
		return fmt.Errorf("backfill: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	appLogger.Info(component, "Watcher stopped: %v", context.Cause(ctx))
	return nil
}

// run ingests files in order. Without a kind each file is classified by its name.
func run(ctx context.Context, service *ingest.Service, monitor *batchMonitor, kind types.ReportKind, files []string) []fileRun {
	runs := make([]fileRun, 0, len(files))
	for _, path := range files {
		runs = append(runs, monitor.Track(func() ingest.Result {
			if kind == "" {
				return service.IngestFile(ctx, path)
			}
			f, err := os.Open(path)
			if err != nil {
				return service.Ingest(ctx, kind, filepath.Base(path), failingReader{err})
			}
			defer f.Close()
			return service.Ingest(ctx, kind, filepath.Base(path), f)
		}))
	}
	return runs
}

// summarize prints one line per file and returns how many failed.
func summarize(w io.Writer, runs []fileRun) int {
	failed := 0
	for _, r := range runs {
		elapsed := r.Elapsed.Round(time.Millisecond)
		if r.Status != store.StatusSuccess {
			failed++
			fmt.Fprintf(w, "FAIL  %s: %s [%s]\n", r.File, r.Error, elapsed)
			continue
		}
		fmt.Fprintf(w, "OK    %s (%s) records=%d removed=%d skipped=%d [%s heap=%dMB]\n",
			r.File, r.Period, r.Records, r.Removed, r.Skipped, elapsed, r.HeapMB)
	}
	return failed
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }
