package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/farxc/odca-monitor/internal/catalog"
	"github.com/farxc/odca-monitor/internal/env"
	"github.com/farxc/odca-monitor/internal/logger"
	"github.com/farxc/odca-monitor/internal/odca/ingest"
	"github.com/farxc/odca-monitor/internal/odca/parser"
	"github.com/farxc/odca-monitor/internal/odca/report"
	"github.com/farxc/odca-monitor/internal/odca/watch"
	"github.com/farxc/odca-monitor/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded, using process environment")
	}

	cfg := config{
		addr: env.GetString("ADDR", ":8080"),
		ledger: store.Config{
			Driver:       env.GetString("LEDGER_DRIVER", "csv"),
			DataDir:      env.GetString("DATA_DIR", "data"),
			Encoding:     env.GetString("LEDGER_ENCODING", "utf-8"),
			Addr:         env.GetString("DB_ADDR", ""),
			MaxOpenConns: env.GetInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: env.GetInt("DB_MAX_IDLE_CONNS", 25),
			MaxIdleTime:  env.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
		catalogPath: env.GetString("CATALOG_PATH", ""),
		reportsDir:  env.GetString("REPORTS_DIR", "reports"),
		watchDir:    env.GetString("WATCH_DIR", ""),
		style: report.Style{
			Background: env.GetString("REPORT_BACKGROUND", report.DefaultStyle().Background),
			Font:       env.GetString("REPORT_FONT", report.DefaultStyle().Font),
		},
		logLevel: env.GetString("LOG_LEVEL", "info"),
	}

	appLogger := logger.New(logger.ParseLevel(cfg.logLevel))

	cat, err := catalog.Load(cfg.catalogPath)
	if err != nil {
		log.Panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, closer, err := store.Open(ctx, cfg.ledger)
	if err != nil {
		log.Panic(err)
	}
	defer closer.Close()
	log.Printf("Ledger opened: driver=%s", cfg.ledger.Driver)

	daily, nominations := parser.LayoutsFromEnv()
	service := ingest.NewService(storage, appLogger, cat, daily, nominations)

	if cfg.watchDir != "" {
		watcher := watch.New(cfg.watchDir, service, appLogger)
		go func() {
			const component = "Inbox"
			if err := watcher.Backfill(ctx); err != nil {
				appLogger.Error(component, "Backfill failed: dir=%s err=%v", cfg.watchDir, err)
			}
			if err := watcher.Start(ctx); err != nil {
				appLogger.Error(component, "Watcher stopped: dir=%s err=%v", cfg.watchDir, err)
			}
		}()
	}

	app := &application{
		config:    cfg,
		store:     storage,
		catalog:   cat,
		ingest:    service,
		appLogger: appLogger,
	}

	mux := app.mount()

	log.Fatal(app.run(mux))
}
