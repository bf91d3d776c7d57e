package main

import (
	"log"
	"net/http"
	"time"

	"github.com/farxc/odca-monitor/internal/catalog"
	"github.com/farxc/odca-monitor/internal/logger"
	"github.com/farxc/odca-monitor/internal/odca/ingest"
	"github.com/farxc/odca-monitor/internal/odca/report"
	"github.com/farxc/odca-monitor/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type application struct {
	config    config
	store     *store.Storage
	catalog   *catalog.Catalog
	ingest    *ingest.Service
	appLogger *logger.Logger
}

type config struct {
	addr        string
	ledger      store.Config
	catalogPath string
	reportsDir  string
	watchDir    string
	style       report.Style
	logLevel    string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.Get("/catalog", app.handleGetCatalog)
		r.Route("/ingestion", func(r chi.Router) {
			r.Get("/history", app.handleGetIngestionHistory)
			r.Post("/daily", app.handleIngestDaily)
			r.Post("/nominations", app.handleIngestNominations)
		})
		r.Route("/production", func(r chi.Router) {
			r.Get("/indicators", app.handleGetIndicators)
			r.Get("/participation", app.handleGetParticipation)
			r.Get("/history", app.handleGetNSVHistory)
			r.Get("/fields", app.handleGetFieldTotals)
			r.Get("/inventory", app.handleGetInventory)
			r.Get("/monthly", app.handleGetMonthlyAccumulation)
		})
		r.Route("/nominations", func(r chi.Router) {
			r.Get("/table", app.handleGetNominationTable)
			r.Get("/compliance", app.handleGetCompliance)
			r.Get("/transported", app.handleGetTransportedByOilType)
		})
		r.Route("/charts", func(r chi.Router) {
			r.Get("/inventory", app.handleInventoryChart)
			r.Get("/participation", app.handleParticipationChart)
			r.Get("/history", app.handleHistoryChart)
			r.Get("/compliance", app.handleComplianceChart)
		})
		r.Route("/reports", func(r chi.Router) {
			r.Get("/monthly", app.handleMonthlyReport)
			r.Get("/nominations", app.handleNominationsReport)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	log.Printf("Server started on %s", app.config.addr)
	return srv.ListenAndServe()
}
