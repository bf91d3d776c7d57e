package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/farxc/odca-monitor/internal/catalog"
	"github.com/farxc/odca-monitor/internal/logger"
	"github.com/farxc/odca-monitor/internal/odca/parser"
	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/farxc/odca-monitor/internal/store"
)

// NominationPrefix starts the file name of every monthly nomination sheet.
const NominationPrefix = "Nominaciones_"

// Upload is one file of a batch.
type Upload struct {
	Name   string
	Reader io.Reader
}

// Result is the outcome of ingesting one file.
type Result struct {
	File    string           `json:"file"`
	Kind    types.ReportKind `json:"kind"`
	Status  string           `json:"status"`
	Period  types.Period     `json:"period"`
	Records int              `json:"records"`
	Removed int              `json:"removed"`
	Skipped int              `json:"skipped"`
	Error   string           `json:"error,omitempty"`
}

type Service struct {
	storage           *store.Storage
	appLogger         *logger.Logger
	catalog           *catalog.Catalog
	dailyLayout       parser.DailyLayout
	nominationsLayout parser.NominationLayout

	// serializes parse-then-replace so overlapping uploads cannot interleave
	mu sync.Mutex
}

func NewService(storage *store.Storage, appLogger *logger.Logger, cat *catalog.Catalog, daily parser.DailyLayout, nominations parser.NominationLayout) *Service {
	return &Service{
		storage:           storage,
		appLogger:         appLogger,
		catalog:           cat,
		dailyLayout:       daily,
		nominationsLayout: nominations,
	}
}

// KindOf tells daily reports from nomination sheets by file name.
func KindOf(filename string) types.ReportKind {
	if strings.HasPrefix(strings.ToLower(filepath.Base(filename)), strings.ToLower(NominationPrefix)) {
		return types.NominationReport
	}
	return types.DailyReport
}

// IsWorkbook reports whether the file name has a spreadsheet extension the parser reads.
func IsWorkbook(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

func (s *Service) IngestDaily(ctx context.Context, filename string, r io.Reader) Result {
	return ingest(ctx, s, types.DailyReport, filename,
		func() (parser.Result[types.ProductionRecord], error) {
			return parser.ParseDaily(r, filename, s.dailyLayout, s.catalog)
		},
		s.storage.Production.Replace,
	)
}

func (s *Service) IngestNominations(ctx context.Context, filename string, r io.Reader) Result {
	return ingest(ctx, s, types.NominationReport, filename,
		func() (parser.Result[types.NominationRecord], error) {
			return parser.ParseNominations(r, filename, s.nominationsLayout, s.catalog)
		},
		s.storage.Nominations.Replace,
	)
}

// Ingest dispatches to IngestDaily or IngestNominations.
func (s *Service) Ingest(ctx context.Context, kind types.ReportKind, filename string, r io.Reader) Result {
	if kind == types.NominationReport {
		return s.IngestNominations(ctx, filename, r)
	}
	return s.IngestDaily(ctx, filename, r)
}

// IngestBatch ingests uploads in order. A failed file does not stop the rest.
func (s *Service) IngestBatch(ctx context.Context, kind types.ReportKind, uploads []Upload) []Result {
	const component = "Ingest-Batch"
	results := make([]Result, 0, len(uploads))
	failed := 0
	for _, u := range uploads {
		if ctx.Err() != nil {
			results = append(results, Result{File: u.Name, Kind: kind, Status: store.StatusFailure, Error: ctx.Err().Error()})
			failed++
			continue
		}
		res := s.Ingest(ctx, kind, u.Name, u.Reader)
		if res.Status != store.StatusSuccess {
			failed++
		}
		results = append(results, res)
	}
	s.appLogger.Info(component, "Batch finished: kind=%s files=%d failed=%d", kind, len(uploads), failed)
	return results
}

// IngestFile ingests a workbook from disk, choosing the kind by its name.
func (s *Service) IngestFile(ctx context.Context, path string) Result {
	name := filepath.Base(path)
	kind := KindOf(name)
	f, err := os.Open(path)
	if err != nil {
		return s.fail(ctx, Result{File: name, Kind: kind}, fmt.Errorf("failed to open %s: %w", path, err))
	}
	defer f.Close()
	return s.Ingest(ctx, kind, name, f)
}

func ingest[T any](
	ctx context.Context,
	s *Service,
	kind types.ReportKind,
	filename string,
	parse func() (parser.Result[T], error),
	replace func(context.Context, types.Period, []T) (int, error),
) Result {
	component := "Ingest-" + string(kind)
	res := Result{File: filename, Kind: kind}

	s.mu.Lock()
	defer s.mu.Unlock()

	parsed, err := parse()
	if err != nil {
		return s.fail(ctx, res, err)
	}
	res.Period = parsed.Period
	res.Skipped = parsed.Skipped
	if parsed.Skipped > 0 {
		s.appLogger.Warn(component, "Rows skipped: file=%s skipped=%d", filename, parsed.Skipped)
	}

	if seen, err := s.storage.IngestionHistory.IsProcessed(ctx, kind, filename); err != nil {
		s.appLogger.Warn(component, "Failed to check history: file=%s err=%v", filename, err)
	} else if seen {
		s.appLogger.Info(component, "Reprocessing file: file=%s period=%s", filename, parsed.Period)
	}

	removed, err := replace(ctx, parsed.Period, parsed.Records)
	if err != nil {
		return s.fail(ctx, res, fmt.Errorf("failed to store %s: %w", filename, err))
	}
	res.Status = store.StatusSuccess
	res.Records = len(parsed.Records)
	res.Removed = removed

	s.record(ctx, res)
	s.appLogger.Info(component, "File ingested: file=%s period=%s records=%d removed=%d", filename, parsed.Period, res.Records, res.Removed)
	return res
}

func (s *Service) fail(ctx context.Context, res Result, err error) Result {
	const component = "Ingest"
	res.Status = store.StatusFailure
	res.Error = err.Error()
	s.appLogger.Error(component, "File rejected: file=%s kind=%s err=%v", res.File, res.Kind, err)
	s.record(ctx, res)
	return res
}

func (s *Service) record(ctx context.Context, res Result) {
	const component = "Ingest-History"
	history := &store.IngestionHistory{
		Kind:       res.Kind,
		SourceFile: res.File,
		Period:     res.Period,
		Status:     res.Status,
		Records:    res.Records,
		Removed:    res.Removed,
		Error:      res.Error,
	}
	if err := s.storage.IngestionHistory.InsertIngestionHistory(ctx, history); err != nil {
		s.appLogger.Error(component, "Failed to record ingestion: file=%s err=%v", res.File, err)
	}
}
