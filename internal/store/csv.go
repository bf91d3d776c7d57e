package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/farxc/odca-monitor/internal/odca/types"
	"golang.org/x/text/encoding"
)

var (
	productionHeader = []string{"date", "company", "operation", "field", "GOV", "GSV", "NSV"}
	nominationHeader = []string{"date", "company", "oil_type", "nominated"}
	historyHeader    = []string{"id", "kind", "source_file", "period_start", "period_end", "status", "records", "removed", "error", "processed_at"}
)

// csvTable is one append-ordered csv file. Every write goes to a temp file
// that is renamed over the original.
type csvTable[T any] struct {
	path   string
	header []string
	encode func(T) []string
	decode func([]string) (T, error)
	enc    encoding.Encoding
	mu     *sync.Mutex
}

func (t *csvTable[T]) load() ([]T, error) {
	f, err := os.Open(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if t.enc != nil {
		r = t.enc.NewDecoder().Reader(f)
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(t.header)

	lines, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", t.path, err)
	}
	if len(lines) == 0 {
		return nil, nil
	}
	if !slices.Equal(lines[0], t.header) {
		return nil, fmt.Errorf("%s: unexpected header %v", t.path, lines[0])
	}

	rows := make([]T, 0, len(lines)-1)
	for i, line := range lines[1:] {
		row, err := t.decode(line)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", t.path, i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *csvTable[T]) write(rows []T) error {
	tmp, err := os.CreateTemp(filepath.Dir(t.path), filepath.Base(t.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	var w io.Writer = tmp
	var encoded io.Closer
	if t.enc != nil {
		w = t.enc.NewEncoder().Writer(tmp)
		encoded, _ = w.(io.Closer)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.header); err != nil {
		tmp.Close()
		return err
	}
	for _, row := range rows {
		if err := cw.Write(t.encode(row)); err != nil {
			tmp.Close()
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", t.path, err)
	}
	if encoded != nil {
		if err := encoded.Close(); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), t.path)
}

// replace drops the rows inside period and appends fresh ones.
func (t *csvTable[T]) replace(period types.Period, dateOf func(T) time.Time, fresh []T) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, err := t.load()
	if err != nil {
		return 0, err
	}
	kept := rows[:0]
	for _, row := range rows {
		if !period.Contains(dateOf(row)) {
			kept = append(kept, row)
		}
	}
	removed := len(rows) - len(kept)
	if err := t.write(append(kept, fresh...)); err != nil {
		return 0, err
	}
	return removed, nil
}

func (t *csvTable[T]) all() ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func encodeProduction(r types.ProductionRecord) []string {
	row := toProductionRow(r)
	return []string{row.Date, row.Company, row.Operation, row.Field, formatFloat(row.GOV), formatFloat(row.GSV), formatFloat(row.NSV)}
}

func decodeProduction(line []string) (types.ProductionRecord, error) {
	row := productionRow{Date: line[0], Company: line[1], Operation: line[2], Field: line[3]}
	var err error
	if row.GOV, err = strconv.ParseFloat(line[4], 64); err != nil {
		return types.ProductionRecord{}, err
	}
	if row.GSV, err = strconv.ParseFloat(line[5], 64); err != nil {
		return types.ProductionRecord{}, err
	}
	if row.NSV, err = strconv.ParseFloat(line[6], 64); err != nil {
		return types.ProductionRecord{}, err
	}
	return row.record()
}

func encodeNomination(r types.NominationRecord) []string {
	row := toNominationRow(r)
	return []string{row.Date, row.Company, row.OilType, formatFloat(row.Volume)}
}

func decodeNomination(line []string) (types.NominationRecord, error) {
	v, err := strconv.ParseFloat(line[3], 64)
	if err != nil {
		return types.NominationRecord{}, err
	}
	return nominationRow{Date: line[0], Company: line[1], OilType: line[2], Volume: v}.record()
}

func encodeHistory(h IngestionHistory) []string {
	row := toHistoryRow(h)
	return []string{
		row.ID, row.Kind, row.SourceFile, row.PeriodStart, row.PeriodEnd, row.Status,
		strconv.Itoa(row.Records), strconv.Itoa(row.Removed), row.Error, row.ProcessedAt,
	}
}

func decodeHistory(line []string) (IngestionHistory, error) {
	row := historyRow{
		ID: line[0], Kind: line[1], SourceFile: line[2], PeriodStart: line[3], PeriodEnd: line[4],
		Status: line[5], Error: line[8], ProcessedAt: line[9],
	}
	var err error
	if row.Records, err = strconv.Atoi(line[6]); err != nil {
		return IngestionHistory{}, err
	}
	if row.Removed, err = strconv.Atoi(line[7]); err != nil {
		return IngestionHistory{}, err
	}
	return row.history(), nil
}

type csvProductionStore struct {
	table csvTable[types.ProductionRecord]
}

func (s *csvProductionStore) Replace(ctx context.Context, period types.Period, records []types.ProductionRecord) (int, error) {
	return s.table.replace(period, func(r types.ProductionRecord) time.Time { return r.Date }, records)
}

func (s *csvProductionStore) Query(ctx context.Context, filter ProductionFilter) ([]types.ProductionRecord, error) {
	rows, err := s.table.all()
	if err != nil {
		return nil, err
	}
	var out []types.ProductionRecord
	for _, r := range rows {
		if !filter.Period.Matches(r.Date) {
			continue
		}
		if filter.Company != "" && r.Company != filter.Company {
			continue
		}
		if filter.Operation != "" && r.Operation != filter.Operation {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return lessProduction(out[i], out[j]) })
	return out, nil
}

type csvNominationStore struct {
	table csvTable[types.NominationRecord]
}

func (s *csvNominationStore) Replace(ctx context.Context, period types.Period, records []types.NominationRecord) (int, error) {
	return s.table.replace(period, func(r types.NominationRecord) time.Time { return r.Date }, records)
}

func (s *csvNominationStore) Query(ctx context.Context, filter NominationFilter) ([]types.NominationRecord, error) {
	rows, err := s.table.all()
	if err != nil {
		return nil, err
	}
	var out []types.NominationRecord
	for _, r := range rows {
		if !filter.Period.Matches(r.Date) {
			continue
		}
		if filter.Company != "" && r.Company != filter.Company {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return lessNomination(out[i], out[j]) })
	return out, nil
}

type csvHistoryStore struct {
	table csvTable[IngestionHistory]
}

func (s *csvHistoryStore) InsertIngestionHistory(ctx context.Context, history *IngestionHistory) error {
	fillHistory(history)

	s.table.mu.Lock()
	defer s.table.mu.Unlock()
	rows, err := s.table.load()
	if err != nil {
		return err
	}
	return s.table.write(append(rows, *history))
}

func (s *csvHistoryStore) GetLatest(ctx context.Context, kind types.ReportKind, limit int) ([]IngestionHistory, error) {
	rows, err := s.table.all()
	if err != nil {
		return nil, err
	}
	var out []IngestionHistory
	for i := len(rows) - 1; i >= 0; i-- {
		if kind != "" && rows[i].Kind != kind {
			continue
		}
		out = append(out, rows[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProcessedAt.After(out[j].ProcessedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *csvHistoryStore) IsProcessed(ctx context.Context, kind types.ReportKind, sourceFile string) (bool, error) {
	rows, err := s.table.all()
	if err != nil {
		return false, err
	}
	for _, h := range rows {
		if h.Kind == kind && h.SourceFile == sourceFile && h.Status == StatusSuccess {
			return true, nil
		}
	}
	return false, nil
}
