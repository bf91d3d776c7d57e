package store

import (
	"context"
	"fmt"
	"time"

	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type IngestionHistoryStore struct {
	db *sqlx.DB
}

func fillHistory(h *IngestionHistory) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.ProcessedAt.IsZero() {
		h.ProcessedAt = time.Now().UTC()
	}
	h.ProcessedAt = h.ProcessedAt.Truncate(time.Second)
}

func (ih *IngestionHistoryStore) InsertIngestionHistory(ctx context.Context, history *IngestionHistory) error {
	fillHistory(history)

	query := `INSERT INTO ingestion_history (
		id,
		kind,
		source_file,
		period_start,
		period_end,
		status,
		records,
		removed,
		error,
		processed_at
	) VALUES (
		:id,
		:kind,
		:source_file,
		:period_start,
		:period_end,
		:status,
		:records,
		:removed,
		:error,
		:processed_at
	)`

	if _, err := ih.db.NamedExecContext(ctx, query, toHistoryRow(*history)); err != nil {
		return fmt.Errorf("failed to insert ingestion history: %w", err)
	}
	return nil
}

func (ih *IngestionHistoryStore) GetLatest(ctx context.Context, kind types.ReportKind, limit int) ([]IngestionHistory, error) {
	query := `SELECT id, kind, source_file, period_start, period_end, status, records, removed, error, processed_at
	FROM ingestion_history`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY processed_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []historyRow
	if err := ih.db.SelectContext(ctx, &rows, ih.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query ingestion history: %w", err)
	}
	out := make([]IngestionHistory, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.history())
	}
	return out, nil
}

func (ih *IngestionHistoryStore) IsProcessed(ctx context.Context, kind types.ReportKind, sourceFile string) (bool, error) {
	query := ih.db.Rebind(`SELECT COUNT(*) FROM ingestion_history WHERE kind = ? AND source_file = ? AND status = ?`)
	var n int
	if err := ih.db.GetContext(ctx, &n, query, string(kind), sourceFile, StatusSuccess); err != nil {
		return false, fmt.Errorf("failed to check ingestion history: %w", err)
	}
	return n > 0, nil
}
