package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/jmoiron/sqlx"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

type Storage struct {
	Production interface {
		// Replace drops every record dated inside period and stores records instead.
		// It returns how many records were removed.
		Replace(ctx context.Context, period types.Period, records []types.ProductionRecord) (int, error)
		Query(ctx context.Context, filter ProductionFilter) ([]types.ProductionRecord, error)
	}

	Nominations interface {
		Replace(ctx context.Context, period types.Period, records []types.NominationRecord) (int, error)
		Query(ctx context.Context, filter NominationFilter) ([]types.NominationRecord, error)
	}

	IngestionHistory interface {
		InsertIngestionHistory(ctx context.Context, history *IngestionHistory) error
		GetLatest(ctx context.Context, kind types.ReportKind, limit int) ([]IngestionHistory, error)
		IsProcessed(ctx context.Context, kind types.ReportKind, sourceFile string) (bool, error)
	}
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		Production:       &ProductionStore{db: db},
		Nominations:      &NominationStore{db: db},
		IngestionHistory: &IngestionHistoryStore{db: db},
	}
}

// NewCSVStorage keeps the ledger as csv files under dir. textEncoding is
// "utf-8" (or empty) or "windows-1252".
func NewCSVStorage(dir, textEncoding string) (*Storage, error) {
	enc, err := lookupEncoding(textEncoding)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger dir %s: %w", dir, err)
	}

	mu := &sync.Mutex{}
	return &Storage{
		Production: &csvProductionStore{table: csvTable[types.ProductionRecord]{
			path:   filepath.Join(dir, "ledger.csv"),
			header: productionHeader,
			encode: encodeProduction,
			decode: decodeProduction,
			enc:    enc,
			mu:     mu,
		}},
		Nominations: &csvNominationStore{table: csvTable[types.NominationRecord]{
			path:   filepath.Join(dir, "nominations.csv"),
			header: nominationHeader,
			encode: encodeNomination,
			decode: decodeNomination,
			enc:    enc,
			mu:     mu,
		}},
		IngestionHistory: &csvHistoryStore{table: csvTable[IngestionHistory]{
			path:   filepath.Join(dir, "ingestion_history.csv"),
			header: historyHeader,
			encode: encodeHistory,
			decode: decodeHistory,
			enc:    enc,
			mu:     mu,
		}},
	}, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252", "latin1":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported ledger encoding %q", name)
	}
}
