package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/farxc/odca-monitor/internal/db"
)

// Config selects and configures a ledger backend.
type Config struct {
	Driver       string // csv, postgres or sqlite
	DataDir      string
	Encoding     string
	Addr         string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the Storage for cfg. The returned closer releases the database
// pool, if any.
func Open(ctx context.Context, cfg Config) (*Storage, io.Closer, error) {
	switch cfg.Driver {
	case "", "csv":
		s, err := NewCSVStorage(cfg.DataDir, cfg.Encoding)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case "postgres", "sqlite":
		addr := cfg.Addr
		if cfg.Driver == "sqlite" && addr == "" {
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("failed to create ledger dir %s: %w", cfg.DataDir, err)
			}
			addr = filepath.Join(cfg.DataDir, "ledger.db")
		}
		conn, err := db.New(cfg.Driver, addr, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.MaxIdleTime)
		if err != nil {
			return nil, nil, err
		}
		if err := Migrate(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return NewStorage(conn), conn, nil
	default:
		return nil, nil, fmt.Errorf("unknown ledger driver %q", cfg.Driver)
	}
}
