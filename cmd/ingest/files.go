package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/farxc/odca-monitor/internal/odca/ingest"
)

// collectWorkbooks expands directories into the workbooks they hold, sorted by
// name. Files named explicitly are kept whatever their extension.
func collectWorkbooks(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read dir %s: %w", p, err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() || !ingest.IsWorkbook(e.Name()) || e.Name()[0] == '~' {
				continue
			}
			found = append(found, filepath.Join(p, e.Name()))
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}
