package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/farxc/odca-monitor/internal/logger"
	"github.com/farxc/odca-monitor/internal/odca/ingest"
	"github.com/fsnotify/fsnotify"
)

type Ingester interface {
	IngestFile(ctx context.Context, path string) ingest.Result
}

// Watcher ingests workbooks dropped into an inbox directory.
type Watcher struct {
	dir       string
	ingester  Ingester
	appLogger *logger.Logger

	// Settle is how long a file must stay quiet before it is read.
	Settle time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func New(dir string, ingester Ingester, appLogger *logger.Logger) *Watcher {
	return &Watcher{
		dir:       dir,
		ingester:  ingester,
		appLogger: appLogger,
		Settle:    2 * time.Second,
		pending:   make(map[string]*time.Timer),
	}
}

func accept(path string) bool {
	name := filepath.Base(path)
	// office lock files
	if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
		return false
	}
	return ingest.IsWorkbook(name)
}

// Start begins watching the inbox and returns; the watch ends when ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	const component = "Watcher"
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return err
	}
	w.appLogger.Info(component, "Watching inbox: dir=%s", w.dir)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				w.stopPending()
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 && accept(evt.Name) {
					w.schedule(ctx, evt.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.appLogger.Warn(component, "Watcher error: %v", err)
			}
		}
	}()
	return nil
}

// schedule ingests path once it has been quiet for Settle; every new event
// for the same path restarts the wait.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.Settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		w.ingest(ctx, path)
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	const component = "Watcher"
	// renamed away before it settled
	if _, err := os.Stat(path); err != nil {
		return
	}
	res := w.ingester.IngestFile(ctx, path)
	w.appLogger.Info(component, "Inbox file processed: file=%s status=%s records=%d", res.File, res.Status, res.Records)
}

// Backfill ingests the workbooks already in the inbox, oldest first.
func (w *Watcher) Backfill(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	type file struct {
		path    string
		modTime time.Time
	}
	var files []file
	for _, e := range entries {
		if e.IsDir() || !accept(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, file{path: filepath.Join(w.dir, e.Name()), modTime: info.ModTime()})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].modTime.Equal(files[j].modTime) {
			return files[i].modTime.Before(files[j].modTime)
		}
		return files[i].path < files[j].path
	})
	for _, f := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.ingest(ctx, f.path)
	}
	return nil
}
