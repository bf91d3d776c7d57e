package main

import (
	"runtime"
	"sync"
	"time"

	"github.com/farxc/odca-monitor/internal/logger"
	"github.com/farxc/odca-monitor/internal/odca/ingest"
)

type ProfilerStats struct {
	PeakGoroutines int
	PeakHeapMB     uint64
}

// fileRun is one ingested workbook with the time it took and the heap in use
// once it was stored.
type fileRun struct {
	ingest.Result
	Elapsed time.Duration
	HeapMB  uint64
}

// batchMonitor times each file of a batch and keeps the memory peaks seen
// while the batch runs. Large workbooks peak during parsing, so a ticker
// samples between the per-file readings.
type batchMonitor struct {
	mu    sync.Mutex
	stats ProfilerStats
	done  chan struct{}
}

func newBatchMonitor() *batchMonitor {
	return &batchMonitor{done: make(chan struct{})}
}

func (m *batchMonitor) Start(interval time.Duration, appLogger *logger.Logger) {
	const component = "Monitor"
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				heap := m.sample()
				appLogger.Debug(component, "heapMB=%d goroutines=%d", heap, runtime.NumGoroutine())
			case <-m.done:
				return
			}
		}
	}()
}

func (m *batchMonitor) sample() uint64 {
	var mStats runtime.MemStats
	runtime.ReadMemStats(&mStats)
	heap := mStats.HeapAlloc / 1024 / 1024

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.PeakGoroutines = max(m.stats.PeakGoroutines, runtime.NumGoroutine())
	m.stats.PeakHeapMB = max(m.stats.PeakHeapMB, heap)
	return heap
}

// Track runs one ingestion and records its duration and the heap after it.
func (m *batchMonitor) Track(ingestFile func() ingest.Result) fileRun {
	start := time.Now()
	res := ingestFile()
	return fileRun{Result: res, Elapsed: time.Since(start), HeapMB: m.sample()}
}

func (m *batchMonitor) Stop() ProfilerStats {
	close(m.done)
	m.sample()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}
