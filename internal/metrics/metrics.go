// Package metrics writes pass counters in Prometheus textfile-collector
// format so the node exporter can scrape them from disk.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Manager accumulates counters for one process lifetime. All methods are safe
// on a nil receiver so callers need no enabled/disabled branching.
type Manager struct {
	mu       sync.Mutex
	path     string
	counters map[string]float64
	gauges   map[string]float64
}

// New returns a manager that writes to path on Write. An empty path yields a
// nil manager, which swallows all updates.
func New(path string) *Manager {
	if path == "" {
		return nil
	}
	return &Manager{
		path:     path,
		counters: make(map[string]float64),
		gauges:   make(map[string]float64),
	}
}

func (m *Manager) inc(name string, delta float64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.counters[name] += delta
	m.mu.Unlock()
}

func (m *Manager) set(name string, v float64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.gauges[name] = v
	m.mu.Unlock()
}

// IncURLsChecked counts one remote source checked during reconciliation.
func (m *Manager) IncURLsChecked() { m.inc("musicsync_urls_checked_total", 1) }

// IncTracksAdded counts one newly discovered remote track.
func (m *Manager) IncTracksAdded() { m.inc("musicsync_tracks_added_total", 1) }

// IncTracksDeleted counts one track record removed during sync.
func (m *Manager) IncTracksDeleted() { m.inc("musicsync_tracks_deleted_total", 1) }

// IncDownloadsSuccess counts one media file fetched to disk.
func (m *Manager) IncDownloadsSuccess() { m.inc("musicsync_downloads_success_total", 1) }

// ObservePassSeconds records the duration of the latest reconciliation pass.
func (m *Manager) ObservePassSeconds(d time.Duration) {
	m.set("musicsync_last_pass_seconds", d.Seconds())
}

// Write renders all metrics to the textfile path atomically via a temp file
// rename, stamping musicsync_last_write_timestamp_seconds.
func (m *Manager) Write() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gauges["musicsync_last_write_timestamp_seconds"] = float64(time.Now().Unix())

	lines := make([]string, 0, len(m.counters)+len(m.gauges))
	for name, v := range m.counters {
		lines = append(lines, fmt.Sprintf("# TYPE %s counter\n%s %g", name, name, v))
	}
	for name, v := range m.gauges {
		lines = append(lines, fmt.Sprintf("# TYPE %s gauge\n%s %g", name, name, v))
	}
	sort.Strings(lines)

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	tmp := m.path + ".tmp"
	var buf []byte
	for _, l := range lines {
		buf = append(buf, l...)
		buf = append(buf, '\n')
	}
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return fmt.Errorf("write metrics tempfile: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("publish metrics file: %w", err)
	}
	return nil
}
