package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNilManagerIsSafe(t *testing.T) {
	var m *Manager
	m.IncURLsChecked()
	m.IncTracksAdded()
	m.IncTracksDeleted()
	m.IncDownloadsSuccess()
	m.ObservePassSeconds(time.Second)
	if err := m.Write(); err != nil {
		t.Fatalf("nil Write: %v", err)
	}
	if New("") != nil {
		t.Fatal("New(\"\") should disable metrics")
	}
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "musicsync.prom")
	m := New(path)
	m.IncURLsChecked()
	m.IncURLsChecked()
	m.IncTracksAdded()
	m.ObservePassSeconds(1500 * time.Millisecond)
	if err := m.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics file: %v", err)
	}
	out := string(b)
	for _, want := range []string{
		"# TYPE musicsync_urls_checked_total counter",
		"musicsync_urls_checked_total 2",
		"musicsync_tracks_added_total 1",
		"musicsync_last_pass_seconds 1.5",
		"musicsync_last_write_timestamp_seconds",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("tempfile left behind")
	}
}
