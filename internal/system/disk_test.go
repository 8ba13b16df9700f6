package system

import (
	"path/filepath"
	"testing"
)

func TestAvailableSpace(t *testing.T) {
	if _, err := AvailableSpace(t.TempDir()); err != nil {
		t.Fatalf("AvailableSpace: %v", err)
	}
	if _, err := AvailableSpace(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("AvailableSpace on a missing path succeeded")
	}
}

func TestLowSpaceThresholds(t *testing.T) {
	dir := t.TempDir()
	if low, err := LowSpace(dir, 0); err != nil || !low {
		t.Errorf("LowSpace(0%%) = %v, %v; want true", low, err)
	}
	if low, err := LowSpace(dir, 101); err != nil || low {
		t.Errorf("LowSpace(101%%) = %v, %v; want false", low, err)
	}
}
