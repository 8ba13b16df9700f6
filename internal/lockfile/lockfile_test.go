package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.xml.lock")
	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("lock file missing: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("lock file survived release")
	}
}

func TestAcquireHeldByLiveProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.xml.lock")
	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer l.Release()

	// This process is alive and holds the lock.
	if _, err := Acquire(path); err == nil {
		t.Fatal("second Acquire succeeded while held")
	} else if !strings.Contains(err.Error(), "PID") {
		t.Fatalf("err = %v, want the holder's PID", err)
	}
}

func TestAcquireReclaimsStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.xml.lock")
	// PIDs wrap well below this on Linux, so it cannot be a live process.
	if err := os.WriteFile(path, []byte(fmt.Sprintf("%d\n", 1<<30)), 0o644); err != nil {
		t.Fatalf("write stale lock: %v", err)
	}
	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire over stale lock: %v", err)
	}
	l.Release()
}

func TestAcquireRejectsGarbageLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.xml.lock")
	if err := os.WriteFile(path, []byte("not a pid\n"), 0o644); err != nil {
		t.Fatalf("write garbage lock: %v", err)
	}
	if _, err := Acquire(path); err == nil {
		t.Fatal("Acquire succeeded over a garbage lock file")
	}
}
