// Package lockfile guards the library file against concurrent passes from a
// second process. The lock is a pidfile next to the library.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// Lock is an exclusive lock held for the lifetime of one command.
type Lock struct {
	path string
	file *os.File
}

// Acquire takes the lock at path, reclaiming it when the holding process is
// gone. A live holder is reported as an error naming its PID.
func Acquire(path string) (*Lock, error) {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			if _, werr := fmt.Fprintf(f, "%d\n", os.Getpid()); werr != nil {
				f.Close()
				os.Remove(path)
				return nil, fmt.Errorf("write pid to lock file: %w", werr)
			}
			return &Lock{path: path, file: f}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}
		if err := reclaimStale(path); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("lock file %s keeps reappearing", path)
}

// reclaimStale removes the lock when its recorded process no longer runs.
func reclaimStale(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("lock file %s exists but is unreadable; remove it manually if stale", path)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("lock file %s holds no valid pid; remove it manually if stale", path)
	}
	if processExists(pid) {
		return fmt.Errorf("another musicsync run holds the library (PID %d)", pid)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale lock file %s: %w", path, err)
	}
	return nil
}

func processExists(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = p.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM means the process is alive but owned by someone else. Any
	// other signalling error means the pid is not a live process.
	return errors.Is(err, syscall.EPERM)
}

// Release drops the lock and removes the pidfile.
func (l *Lock) Release() error {
	if l.file != nil {
		l.file.Close()
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}
