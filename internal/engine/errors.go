package engine

import (
	"errors"
	"fmt"
)

// ErrInterrupted is raised when the caller's interruption predicate signals
// cancellation. It is a control signal, not a failure: hosts must not present
// it as an error. Mutations committed before the checkpoint are retained.
var ErrInterrupted = errors.New("pass interrupted")

// URLError tags a failure with the collection URL it occurred on.
type URLError struct {
	URL string
	Err error
}

func (e *URLError) Error() string { return fmt.Sprintf("url %s: %v", e.URL, e.Err) }
func (e *URLError) Unwrap() error { return e.Err }

// TrackError attributes a sync-phase failure to a single track.
type TrackError struct {
	URL      string
	RemoteID string
	Err      error
}

func (e *TrackError) Error() string {
	return fmt.Sprintf("track %s (url %s): %v", e.RemoteID, e.URL, e.Err)
}
func (e *TrackError) Unwrap() error { return e.Err }
