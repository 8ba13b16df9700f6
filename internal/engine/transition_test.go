package engine

import (
	"testing"

	"musicsync/internal/library"
)

func TestTransition(t *testing.T) {
	cases := []struct {
		name          string
		prev          library.SyncStatus
		remotePresent bool
		filePresent   bool
		want          library.SyncStatus
	}{
		{"new remote item", "", true, false, library.StatusAddedToSource},
		{"new remote item with stray file", "", true, true, library.StatusAddedToSource},
		{"unknown id stays unrecorded", "", false, false, ""},
		{"unknown id stays unrecorded with file", "", false, true, ""},

		{"downloaded gone remotely", library.StatusDownloaded, false, true, library.StatusRemovedFromSource},
		{"downloaded gone remotely and locally", library.StatusDownloaded, false, false, library.StatusRemovedFromSource},
		{"added gone remotely", library.StatusAddedToSource, false, false, library.StatusLocalFile},
		{"not downloaded gone remotely", library.StatusNotDownloaded, false, false, library.StatusLocalFile},
		{"removed stays local without remote", library.StatusRemovedFromSource, false, true, library.StatusLocalFile},
		{"local file stays local", library.StatusLocalFile, false, true, library.StatusLocalFile},

		{"downloaded file missing", library.StatusDownloaded, true, false, library.StatusNotDownloaded},
		{"added file missing", library.StatusAddedToSource, true, false, library.StatusNotDownloaded},
		{"removed came back without file", library.StatusRemovedFromSource, true, false, library.StatusNotDownloaded},
		{"local file matched remotely again", library.StatusLocalFile, true, true, library.StatusDownloaded},
		{"not downloaded now on disk", library.StatusNotDownloaded, true, true, library.StatusDownloaded},
		{"downloaded stays downloaded", library.StatusDownloaded, true, true, library.StatusDownloaded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Transition(tc.prev, tc.remotePresent, tc.filePresent)
			if got != tc.want {
				t.Fatalf("Transition(%q, %v, %v) = %q, want %q", tc.prev, tc.remotePresent, tc.filePresent, got, tc.want)
			}
		})
	}
}

// Permanently downloaded tracks never leave that status during
// reconciliation, regardless of remote or file presence.
func TestTransitionPermanentSticky(t *testing.T) {
	for _, remote := range []bool{true, false} {
		for _, file := range []bool{true, false} {
			got := Transition(library.StatusPermanentlyDownloaded, remote, file)
			if got != library.StatusPermanentlyDownloaded {
				t.Errorf("Transition(permanent, %v, %v) = %q, want permanently_downloaded", remote, file, got)
			}
		}
	}
}

// Every combination of known status and observation yields a known status,
// so a pass can never corrupt a record.
func TestTransitionTotal(t *testing.T) {
	for _, prev := range library.Statuses {
		for _, remote := range []bool{true, false} {
			for _, file := range []bool{true, false} {
				got := Transition(prev, remote, file)
				if !library.ValidStatus(got) {
					t.Errorf("Transition(%q, %v, %v) = %q, not a valid status", prev, remote, file, got)
				}
			}
		}
	}
}
