package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"musicsync/internal/engine"
	"musicsync/internal/library"
)

func testModel(t *testing.T) *model {
	t.Helper()
	col := library.NewCollection("mixes")
	u := &library.CollectionUrl{URL: "https://example.com/p", Name: "Road Trip"}
	col.URLs = []*library.CollectionUrl{u}
	u.PutTrack(&library.Track{RemoteID: "a", Title: "One", Status: library.StatusAddedToSource})
	u.PutTrack(&library.Track{RemoteID: "b", Title: "Two", Status: library.StatusDownloaded})

	m, ok := New(nil, col).(*model)
	if !ok {
		t.Fatal("New did not return the review model")
	}
	m.width, m.height = 80, 24
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCycleActionStaysLegal(t *testing.T) {
	m := testModel(t)
	row := &m.rows[0]
	opts := library.ActionOptions(row.Track.Status)

	seen := map[library.SyncAction]bool{row.Action: true}
	for i := 0; i < len(opts); i++ {
		m.Update(key("l"))
		if !library.ActionAllowed(row.Track.Status, row.Action) {
			t.Fatalf("cycled to illegal action %q for status %q", row.Action, row.Track.Status)
		}
		seen[row.Action] = true
	}
	if len(seen) != len(opts) {
		t.Errorf("cycle visited %d actions, want all %d options", len(seen), len(opts))
	}
}

func TestResetDefaults(t *testing.T) {
	m := testModel(t)
	m.Update(key("l"))
	m.Update(key("d"))
	for _, r := range m.rows {
		if r.Action != m.col.SyncActions[r.Track.Status] {
			t.Errorf("row %s action %q, want default %q", r.Track.RemoteID, r.Action, m.col.SyncActions[r.Track.Status])
		}
	}
}

func TestSelectionStaysInBounds(t *testing.T) {
	m := testModel(t)
	m.Update(key("k"))
	if m.selected != 0 {
		t.Errorf("selected = %d after moving up at the top", m.selected)
	}
	for i := 0; i < 10; i++ {
		m.Update(key("j"))
	}
	if m.selected != len(m.rows)-1 {
		t.Errorf("selected = %d, want last row", m.selected)
	}
}

func TestViewShowsRows(t *testing.T) {
	m := testModel(t)
	out := m.View()
	for _, want := range []string{"mixes", "One", "Two", "Road Trip"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestDoneLine(t *testing.T) {
	m := testModel(t)
	cases := []struct {
		err  error
		want string
	}{
		{nil, "finished"},
		{engine.ErrInterrupted, "cancelled"},
		{&engine.PartialError{Errors: []error{errors.New("x"), errors.New("y")}}, "2 failed items"},
		{errors.New("boom"), "boom"},
	}
	for _, tc := range cases {
		m.runErr = tc.err
		if got := m.doneLine(); !strings.Contains(got, tc.want) {
			t.Errorf("doneLine(%v) = %q, want mention of %q", tc.err, got, tc.want)
		}
	}
}

func TestStartSyncRefusedWhileUndecided(t *testing.T) {
	m := testModel(t)
	m.rows[0].Action = library.ActionDecideIndividually

	m.Update(key("s"))
	if m.phase != phaseReview {
		t.Fatalf("phase = %v, want review until every row is decided", m.phase)
	}
	if m.job != nil {
		t.Fatal("sync job started with an undecided row")
	}
	if m.notice == "" {
		t.Error("no notice shown for the undecided row")
	}
	if !strings.Contains(m.View(), m.notice) {
		t.Error("view does not surface the notice")
	}

	// Settling the row clears the notice and unblocks the sync.
	m.Update(key("l"))
	if m.notice != "" {
		t.Errorf("notice = %q after cycling, want cleared", m.notice)
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"Névéçà après minuit", 8, "Névéçà …"},
		{"ありがとうございます", 5, "ありがと…"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.max); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
