package remote

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"
)

func TestParseExtractPlaylist(t *testing.T) {
	data := []byte(`{
		"_type": "playlist",
		"title": "Road Trip",
		"entries": [
			{"url": "https://example.com/v1", "id": "v1", "title": "One"},
			{"id": "v2", "title": "Two"},
			"bogus"
		]
	}`)
	res, err := parseExtract(data, "https://example.com/playlist")
	if err != nil {
		t.Fatalf("parseExtract: %v", err)
	}
	if !res.IsPlaylist {
		t.Fatal("IsPlaylist = false")
	}
	if res.Title != "Road Trip" {
		t.Errorf("Title = %q", res.Title)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(res.Entries))
	}
	// Identity prefers the entry url, then the id.
	if res.Entries[0].ID != "https://example.com/v1" {
		t.Errorf("entry 0 ID = %q", res.Entries[0].ID)
	}
	if res.Entries[1].ID != "v2" {
		t.Errorf("entry 1 ID = %q", res.Entries[1].ID)
	}
	if res.Entries[0].PlaylistIndex != "1" || res.Entries[1].PlaylistIndex != "2" {
		t.Errorf("indices = %q, %q", res.Entries[0].PlaylistIndex, res.Entries[1].PlaylistIndex)
	}
}

func TestParseExtractSingle(t *testing.T) {
	cases := []struct {
		name   string
		data   string
		wantID string
	}{
		{"original url", `{"title": "One", "original_url": "https://example.com/orig", "webpage_url": "https://example.com/page"}`, "https://example.com/orig"},
		{"webpage url", `{"title": "One", "webpage_url": "https://example.com/page"}`, "https://example.com/page"},
		{"request url fallback", `{"title": "One"}`, "https://example.com/requested"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := parseExtract([]byte(tc.data), "https://example.com/requested")
			if err != nil {
				t.Fatalf("parseExtract: %v", err)
			}
			if res.IsPlaylist {
				t.Fatal("single item parsed as playlist")
			}
			if len(res.Entries) != 1 {
				t.Fatalf("got %d entries, want 1", len(res.Entries))
			}
			e := res.Entries[0]
			if e.ID != tc.wantID {
				t.Errorf("ID = %q, want %q", e.ID, tc.wantID)
			}
			if e.PlaylistIndex != "" {
				t.Errorf("single item got index %q", e.PlaylistIndex)
			}
		})
	}
}

func TestParseExtractGarbage(t *testing.T) {
	if _, err := parseExtract([]byte("not json"), "u"); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestSelectEntries(t *testing.T) {
	res := &Result{IsPlaylist: true, Entries: []Entry{
		{ID: "a", PlaylistIndex: "1"},
		{ID: "b", PlaylistIndex: "2"},
		{ID: "c", PlaylistIndex: "3"},
	}}
	got := selectEntries(res, []string{"1", "3"})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("selectEntries = %+v", got)
	}
	if all := selectEntries(res, nil); len(all) != 3 {
		t.Fatalf("empty restriction filtered entries: %+v", all)
	}

	single := &Result{Entries: []Entry{{ID: "only"}}}
	if got := selectEntries(single, []string{"1"}); len(got) != 1 {
		t.Fatal("restriction applied to a non-playlist result")
	}
}

func TestExtractMissingBinary(t *testing.T) {
	c := &YtdlpClient{Path: "definitely-not-a-real-ytdlp-binary", Timeout: time.Second}
	_, err := c.Extract(context.Background(), "https://example.com/v1", false)
	if err == nil {
		t.Fatal("Extract with missing binary succeeded")
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("err = %v, want chain containing exec.ErrNotFound", err)
	}
}
