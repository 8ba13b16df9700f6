// Package testutil provides shared fixtures for package tests: an in-memory
// remote client and a Firefox-shaped bookmark database builder.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/glebarez/go-sqlite"

	"musicsync/internal/library"
	"musicsync/internal/remote"
)

// FakeClient implements remote.Client from canned results keyed by URL.
type FakeClient struct {
	// Results maps URL to the extraction result returned for it.
	Results map[string]*remote.Result
	// Errs maps URL to an error returned instead of a result.
	Errs map[string]error
	// FetchErrs maps remote id to a per-item fetch failure.
	FetchErrs map[string]error

	// ExtractCalls and FetchCalls record the URLs of each invocation in order.
	ExtractCalls []string
	FetchCalls   []string
	// LastFetchOpts holds the options of the most recent Fetch call.
	LastFetchOpts remote.FetchOptions
}

// Extract returns the canned result for url, honoring context cancellation.
func (f *FakeClient) Extract(ctx context.Context, url string, process bool) (*remote.Result, error) {
	f.ExtractCalls = append(f.ExtractCalls, url)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.Errs[url]; err != nil {
		return nil, err
	}
	r, ok := f.Results[url]
	if !ok {
		return nil, fmt.Errorf("no canned result for %s", url)
	}
	return r, nil
}

// Fetch simulates a download of every selected entry, applying the playlist
// restriction and match filter the way the real client does.
func (f *FakeClient) Fetch(ctx context.Context, url string, opts remote.FetchOptions) ([]remote.Download, error) {
	f.FetchCalls = append(f.FetchCalls, url)
	f.LastFetchOpts = opts
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := opts.Reuse
	if res == nil {
		var err error
		if res, err = f.Extract(ctx, url, true); err != nil {
			return nil, err
		}
	}

	entries := res.Entries
	if res.IsPlaylist && len(opts.PlaylistItems) > 0 {
		wanted := make(map[string]bool, len(opts.PlaylistItems))
		for _, i := range opts.PlaylistItems {
			wanted[i] = true
		}
		var kept []remote.Entry
		for _, e := range entries {
			if wanted[e.PlaylistIndex] {
				kept = append(kept, e)
			}
		}
		entries = kept
	}

	var out []remote.Download
	for _, e := range entries {
		d := remote.Download{ID: e.ID, Fetched: true}
		if opts.MatchFilter != nil {
			if err := opts.MatchFilter(e.Info); err != nil {
				d.Fetched = false
				out = append(out, d)
				continue
			}
		}
		if err := f.FetchErrs[e.ID]; err != nil {
			d.Err = err
			d.Fetched = false
		} else {
			d.Filename = remote.SanitizeFilename(remote.EvalTemplate(opts.FilenameFormat, e.Info)) + "." + opts.Extension
		}
		out = append(out, d)
	}
	return out, nil
}

// SingleResult builds a canned extraction result for a single media item.
func SingleResult(url, id, title string) *remote.Result {
	return &remote.Result{
		URL:   url,
		Title: title,
		Info:  map[string]any{"id": id, "title": title, "url": url},
		Entries: []remote.Entry{{
			ID:    id,
			Title: title,
			Info:  map[string]any{"id": id, "title": title, "url": url},
		}},
	}
}

// PlaylistResult builds a canned extraction result for a playlist whose
// entries are ids in order. Titles default to "Title <id>".
func PlaylistResult(url, title string, ids ...string) *remote.Result {
	r := &remote.Result{URL: url, IsPlaylist: true, Title: title, Info: map[string]any{"title": title}}
	for i, id := range ids {
		idx := fmt.Sprintf("%d", i+1)
		r.Entries = append(r.Entries, remote.Entry{
			ID:            id,
			Title:         "Title " + id,
			PlaylistIndex: idx,
			Info:          map[string]any{"id": id, "title": "Title " + id, "url": id, "playlist_index": i + 1},
		})
	}
	return r
}

// TempCollection returns a collection rooted in a fresh temp dir.
func TempCollection(t *testing.T, name string) *library.Collection {
	t.Helper()
	c := library.NewCollection(name)
	c.FolderPath = t.TempDir()
	return c
}

// TouchTrack creates an empty file at the track's resolved path so the
// on-disk scan sees it.
func TouchTrack(t *testing.T, c *library.Collection, u *library.CollectionUrl, track *library.Track) {
	t.Helper()
	path := c.RealPath(u, track)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
}

// BookmarkSpec describes one row inserted into a fixture bookmark database.
// Folders leave URL empty.
type BookmarkSpec struct {
	ID     int64
	Parent int64
	Title  string
	URL    string
}

// WriteBookmarkDB creates a minimal places.sqlite with the given rows and
// returns its path.
func WriteBookmarkDB(t *testing.T, rows []BookmarkSpec) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "places.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE moz_places (id INTEGER PRIMARY KEY, url TEXT)`,
		`CREATE TABLE moz_bookmarks (id INTEGER PRIMARY KEY, type INTEGER, fk INTEGER, parent INTEGER, title TEXT)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("create fixture schema: %v", err)
		}
	}
	for _, r := range rows {
		if r.URL == "" {
			_, err = db.Exec(`INSERT INTO moz_bookmarks (id, type, parent, title) VALUES (?, 2, ?, ?)`,
				r.ID, r.Parent, r.Title)
		} else {
			var placeID int64
			res, perr := db.Exec(`INSERT INTO moz_places (url) VALUES (?)`, r.URL)
			if perr == nil {
				placeID, perr = res.LastInsertId()
			}
			if perr != nil {
				t.Fatalf("insert place %s: %v", r.URL, perr)
			}
			_, err = db.Exec(`INSERT INTO moz_bookmarks (id, type, fk, parent, title) VALUES (?, 1, ?, ?, ?)`,
				r.ID, placeID, r.Parent, r.Title)
		}
		if err != nil {
			t.Fatalf("insert bookmark %d: %v", r.ID, err)
		}
	}
	return path
}
