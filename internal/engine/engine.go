// Package engine implements the sync-status reconciliation engine and the
// sync executor. Both mutate the collection passed to them in place,
// synchronously within the call; the host owns the aggregate and must not run
// two passes against the same collection at once.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"musicsync/internal/bookmarks"
	"musicsync/internal/library"
	"musicsync/internal/logging"
	"musicsync/internal/metrics"
	"musicsync/internal/remote"
)

// Options carries the per-pass callbacks.
type Options struct {
	// Progress, when non-nil, receives (fraction, text) reports. Fractions
	// are non-decreasing within a pass, one report per URL before its fetch.
	Progress func(frac float64, text string)
	// Interrupted is polled before each per-URL step and each engine log
	// line; returning true aborts the pass with ErrInterrupted.
	Interrupted func() bool
	// DeleteFiles makes bookmark-driven URL removal also delete on-disk
	// files. When false only the record-level entry is dropped.
	DeleteFiles bool
}

// Engine reconciles collections against remote metadata and the local
// filesystem. Raw fetch results are retained per URL between an update pass
// and the following sync pass so the executor can avoid re-fetching.
type Engine struct {
	client   remote.Client
	log      *logging.Logger
	metrics  *metrics.Manager
	retained map[string]*remote.Result

	// Fallbacks for collections that leave format fields empty.
	URLNameFormat  string
	FilenameFormat string
	FileExtension  string
}

// New creates an engine. m may be nil.
func New(client remote.Client, log *logging.Logger, m *metrics.Manager) *Engine {
	return &Engine{
		client:         client,
		log:            log,
		metrics:        m,
		retained:       make(map[string]*remote.Result),
		URLNameFormat:  library.DefaultURLNameFormat,
		FilenameFormat: library.DefaultFilenameFormat,
		FileExtension:  library.DefaultFileExtension,
	}
}

// passLog couples logging with the interruption checkpoint: the predicate is
// polled before every line, so a cancel request is honored at the next log
// emission at the latest.
type passLog struct {
	log         *logging.Logger
	interrupted func() bool
}

func (p *passLog) check() error {
	if p.interrupted != nil && p.interrupted() {
		return ErrInterrupted
	}
	return nil
}

func (p *passLog) debugf(format string, a ...any) error {
	if err := p.check(); err != nil {
		return err
	}
	p.log.Debugf(format, a...)
	return nil
}

func (p *passLog) infof(format string, a ...any) error {
	if err := p.check(); err != nil {
		return err
	}
	p.log.Infof(format, a...)
	return nil
}

// UpdateSyncStatus refreshes the sync status of every track in col from fresh
// remote metadata and a local folder snapshot. If the collection is bound to
// a bookmark folder, its URL membership is reconciled first. The collection
// is mutated in place; on error, mutations applied to already-processed URLs
// are retained.
func (e *Engine) UpdateSyncStatus(ctx context.Context, col *library.Collection, opts Options) error {
	col.EnsureSyncActions()

	if col.SyncBookmarkFile != "" {
		if err := e.syncBookmarkURLs(col, opts); err != nil {
			return err
		}
	}

	plog := &passLog{log: e.log.With("update_sync_status"), interrupted: opts.Interrupted}
	total := len(col.URLs)
	for i, u := range col.URLs {
		if err := plog.check(); err != nil {
			return err
		}
		if opts.Progress != nil {
			opts.Progress(float64(i)/float64(total),
				fmt.Sprintf("Downloading info for %s [%d/%d]", progressText(u), i+1, total))
		}
		if u.Excluded {
			if err := plog.debugf("%s is excluded, skipping", logging.SanitizeURL(u.URL)); err != nil {
				return err
			}
			continue
		}
		if len(col.AutoConcatURLs) > 0 {
			u.Concat = col.InAutoConcat(u.URL)
		}

		res, err := e.client.Extract(ctx, u.URL, false)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return ErrInterrupted
			}
			return &URLError{URL: u.URL, Err: err}
		}
		if u.Name == "" {
			format := col.URLNameFormat
			if format == "" {
				format = e.URLNameFormat
			}
			u.Name = remote.EvalTemplate(format, res.Info)
		}
		isPlaylist := res.IsPlaylist
		u.IsPlaylist = &isPlaylist
		e.retained[u.URL] = res
		e.metrics.IncURLsChecked()

		if err := plog.debugf("processing %s (%s), playlist: %v", logging.SanitizeURL(u.URL), u.DisplayName(), isPlaylist); err != nil {
			return err
		}

		folder := col.RealPath(u, nil)
		listing := listFolder(folder)
		if err := plog.debugf("folder: %s (%d entries)", folder, len(listing)); err != nil {
			return err
		}

		if err := e.applyTransitions(col, u, res, listing, plog); err != nil {
			return err
		}
	}
	return nil
}

// applyTransitions runs the status transition function over every existing
// track of u against the fetched remote-id set, then creates records for
// newly observed remote ids.
func (e *Engine) applyTransitions(col *library.Collection, u *library.CollectionUrl, res *remote.Result, listing map[string]bool, plog *passLog) error {
	remoteIDs := make(map[string]bool, len(res.Entries))
	for _, entry := range res.Entries {
		remoteIDs[entry.ID] = true
	}

	for _, id := range sortedTrackIDs(u) {
		t := u.Tracks[id]
		if remoteIDs[t.RemoteID] {
			continue
		}
		t.Status = Transition(t.Status, false, listing[t.Filename])
		if err := plog.debugf("%s (%s): not in remote items, marked as %s", t.RemoteID, t.Filename, t.Status); err != nil {
			return err
		}
	}

	for _, entry := range res.Entries {
		t := u.Track(entry.ID)
		if t == nil {
			if err := plog.debugf("%s (%s): %s", entry.ID, entry.Title, library.StatusAddedToSource); err != nil {
				return err
			}
			u.PutTrack(&library.Track{
				RemoteID:      entry.ID,
				Title:         entry.Title,
				PlaylistIndex: entry.PlaylistIndex,
				Status:        library.StatusAddedToSource,
			})
			e.metrics.IncTracksAdded()
			continue
		}
		t.Title = entry.Title
		t.PlaylistIndex = entry.PlaylistIndex
		next := Transition(t.Status, true, listing[t.Filename])
		if next != t.Status {
			if err := plog.debugf("%s (%s): marked as %s", entry.ID, entry.Title, next); err != nil {
				return err
			}
		}
		t.Status = next
	}
	return nil
}

// syncBookmarkURLs mirrors the bound bookmark folder into the collection's
// URL set: members missing from the collection are appended, collection URLs
// that left the folder are removed (with optional file deletion). Removals
// are applied only after the full removal set is known.
func (e *Engine) syncBookmarkURLs(col *library.Collection, opts Options) error {
	plog := &passLog{log: e.log.With("bookmark_sync"), interrupted: opts.Interrupted}
	if err := plog.check(); err != nil {
		return err
	}

	tree, err := bookmarks.Open(col.SyncBookmarkFile)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(col.SyncBookmarkPath))
	for _, pc := range col.SyncBookmarkPath {
		ids = append(ids, pc.ID)
	}
	folder, err := tree.ResolvePath(ids)
	if err != nil {
		return err
	}
	members := folder.AllBookmarks()

	present := make(map[string]bool, len(col.URLs))
	for _, u := range col.URLs {
		present[u.URL] = true
	}
	for _, id := range sortedBookmarkIDs(members) {
		b := members[id]
		if b.URL == "" || present[b.URL] {
			continue
		}
		if err := plog.debugf("url %s (%s) added to collection %q", logging.SanitizeURL(b.URL), b.Title, col.Name); err != nil {
			return err
		}
		name := ""
		if col.SyncBookmarkTitleAsURLName {
			name = b.Title
		}
		col.URLs = append(col.URLs, &library.CollectionUrl{
			URL:    b.URL,
			Name:   name,
			Concat: col.InAutoConcat(b.URL),
			Tracks: make(map[string]*library.Track),
		})
		present[b.URL] = true
	}

	memberURLs := make(map[string]bool, len(members))
	for _, b := range members {
		memberURLs[b.URL] = true
	}
	kept := col.URLs[:0]
	for _, u := range col.URLs {
		if memberURLs[u.URL] {
			kept = append(kept, u)
			continue
		}
		if err := plog.debugf("url %s (%s) removed from collection %q", logging.SanitizeURL(u.URL), u.DisplayName(), col.Name); err != nil {
			return err
		}
		if opts.DeleteFiles {
			if err := e.deleteURLFiles(col, u, plog); err != nil {
				return err
			}
		}
	}
	col.URLs = kept
	return nil
}

// deleteURLFiles removes a dropped URL's files and its folder if that leaves
// it empty. URLs that were never reconciled are skipped: without a recorded
// playlist flag the target folder cannot be resolved safely.
func (e *Engine) deleteURLFiles(col *library.Collection, u *library.CollectionUrl, plog *passLog) error {
	if u.IsPlaylist == nil {
		return plog.debugf("removed url %s has never been synced, no files can be deleted", logging.SanitizeURL(u.URL))
	}
	folder := col.RealPath(u, nil)
	for _, id := range sortedTrackIDs(u) {
		t := u.Tracks[id]
		if t.Filename == "" {
			continue
		}
		path := col.RealPath(u, t)
		if err := plog.infof("deleting file %s", path); err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			e.log.Warnf("delete %s: %v", path, err)
		}
	}
	if entries, err := os.ReadDir(folder); err == nil && len(entries) == 0 {
		if err := plog.infof("deleting empty folder %s", folder); err != nil {
			return err
		}
		_ = os.Remove(folder)
	}
	return nil
}

// Retained returns the raw fetch result recorded for url during the last
// update pass, or nil.
func (e *Engine) Retained(url string) *remote.Result {
	return e.retained[url]
}

func progressText(u *library.CollectionUrl) string {
	if u.Name != "" {
		return fmt.Sprintf("%q (%s)", u.Name, u.URL)
	}
	return u.URL
}

// listFolder snapshots a directory's file names. A missing folder is an empty
// snapshot, not an error.
func listFolder(dir string) map[string]bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(entries))
	for _, e := range entries {
		out[e.Name()] = true
	}
	return out
}

func sortedTrackIDs(u *library.CollectionUrl) []string {
	ids := make([]string, 0, len(u.Tracks))
	for id := range u.Tracks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedBookmarkIDs(m map[string]*bookmarks.Bookmark) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
