package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"musicsync/internal/library"
	"musicsync/internal/logging"
	"musicsync/internal/remote"
)

// ActionRow is one reviewed entry of the action table: a track, its owning
// URL and the action the user settled on.
type ActionRow struct {
	URL    *library.CollectionUrl
	Track  *library.Track
	Action library.SyncAction
}

// BuildActionTable derives the default action table for a reconciled
// collection from its per-status resolution policy, in collection URL order.
func BuildActionTable(col *library.Collection) []ActionRow {
	col.EnsureSyncActions()
	var rows []ActionRow
	for _, u := range col.URLs {
		for _, id := range sortedTrackIDs(u) {
			t := u.Tracks[id]
			rows = append(rows, ActionRow{URL: u, Track: t, Action: col.SyncActions[t.Status]})
		}
	}
	return rows
}

// PartialError aggregates per-item failures from the download phase. The
// batch itself completed; each error is attributed to its track or URL.
type PartialError struct {
	Errors []error
}

func (e *PartialError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d items failed: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// errSkipMedia is the match-filter veto used for metadata-only refreshes.
var errSkipMedia = errors.New("metadata-only item")

// Sync executes a reviewed action table against col. Rows whose action is
// illegal for the track's current status are ignored (never executed), as are
// unresolved decide-individually rows. Status toggles are pure mutations;
// DELETE is idempotent towards the filesystem; only the download phase can
// fail per item, reported via PartialError.
func (e *Engine) Sync(ctx context.Context, col *library.Collection, rows []ActionRow, opts Options) error {
	plog := &passLog{log: e.log.With("sync"), interrupted: opts.Interrupted}

	valid := make([]ActionRow, 0, len(rows))
	for _, r := range rows {
		if r.URL == nil || r.Track == nil || !library.ValidAction(r.Action) {
			continue
		}
		if !library.ActionAllowed(r.Track.Status, r.Action) {
			e.log.Warnf("action %s not allowed for track %s in status %s, ignoring",
				r.Action, r.Track.RemoteID, r.Track.Status)
			continue
		}
		valid = append(valid, r)
	}

	total := len(valid)
	done := 0
	report := func(text string) {
		if opts.Progress != nil && total > 0 {
			opts.Progress(float64(done)/float64(total), text)
		}
	}

	// 1. KEEP_PERMANENTLY: pure status mutation.
	for _, r := range byAction(valid, library.ActionKeepPermanently) {
		if err := plog.check(); err != nil {
			return err
		}
		report(fmt.Sprintf("Marking %s as permanently downloaded", r.Track.RemoteID))
		r.Track.Status = library.StatusPermanentlyDownloaded
		r.Track.Permanent = true
		done++
	}

	// 2. REMOVE_FROM_PERMANENTLY_DOWNLOADED: pure status mutation.
	for _, r := range byAction(valid, library.ActionRemoveFromPermanent) {
		if err := plog.check(); err != nil {
			return err
		}
		report(fmt.Sprintf("Unmarking %s as permanently downloaded", r.Track.RemoteID))
		r.Track.Status = library.StatusDownloaded
		r.Track.Permanent = false
		done++
	}

	// 3. DELETE: remove the file if present, drop the record regardless.
	for _, r := range byAction(valid, library.ActionDelete) {
		if err := plog.check(); err != nil {
			return err
		}
		report(fmt.Sprintf("Deleting %s", r.Track.RemoteID))
		path := col.RealPath(r.URL, r.Track)
		if r.Track.Filename != "" {
			if err := os.Remove(path); err == nil {
				if lerr := plog.infof("deleted %s (%s)", r.Track.Filename, r.Track.RemoteID); lerr != nil {
					return lerr
				}
			} else if os.IsNotExist(err) {
				if lerr := plog.infof("file %s already gone (%s)", r.Track.Filename, r.Track.RemoteID); lerr != nil {
					return lerr
				}
			} else {
				return &TrackError{URL: r.URL.URL, RemoteID: r.Track.RemoteID, Err: err}
			}
		}
		r.URL.RemoveTrack(r.Track.RemoteID)
		e.metrics.IncTracksDeleted()
		done++
	}

	// 4. DOWNLOAD and REDOWNLOAD_METADATA, grouped per owning URL.
	var itemErrs []error
	download := byAction(valid, library.ActionDownload)
	download = append(download, byAction(valid, library.ActionRedownloadMetadata)...)
	for _, u := range col.URLs {
		group := byURL(download, u)
		if len(group) == 0 {
			continue
		}
		if err := plog.check(); err != nil {
			return err
		}
		report(fmt.Sprintf("Downloading %d tracks for %s", len(group), u.DisplayName()))
		groupErrs, err := e.syncDownloadGroup(ctx, col, u, group, plog)
		if err != nil {
			return err
		}
		itemErrs = append(itemErrs, groupErrs...)
		done += len(group)
	}

	// 5. DO_NOTHING and DECIDE_INDIVIDUALLY have no effect.

	if len(itemErrs) > 0 {
		return &PartialError{Errors: itemErrs}
	}
	return nil
}

// syncDownloadGroup runs one external fetch for all download/redownload rows
// of a URL. Playlist fetches are restricted to the group's playlist indices;
// metadata-only rows are vetoed via the client's match filter. A retained
// result from the preceding update pass is reused when available.
func (e *Engine) syncDownloadGroup(ctx context.Context, col *library.Collection, u *library.CollectionUrl, group []ActionRow, plog *passLog) ([]error, error) {
	metadataOnly := make(map[string]bool)
	var indices []string
	for _, r := range group {
		if r.Action == library.ActionRedownloadMetadata {
			metadataOnly[r.Track.RemoteID] = true
		}
		if r.Track.PlaylistIndex != "" {
			indices = append(indices, r.Track.PlaylistIndex)
		}
	}

	isPlaylist := u.IsPlaylist != nil && *u.IsPlaylist
	fopts := remote.FetchOptions{
		Dir:            col.RealPath(u, nil),
		FilenameFormat: e.filenameFormat(col),
		Extension:      e.fileExtension(col),
		Concat:         u.Concat,
		Reuse:          e.retained[u.URL],
		MatchFilter: func(info map[string]any) error {
			if metadataOnly[entryID(info)] {
				return errSkipMedia
			}
			return nil
		},
	}
	if isPlaylist {
		fopts.PlaylistItems = indices
	}
	delete(e.retained, u.URL)

	downloads, err := e.client.Fetch(ctx, u.URL, fopts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, ErrInterrupted
		}
		errs := make([]error, 0, len(group))
		for _, r := range group {
			errs = append(errs, &TrackError{URL: u.URL, RemoteID: r.Track.RemoteID, Err: err})
		}
		return errs, nil
	}

	var itemErrs []error
	fetchedAll := true
	for _, d := range downloads {
		t := u.Track(d.ID)
		if t == nil {
			continue
		}
		if d.Err != nil {
			fetchedAll = false
			itemErrs = append(itemErrs, &TrackError{URL: u.URL, RemoteID: d.ID, Err: d.Err})
			continue
		}
		if !d.Fetched {
			// Metadata-only refresh; the file on disk is untouched.
			continue
		}
		if d.Filename != "" {
			t.Filename = d.Filename
		}
		t.Status = library.StatusDownloaded
		e.metrics.IncDownloadsSuccess()
		if lerr := plog.debugf("%s downloaded as %s", d.ID, t.Filename); lerr != nil {
			return itemErrs, lerr
		}
	}

	if fetchedAll && col.ExcludeAfterDownload {
		u.Excluded = true
		if lerr := plog.debugf("%s excluded after download", logging.SanitizeURL(u.URL)); lerr != nil {
			return itemErrs, lerr
		}
	}
	return itemErrs, nil
}

func (e *Engine) filenameFormat(col *library.Collection) string {
	if col.FilenameFormat != "" {
		return col.FilenameFormat
	}
	return e.FilenameFormat
}

func (e *Engine) fileExtension(col *library.Collection) string {
	if col.FileExtension != "" {
		return col.FileExtension
	}
	return e.FileExtension
}

func byAction(rows []ActionRow, a library.SyncAction) []ActionRow {
	var out []ActionRow
	for _, r := range rows {
		if r.Action == a {
			out = append(out, r)
		}
	}
	return out
}

func byURL(rows []ActionRow, u *library.CollectionUrl) []ActionRow {
	var out []ActionRow
	for _, r := range rows {
		if r.URL == u {
			out = append(out, r)
		}
	}
	return out
}

// entryID extracts the remote identity from a candidate item's info mapping,
// mirroring how extraction derives track ids.
func entryID(info map[string]any) string {
	for _, key := range []string{"original_url", "webpage_url", "url", "id"} {
		if v, ok := info[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
