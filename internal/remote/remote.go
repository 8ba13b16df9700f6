// Package remote talks to the external metadata/download client (yt-dlp).
// The engine only depends on the Client interface; the exec-based
// implementation lives in ytdlp.go.
package remote

import "context"

// Entry is one remote item as observed during metadata extraction.
type Entry struct {
	// ID is the item's remote identity (its URL or video id); tracks are
	// keyed by it.
	ID            string
	Title         string
	PlaylistIndex string // 1-based as string, "" for single items
	Info          map[string]any
}

// Result is the outcome of a metadata-only extraction for one collection URL.
type Result struct {
	URL        string
	IsPlaylist bool
	Title      string
	Info       map[string]any
	Entries    []Entry
}

// FetchOptions controls a full fetch.
type FetchOptions struct {
	// Dir is the directory downloads are written to.
	Dir string
	// FilenameFormat is the output template (yt-dlp %(field)s subset).
	FilenameFormat string
	// Extension is the final audio extension (e.g. "mp3").
	Extension string
	// PlaylistItems restricts a playlist fetch to these 1-based indices.
	PlaylistItems []string
	// MatchFilter is consulted per candidate item; a non-nil error vetoes
	// the media fetch for that item while its metadata is still returned.
	MatchFilter func(info map[string]any) error
	// Concat asks the client to produce one concatenated output for a
	// playlist.
	Concat bool
	// Reuse, when non-nil, is a previously extracted result the client may
	// use instead of re-fetching metadata.
	Reuse *Result
}

// Download reports the per-item outcome of a fetch. Fetched is false for
// items whose media fetch was vetoed by the match filter.
type Download struct {
	ID       string
	Filename string
	Fetched  bool
	Err      error
}

// Client is the external metadata/download collaborator.
type Client interface {
	// Extract fetches metadata for url without downloading media. With
	// process=false the result is shallow: playlist entries carry only
	// flat info.
	Extract(ctx context.Context, url string, process bool) (*Result, error)
	// Fetch downloads media for url subject to opts. Per-item failures are
	// reported in the returned slice, not as the error.
	Fetch(ctx context.Context, url string, opts FetchOptions) ([]Download, error)
}
