package library

import (
	"path/filepath"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Defaults applied when a collection leaves the corresponding field empty.
const (
	DefaultFilenameFormat = "%(title)s [%(id)s]"
	DefaultURLNameFormat  = "%(title)s"
	DefaultFileExtension  = "mp3"
)

// Track is one remote media item's reconciliation record within a
// CollectionUrl. RemoteID is the remote URL/video id and is unique within the
// owning CollectionUrl.
type Track struct {
	RemoteID      string
	Title         string
	Filename      string // empty if never downloaded
	PlaylistIndex string // "" when not part of a playlist, else 1-based
	Status        SyncStatus
	Permanent     bool // sticky; implies Status == StatusPermanentlyDownloaded
}

// CollectionUrl is one remote source (single item or playlist) tracked within
// a collection.
type CollectionUrl struct {
	URL        string
	Name       string // display name; falls back to URL when empty
	Excluded   bool   // skip during reconciliation
	Concat     bool   // treat playlist as one concatenated output
	IsPlaylist *bool  // nil until the first successful reconciliation
	Tracks     map[string]*Track
}

// DisplayName returns the user-facing name, falling back to the URL.
func (u *CollectionUrl) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.URL
}

// Track returns the track with the given remote id, or nil.
func (u *CollectionUrl) Track(remoteID string) *Track {
	if u.Tracks == nil {
		return nil
	}
	return u.Tracks[remoteID]
}

// PutTrack records t under its remote id.
func (u *CollectionUrl) PutTrack(t *Track) {
	if u.Tracks == nil {
		u.Tracks = make(map[string]*Track)
	}
	u.Tracks[t.RemoteID] = t
}

// RemoveTrack drops the record for remoteID. Missing ids are ignored.
func (u *CollectionUrl) RemoveTrack(remoteID string) {
	delete(u.Tracks, remoteID)
}

// PathComponent identifies one step of a bookmark-folder path inside an
// external bookmark store.
type PathComponent struct {
	ID   string
	Name string
}

// Collection bundles one local target folder, one or more remote sources and
// a sync policy. It is the unit reconciliation and sync operate on; both
// mutate it in place.
type Collection struct {
	Name string

	FolderPath                string
	FilenameFormat            string
	FileExtension             string
	SavePlaylistsToSubfolders bool
	URLNameFormat             string
	ExcludeAfterDownload      bool
	AutoConcatURLs            []string

	SyncBookmarkFile           string // path to places.sqlite, empty = disabled
	SyncBookmarkPath           []PathComponent
	SyncBookmarkTitleAsURLName bool

	SyncActions map[SyncStatus]SyncAction

	URLs []*CollectionUrl
}

// NewCollection returns a collection with the default resolution policy.
func NewCollection(name string) *Collection {
	return &Collection{Name: name, SyncActions: DefaultSyncActions()}
}

// EnsureSyncActions fills in defaults so that exactly one action exists per
// status. Unknown or illegal entries are reset to the default.
func (c *Collection) EnsureSyncActions() {
	if c.SyncActions == nil {
		c.SyncActions = make(map[SyncStatus]SyncAction, len(Statuses))
	}
	defaults := DefaultSyncActions()
	for _, s := range Statuses {
		a, ok := c.SyncActions[s]
		if !ok || !ActionAllowed(s, a) {
			c.SyncActions[s] = defaults[s]
		}
	}
	for s := range c.SyncActions {
		if !ValidStatus(s) {
			delete(c.SyncActions, s)
		}
	}
}

// URLByString returns the CollectionUrl with the given url, or nil.
func (c *Collection) URLByString(url string) *CollectionUrl {
	for _, u := range c.URLs {
		if u.URL == url {
			return u
		}
	}
	return nil
}

// RealPath resolves the on-disk location for a URL's folder, or for a track's
// file when track is non-nil. Playlists get their own subfolder when the
// collection is configured for it.
func (c *Collection) RealPath(u *CollectionUrl, track *Track) string {
	folder := c.FolderPath
	if c.SavePlaylistsToSubfolders && u.IsPlaylist != nil && *u.IsPlaylist {
		folder = filepath.Join(folder, u.DisplayName())
	}
	if track == nil {
		return folder
	}
	return filepath.Join(folder, track.Filename)
}

// InAutoConcat reports whether url matches one of the collection's auto-concat
// patterns. Matching is case-insensitive and fuzzy: a pattern matches when its
// characters appear in order within the URL.
func (c *Collection) InAutoConcat(url string) bool {
	for _, pat := range c.AutoConcatURLs {
		if pat = strings.TrimSpace(pat); pat == "" {
			continue
		}
		if fuzzy.MatchFold(pat, url) {
			return true
		}
	}
	return false
}

// Node is one entry of the library tree: either a folder of further nodes or
// a collection.
type Node struct {
	Folder     *Folder
	Collection *Collection
}

// Folder is a named grouping node in the library tree.
type Folder struct {
	Name     string
	Children []Node
}

// Library is the root of the user's collection tree.
type Library struct {
	Children []Node
}

// Collections returns all collections in the tree, depth-first.
func (l *Library) Collections() []*Collection {
	var out []*Collection
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			switch {
			case n.Collection != nil:
				out = append(out, n.Collection)
			case n.Folder != nil:
				walk(n.Folder.Children)
			}
		}
	}
	walk(l.Children)
	return out
}

// CollectionByName returns the first collection with the given name, or nil.
func (l *Library) CollectionByName(name string) *Collection {
	for _, c := range l.Collections() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
