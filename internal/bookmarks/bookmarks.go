// Package bookmarks reads browser bookmark stores. It is a read-only adapter:
// collections bind to a folder inside a store and mirror its URL membership.
package bookmarks

import (
	"errors"
	"fmt"
)

// ErrStoreLocked indicates the backing store is exclusively locked by another
// process (typically a running browser). Callers should treat it as
// recoverable and prompt for a retry.
var ErrStoreLocked = errors.New("bookmark store is locked by another process")

// Bookmark is one URL entry of a bookmark folder.
type Bookmark struct {
	ID    string
	URL   string
	Title string
}

// Folder is a named grouping of bookmarks and sub-folders.
type Folder struct {
	ID       string
	Title    string
	Children map[string]*Node
}

// Node is either a bookmark or a folder.
type Node struct {
	Bookmark *Bookmark
	Folder   *Folder
}

// Tree is a fully loaded bookmark store.
type Tree struct {
	Roots map[string]*Node
}

// ResolvePath walks the tree along the given folder ids and returns the
// folder at the end of the path.
func (t *Tree) ResolvePath(ids []string) (*Folder, error) {
	children := t.Roots
	var cur *Folder
	for _, id := range ids {
		n, ok := children[id]
		if !ok || n.Folder == nil {
			return nil, fmt.Errorf("bookmark folder %q not found", id)
		}
		cur = n.Folder
		children = cur.Children
	}
	if cur == nil {
		return nil, errors.New("empty bookmark path")
	}
	return cur, nil
}

// AllBookmarks flattens the folder recursively into a map keyed by bookmark
// id.
func (f *Folder) AllBookmarks() map[string]*Bookmark {
	out := make(map[string]*Bookmark)
	var walk func(*Folder)
	walk = func(dir *Folder) {
		for _, n := range dir.Children {
			switch {
			case n.Bookmark != nil:
				out[n.Bookmark.ID] = n.Bookmark
			case n.Folder != nil:
				walk(n.Folder)
			}
		}
	}
	walk(f)
	return out
}

// Open loads a bookmark store from disk, dispatching on the store format.
// Firefox places.sqlite is currently the only supported backend.
func Open(path string) (*Tree, error) {
	return openFirefox(path)
}
