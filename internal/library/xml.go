package library

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// XML persistence for the library tree. The on-disk schema is a closed set of
// record variants; no variant carries behavior, conversion happens in one
// place here.

type xmlLibrary struct {
	XMLName     xml.Name        `xml:"MusicSyncLibrary"`
	Folders     []xmlFolder     `xml:"Folder"`
	Collections []xmlCollection `xml:"Collection"`
}

type xmlFolder struct {
	Name        string          `xml:"name,attr"`
	Folders     []xmlFolder     `xml:"Folder"`
	Collections []xmlCollection `xml:"Collection"`
}

type xmlCollection struct {
	Name                      string `xml:"name,attr"`
	FolderPath                string `xml:"folder_path,attr"`
	FilenameFormat            string `xml:"filename_format,attr,omitempty"`
	FileExtension             string `xml:"file_extension,attr,omitempty"`
	SavePlaylistsToSubfolders bool   `xml:"save_playlists_to_subfolders,attr"`
	URLNameFormat             string `xml:"url_name_format,attr,omitempty"`
	ExcludeAfterDownload      bool   `xml:"exclude_after_download,attr"`

	AutoConcat   []string           `xml:"AutoConcat,omitempty"`
	BookmarkSync *xmlBookmarkSync   `xml:"BookmarkSync,omitempty"`
	SyncActions  []xmlSyncAction    `xml:"SyncActions>SyncAction,omitempty"`
	URLs         []xmlCollectionURL `xml:"CollectionUrl"`
}

type xmlBookmarkSync struct {
	File           string             `xml:"file,attr"`
	TitleAsURLName bool               `xml:"title_as_url_name,attr"`
	Path           []xmlPathComponent `xml:"PathComponent"`
}

type xmlPathComponent struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type xmlSyncAction struct {
	Status string `xml:"status,attr"`
	Action string `xml:"action,attr"`
}

type xmlCollectionURL struct {
	URL        string     `xml:"url,attr"`
	Name       string     `xml:"name,attr,omitempty"`
	Excluded   bool       `xml:"excluded,attr"`
	Concat     bool       `xml:"concat,attr"`
	IsPlaylist string     `xml:"is_playlist,attr,omitempty"` // "", "true" or "false"
	Tracks     []xmlTrack `xml:"Track"`
}

type xmlTrack struct {
	URL           string `xml:"url,attr"`
	Status        string `xml:"status,attr"`
	Path          string `xml:"path,attr"`
	Title         string `xml:"title,attr"`
	PlaylistIndex string `xml:"playlist_index,attr,omitempty"`
	Permanent     bool   `xml:"permanently_downloaded,attr"`
}

// Read loads a library tree from an XML file.
func Read(path string) (*Library, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc xmlLibrary
	if err := xml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	lib := &Library{Children: fromXMLNodes(doc.Folders, doc.Collections)}
	for _, c := range lib.Collections() {
		c.EnsureSyncActions()
	}
	return lib, nil
}

// Write stores the library tree as XML.
func Write(path string, lib *Library) error {
	doc := xmlLibrary{}
	doc.Folders, doc.Collections = toXMLNodes(lib.Children)
	b, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte(xml.Header), append(b, '\n')...), 0o644)
}

func fromXMLNodes(folders []xmlFolder, collections []xmlCollection) []Node {
	nodes := make([]Node, 0, len(folders)+len(collections))
	for i := range folders {
		f := &Folder{Name: folders[i].Name}
		f.Children = fromXMLNodes(folders[i].Folders, folders[i].Collections)
		nodes = append(nodes, Node{Folder: f})
	}
	for i := range collections {
		nodes = append(nodes, Node{Collection: fromXMLCollection(&collections[i])})
	}
	return nodes
}

func toXMLNodes(nodes []Node) (folders []xmlFolder, collections []xmlCollection) {
	for _, n := range nodes {
		switch {
		case n.Folder != nil:
			xf := xmlFolder{Name: n.Folder.Name}
			xf.Folders, xf.Collections = toXMLNodes(n.Folder.Children)
			folders = append(folders, xf)
		case n.Collection != nil:
			collections = append(collections, toXMLCollection(n.Collection))
		}
	}
	return folders, collections
}

func fromXMLCollection(x *xmlCollection) *Collection {
	c := &Collection{
		Name:                      x.Name,
		FolderPath:                x.FolderPath,
		FilenameFormat:            x.FilenameFormat,
		FileExtension:             x.FileExtension,
		SavePlaylistsToSubfolders: x.SavePlaylistsToSubfolders,
		URLNameFormat:             x.URLNameFormat,
		ExcludeAfterDownload:      x.ExcludeAfterDownload,
		AutoConcatURLs:            x.AutoConcat,
	}
	if x.BookmarkSync != nil {
		c.SyncBookmarkFile = x.BookmarkSync.File
		c.SyncBookmarkTitleAsURLName = x.BookmarkSync.TitleAsURLName
		for _, pc := range x.BookmarkSync.Path {
			c.SyncBookmarkPath = append(c.SyncBookmarkPath, PathComponent{ID: pc.ID, Name: pc.Name})
		}
	}
	c.SyncActions = make(map[SyncStatus]SyncAction)
	for _, sa := range x.SyncActions {
		c.SyncActions[SyncStatus(sa.Status)] = SyncAction(sa.Action)
	}
	c.EnsureSyncActions()
	for i := range x.URLs {
		c.URLs = append(c.URLs, fromXMLURL(&x.URLs[i]))
	}
	return c
}

func toXMLCollection(c *Collection) xmlCollection {
	x := xmlCollection{
		Name:                      c.Name,
		FolderPath:                c.FolderPath,
		FilenameFormat:            c.FilenameFormat,
		FileExtension:             c.FileExtension,
		SavePlaylistsToSubfolders: c.SavePlaylistsToSubfolders,
		URLNameFormat:             c.URLNameFormat,
		ExcludeAfterDownload:      c.ExcludeAfterDownload,
		AutoConcat:                c.AutoConcatURLs,
	}
	if c.SyncBookmarkFile != "" {
		bs := &xmlBookmarkSync{File: c.SyncBookmarkFile, TitleAsURLName: c.SyncBookmarkTitleAsURLName}
		for _, pc := range c.SyncBookmarkPath {
			bs.Path = append(bs.Path, xmlPathComponent{ID: pc.ID, Name: pc.Name})
		}
		x.BookmarkSync = bs
	}
	// Only persist a policy that deviates from the defaults, like unset names.
	defaults := DefaultSyncActions()
	for _, s := range Statuses {
		if a := c.SyncActions[s]; a != defaults[s] {
			x.SyncActions = append(x.SyncActions, xmlSyncAction{Status: string(s), Action: string(a)})
		}
	}
	for _, u := range c.URLs {
		x.URLs = append(x.URLs, toXMLURL(u))
	}
	return x
}

func fromXMLURL(x *xmlCollectionURL) *CollectionUrl {
	u := &CollectionUrl{
		URL:      x.URL,
		Name:     x.Name,
		Excluded: x.Excluded,
		Concat:   x.Concat,
		Tracks:   make(map[string]*Track, len(x.Tracks)),
	}
	if x.IsPlaylist != "" {
		v, err := strconv.ParseBool(x.IsPlaylist)
		if err == nil {
			u.IsPlaylist = &v
		}
	}
	for _, t := range x.Tracks {
		u.Tracks[t.URL] = &Track{
			RemoteID:      t.URL,
			Title:         t.Title,
			Filename:      t.Path,
			PlaylistIndex: t.PlaylistIndex,
			Status:        SyncStatus(t.Status),
			Permanent:     t.Permanent,
		}
	}
	return u
}

func toXMLURL(u *CollectionUrl) xmlCollectionURL {
	x := xmlCollectionURL{
		URL:      u.URL,
		Name:     u.Name,
		Excluded: u.Excluded,
		Concat:   u.Concat,
	}
	if u.IsPlaylist != nil {
		x.IsPlaylist = strconv.FormatBool(*u.IsPlaylist)
	}
	ids := make([]string, 0, len(u.Tracks))
	for id := range u.Tracks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		t := u.Tracks[id]
		x.Tracks = append(x.Tracks, xmlTrack{
			URL:           t.RemoteID,
			Status:        string(t.Status),
			Path:          t.Filename,
			Title:         t.Title,
			PlaylistIndex: t.PlaylistIndex,
			Permanent:     t.Permanent,
		})
	}
	return x
}
