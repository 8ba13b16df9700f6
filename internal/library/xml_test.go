package library

import (
	"path/filepath"
	"testing"
)

func sampleLibrary() *Library {
	playlist := true
	col := NewCollection("mixes")
	col.FolderPath = "/music/mixes"
	col.FileExtension = "opus"
	col.SavePlaylistsToSubfolders = true
	col.ExcludeAfterDownload = true
	col.AutoConcatURLs = []string{"mixtape"}
	col.SyncBookmarkFile = "/home/u/places.sqlite"
	col.SyncBookmarkTitleAsURLName = true
	col.SyncBookmarkPath = []PathComponent{{ID: "3", Name: "toolbar"}, {ID: "12", Name: "Music"}}
	col.SyncActions[StatusRemovedFromSource] = ActionDelete
	col.URLs = []*CollectionUrl{
		{
			URL:        "https://example.com/p",
			Name:       "Road Trip",
			Concat:     true,
			IsPlaylist: &playlist,
			Tracks: map[string]*Track{
				"a": {RemoteID: "a", Title: "One", Filename: "One [a].opus", PlaylistIndex: "1", Status: StatusDownloaded},
				"b": {RemoteID: "b", Title: "Two", PlaylistIndex: "2", Status: StatusNotDownloaded},
				"c": {RemoteID: "c", Title: "Three", Filename: "Three [c].opus", Status: StatusPermanentlyDownloaded, Permanent: true},
			},
		},
		{URL: "https://example.com/single", Excluded: true},
	}
	return &Library{Children: []Node{
		{Folder: &Folder{Name: "archive", Children: []Node{{Collection: col}}}},
	}}
}

func TestXMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.xml")
	if err := Write(path, sampleLibrary()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	col := got.CollectionByName("mixes")
	if col == nil {
		t.Fatal("collection lost in round trip")
	}
	if got.Children[0].Folder == nil || got.Children[0].Folder.Name != "archive" {
		t.Fatal("folder nesting lost")
	}
	if col.FolderPath != "/music/mixes" || col.FileExtension != "opus" {
		t.Errorf("collection settings lost: %+v", col)
	}
	if !col.SavePlaylistsToSubfolders || !col.ExcludeAfterDownload {
		t.Error("boolean settings lost")
	}
	if len(col.AutoConcatURLs) != 1 || col.AutoConcatURLs[0] != "mixtape" {
		t.Errorf("auto-concat patterns lost: %v", col.AutoConcatURLs)
	}
	if col.SyncBookmarkFile != "/home/u/places.sqlite" || !col.SyncBookmarkTitleAsURLName {
		t.Error("bookmark binding lost")
	}
	if len(col.SyncBookmarkPath) != 2 || col.SyncBookmarkPath[1].ID != "12" {
		t.Errorf("bookmark path lost: %v", col.SyncBookmarkPath)
	}
	if col.SyncActions[StatusRemovedFromSource] != ActionDelete {
		t.Error("non-default sync action lost")
	}
	if col.SyncActions[StatusAddedToSource] != ActionDownload {
		t.Error("default sync action not restored")
	}

	u := col.URLByString("https://example.com/p")
	if u == nil {
		t.Fatal("playlist URL lost")
	}
	if u.Name != "Road Trip" || !u.Concat {
		t.Errorf("URL settings lost: %+v", u)
	}
	if u.IsPlaylist == nil || !*u.IsPlaylist {
		t.Error("playlist flag lost")
	}
	if len(u.Tracks) != 3 {
		t.Fatalf("got %d tracks, want 3", len(u.Tracks))
	}
	a := u.Track("a")
	if a == nil || a.Title != "One" || a.Filename != "One [a].opus" || a.PlaylistIndex != "1" || a.Status != StatusDownloaded {
		t.Errorf("track a mangled: %+v", a)
	}
	c := u.Track("c")
	if c == nil || !c.Permanent || c.Status != StatusPermanentlyDownloaded {
		t.Errorf("permanent flag lost: %+v", c)
	}

	single := col.URLByString("https://example.com/single")
	if single == nil || !single.Excluded {
		t.Error("excluded URL lost")
	}
	if single.IsPlaylist != nil {
		t.Error("never-synced URL gained a playlist flag")
	}
}
