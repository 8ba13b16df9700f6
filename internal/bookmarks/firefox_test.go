package bookmarks_test

import (
	"errors"
	"os"
	"testing"

	"musicsync/internal/bookmarks"
	"musicsync/internal/testutil"
)

func TestOpenFirefox(t *testing.T) {
	path := testutil.WriteBookmarkDB(t, []testutil.BookmarkSpec{
		{ID: 3, Parent: 0, Title: "toolbar"},
		{ID: 12, Parent: 3, Title: "Music"},
		{ID: 13, Parent: 12, URL: "https://example.com/a", Title: "A"},
		{ID: 14, Parent: 12, Title: "Live Sets"},
		{ID: 15, Parent: 14, URL: "https://example.com/b", Title: "B"},
		{ID: 16, Parent: 3, URL: "https://example.com/outside", Title: "Outside"},
	})

	tree, err := bookmarks.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	folder, err := tree.ResolvePath([]string{"3", "12"})
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if folder.Title != "Music" {
		t.Fatalf("resolved folder %q, want Music", folder.Title)
	}

	// Sub-folder members are included, siblings outside the path are not.
	all := folder.AllBookmarks()
	if len(all) != 2 {
		t.Fatalf("got %d bookmarks, want 2: %v", len(all), all)
	}
	if all["13"] == nil || all["13"].URL != "https://example.com/a" {
		t.Errorf("bookmark 13 = %+v", all["13"])
	}
	if all["15"] == nil || all["15"].Title != "B" {
		t.Errorf("nested bookmark 15 = %+v", all["15"])
	}
}

func TestResolvePathMissingFolder(t *testing.T) {
	path := testutil.WriteBookmarkDB(t, []testutil.BookmarkSpec{
		{ID: 3, Parent: 0, Title: "toolbar"},
	})
	tree, err := bookmarks.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := tree.ResolvePath([]string{"3", "99"}); err == nil {
		t.Fatal("expected an error for a missing folder id")
	}
	if _, err := tree.ResolvePath(nil); err == nil {
		t.Fatal("expected an error for an empty path")
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := bookmarks.Open(t.TempDir() + "/nope.sqlite")
	if err == nil {
		t.Fatal("expected an error for a missing store")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}
