package bookmarks

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "github.com/glebarez/go-sqlite"
)

// Firefox places.sqlite. Bookmarks and folders live in moz_bookmarks
// (type 1 = bookmark, type 2 = folder); URLs are joined from moz_places.
const (
	firefoxTypeBookmark = 1
	firefoxTypeFolder   = 2
)

func openFirefox(path string) (*Tree, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	// Read-only with no busy wait: a browser holding the write lock should
	// surface as ErrStoreLocked immediately, not stall the pass.
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(0)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query(`SELECT b.id, b.type, b.parent, COALESCE(b.title, ''), COALESCE(p.url, '')
		FROM moz_bookmarks AS b
		LEFT JOIN moz_places AS p ON b.fk = p.id
		ORDER BY b.id`)
	if err != nil {
		return nil, classifySQLiteErr(err)
	}
	defer rows.Close()

	type row struct {
		id, typ, parent int64
		title, url      string
	}
	var all []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.typ, &r.parent, &r.title, &r.url); err != nil {
			return nil, classifySQLiteErr(err)
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, classifySQLiteErr(err)
	}

	tree := &Tree{Roots: make(map[string]*Node)}
	folders := make(map[int64]*Folder)
	// Two passes: folders first so children always find their parent,
	// regardless of row order.
	for _, r := range all {
		if r.typ != firefoxTypeFolder {
			continue
		}
		folders[r.id] = &Folder{
			ID:       strconv.FormatInt(r.id, 10),
			Title:    r.title,
			Children: make(map[string]*Node),
		}
	}
	for _, r := range all {
		var n *Node
		switch r.typ {
		case firefoxTypeBookmark:
			n = &Node{Bookmark: &Bookmark{
				ID:    strconv.FormatInt(r.id, 10),
				URL:   r.url,
				Title: r.title,
			}}
		case firefoxTypeFolder:
			n = &Node{Folder: folders[r.id]}
		default:
			continue // separators etc.
		}
		if parent, ok := folders[r.parent]; ok {
			parent.Children[nodeID(n)] = n
		} else {
			tree.Roots[nodeID(n)] = n
		}
	}
	return tree, nil
}

func nodeID(n *Node) string {
	if n.Bookmark != nil {
		return n.Bookmark.ID
	}
	return n.Folder.ID
}

// classifySQLiteErr maps the driver's busy/locked failures onto
// ErrStoreLocked so callers can offer a retry.
func classifySQLiteErr(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "sqlite_busy") {
		return fmt.Errorf("%w: %v", ErrStoreLocked, err)
	}
	return err
}
