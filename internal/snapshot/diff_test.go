package snapshot

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/azln/zenith/internal/storage"
	"github.com/azln/zenith/internal/types"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "zenith.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func snap(urls ...string) *types.Snapshot {
	s := &types.Snapshot{Groups: map[int]types.Group{}}
	for i, u := range urls {
		s.Tabs = append(s.Tabs, types.Tab{ID: i + 1, Index: i, URL: u, Title: u, GroupID: types.NoGroup})
	}
	return s
}

func TestDiffAddedAndRemoved(t *testing.T) {
	db := testDB(t)
	rev, err := storage.CreateArchive(db, snap("https://a.test/", "https://b.test/"), "")
	if err != nil {
		t.Fatal(err)
	}

	d, err := Diff(db, rev, snap("https://b.test/", "https://c.test/"))
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(d.Added) != 1 || d.Added[0].URL != "https://c.test/" {
		t.Errorf("Added = %+v", d.Added)
	}
	if len(d.Removed) != 1 || d.Removed[0].URL != "https://a.test/" {
		t.Errorf("Removed = %+v", d.Removed)
	}
}

func TestDiffIgnoresReorder(t *testing.T) {
	db := testDB(t)
	rev, _ := storage.CreateArchive(db, snap("https://a.test/", "https://b.test/"), "")

	d, err := Diff(db, rev, snap("https://b.test/", "https://a.test/"))
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Added) != 0 || len(d.Removed) != 0 {
		t.Errorf("reorder produced diff: %+v", d)
	}
}

func TestDiffCarriesGroupTitles(t *testing.T) {
	db := testDB(t)
	archived := snap("https://a.test/")
	rev, _ := storage.CreateArchive(db, archived, "")

	live := &types.Snapshot{
		Tabs:   []types.Tab{{ID: 1, URL: "https://grouped.test/", Title: "Grouped", GroupID: 7}},
		Groups: map[int]types.Group{7: {ID: 7, Title: "Research", Color: "purple"}},
	}
	d, err := Diff(db, rev, live)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Added) != 1 || d.Added[0].Group != "Research" {
		t.Errorf("Added = %+v, want group Research", d.Added)
	}
}

func TestDiffUnknownRev(t *testing.T) {
	db := testDB(t)
	if _, err := Diff(db, 99, snap()); err == nil {
		t.Error("expected error for missing archive")
	}
}

func TestFormatDiff(t *testing.T) {
	out := FormatDiff(&DiffResult{
		Rev:     3,
		Added:   []DiffEntry{{URL: "https://new.test/", Group: "Work"}},
		Removed: []DiffEntry{{URL: "https://gone.test/"}},
	})
	for _, want := range []string{"rev 3", "+ https://new.test/ [Work]", "- https://gone.test/"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if out := FormatDiff(&DiffResult{Rev: 1}); !strings.Contains(out, "No changes.") {
		t.Errorf("empty diff output:\n%s", out)
	}
}
