package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/azln/zenith/internal/types"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "zenith.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSnapshot() *types.Snapshot {
	return &types.Snapshot{
		Tabs: []types.Tab{
			{ID: 1, Index: 0, Title: "Docs", URL: "https://docs.example.com/", Pinned: true},
			{ID: 2, Index: 1, Title: "Issue 42", URL: "https://tracker.example.com/42", GroupID: 5},
			{ID: 3, Index: 2, Title: "Blog", URL: "https://blog.example.com/", GroupID: types.NoGroup, FavIconURL: "https://blog.example.com/icon.png"},
		},
		Groups: map[int]types.Group{
			5: {ID: 5, Title: "Work", Color: "blue"},
		},
	}
}

func TestCreateAndGetArchive(t *testing.T) {
	db := testDB(t)

	rev, err := CreateArchive(db, sampleSnapshot(), "before cleanup")
	if err != nil {
		t.Fatalf("CreateArchive: %v", err)
	}
	if rev != 1 {
		t.Errorf("first rev = %d, want 1", rev)
	}

	arch, err := GetArchive(db, rev)
	if err != nil {
		t.Fatalf("GetArchive: %v", err)
	}
	if arch.Label != "before cleanup" || arch.TabCount != 3 {
		t.Errorf("summary = %+v", arch.ArchiveSummary)
	}
	if len(arch.Tabs) != 3 || len(arch.Groups) != 1 {
		t.Fatalf("got %d tabs, %d groups", len(arch.Tabs), len(arch.Groups))
	}

	byURL := make(map[string]ArchiveTab)
	for _, tab := range arch.Tabs {
		byURL[tab.URL] = tab
	}
	if tab := byURL["https://tracker.example.com/42"]; tab.GroupTitle != "Work" {
		t.Errorf("grouped tab = %+v, want group Work", tab)
	}
	if tab := byURL["https://docs.example.com/"]; !tab.Pinned || tab.GroupTitle != "" {
		t.Errorf("pinned tab = %+v", tab)
	}
	if tab := byURL["https://blog.example.com/"]; tab.FavIconURL != "https://blog.example.com/icon.png" {
		t.Errorf("favicon = %q", tab.FavIconURL)
	}
}

func TestRevsIncrement(t *testing.T) {
	db := testDB(t)
	for want := 1; want <= 3; want++ {
		rev, err := CreateArchive(db, sampleSnapshot(), "")
		if err != nil {
			t.Fatalf("CreateArchive: %v", err)
		}
		if rev != want {
			t.Errorf("rev = %d, want %d", rev, want)
		}
	}
}

func TestListArchivesNewestFirst(t *testing.T) {
	db := testDB(t)
	CreateArchive(db, sampleSnapshot(), "a")
	CreateArchive(db, sampleSnapshot(), "b")

	list, err := ListArchives(db)
	if err != nil {
		t.Fatalf("ListArchives: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d archives, want 2", len(list))
	}
	if list[0].Label != "b" || list[1].Label != "a" {
		t.Errorf("order = %q, %q", list[0].Label, list[1].Label)
	}
}

func TestGetLatestArchive(t *testing.T) {
	db := testDB(t)

	latest, err := GetLatestArchive(db)
	if err != nil {
		t.Fatalf("GetLatestArchive on empty db: %v", err)
	}
	if latest != nil {
		t.Errorf("empty db returned %+v", latest)
	}

	CreateArchive(db, sampleSnapshot(), "")
	CreateArchive(db, sampleSnapshot(), "newest")
	latest, err = GetLatestArchive(db)
	if err != nil {
		t.Fatalf("GetLatestArchive: %v", err)
	}
	if latest == nil || latest.Rev != 2 {
		t.Errorf("latest = %+v, want rev 2", latest)
	}
}

func TestDeleteArchiveCascades(t *testing.T) {
	db := testDB(t)
	rev, _ := CreateArchive(db, sampleSnapshot(), "")

	if err := DeleteArchive(db, rev); err != nil {
		t.Fatalf("DeleteArchive: %v", err)
	}
	if err := DeleteArchive(db, rev); err == nil {
		t.Error("second delete should fail")
	}

	var tabs int
	db.QueryRow("SELECT COUNT(*) FROM archive_tabs").Scan(&tabs)
	if tabs != 0 {
		t.Errorf("%d orphaned tab rows after cascade delete", tabs)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zenith.db")
	db, err := OpenDB(path)
	if err != nil {
		t.Fatal(err)
	}
	CreateArchive(db, sampleSnapshot(), "kept")
	db.Close()

	// Reopening runs migrations again; data must survive.
	db2, err := OpenDB(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()
	list, err := ListArchives(db2)
	if err != nil || len(list) != 1 || list[0].Label != "kept" {
		t.Errorf("after reopen: list=%v err=%v", list, err)
	}
}
