// Package storage archives point-in-time copies of the live tab set in a
// SQLite database. Archived snapshots survive browser restarts and can be
// listed, diffed against the live session, or deleted from the CLI.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/azln/zenith/internal/types"
)

// ArchiveSummary holds the metadata for an archived snapshot.
type ArchiveSummary struct {
	ID        int64
	Rev       int
	Label     string // optional
	CreatedAt time.Time
	TabCount  int
}

// ArchiveGroup is a tab group within an archived snapshot.
type ArchiveGroup struct {
	ID      int64 // set after insert
	GroupID int   // browser-side group id at capture time
	Title   string
	Color   string
}

// ArchiveTab is a single tab within an archived snapshot.
type ArchiveTab struct {
	URL        string
	Title      string
	FavIconURL string
	Pinned     bool
	GroupIndex *int   // index into the groups slice; nil = ungrouped
	GroupTitle string // populated by GetArchive
}

// ArchiveFull is an archived snapshot with its groups and tabs.
type ArchiveFull struct {
	ArchiveSummary
	Groups []ArchiveGroup
	Tabs   []ArchiveTab
}

// migration is a numbered schema change, applied in order and tracked in
// schema_migrations so each runs exactly once.
type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "initial schema",
		SQL: `
CREATE TABLE IF NOT EXISTS archives (
    id          INTEGER PRIMARY KEY,
    rev         INTEGER NOT NULL UNIQUE,
    label       TEXT,
    created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
    tab_count   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS archive_groups (
    id          INTEGER PRIMARY KEY,
    archive_id  INTEGER NOT NULL REFERENCES archives(id) ON DELETE CASCADE,
    group_id    INTEGER NOT NULL,
    title       TEXT NOT NULL,
    color       TEXT
);
CREATE TABLE IF NOT EXISTS archive_tabs (
    id          INTEGER PRIMARY KEY,
    archive_id  INTEGER NOT NULL REFERENCES archives(id) ON DELETE CASCADE,
    group_id    INTEGER REFERENCES archive_groups(id),
    url         TEXT NOT NULL,
    title       TEXT NOT NULL,
    pinned      BOOLEAN DEFAULT FALSE
);`,
	},
	{
		Version:     2,
		Description: "add favicon_url column to archive_tabs",
		SQL:         `ALTER TABLE archive_tabs ADD COLUMN favicon_url TEXT DEFAULT '';`,
	},
}

// OpenDB opens (or creates) the archive database at the given path. It
// creates parent directories if needed, enables foreign keys and WAL mode,
// and runs any pending migrations.
func OpenDB(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version     INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if exists > 0 {
			continue
		}

		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := db.Exec(
			"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// DefaultDBPath returns the archive database location:
// ~/.local/share/zenith/zenith.db
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "zenith", "zenith.db"), nil
}

// CreateArchive stores a live snapshot in a single transaction. The rev
// number is auto-assigned. Label is optional (empty = unlabeled). Returns
// the assigned rev.
func CreateArchive(db *sql.DB, snap *types.Snapshot, label string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var rev int
	if err := tx.QueryRow("SELECT COALESCE(MAX(rev), 0) + 1 FROM archives").Scan(&rev); err != nil {
		return 0, fmt.Errorf("compute next rev: %w", err)
	}

	var labelVal interface{}
	if label != "" {
		labelVal = label
	}

	res, err := tx.Exec(
		"INSERT INTO archives (rev, label, tab_count) VALUES (?, ?, ?)",
		rev, labelVal, len(snap.Tabs),
	)
	if err != nil {
		return 0, fmt.Errorf("insert archive: %w", err)
	}
	archiveID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get archive id: %w", err)
	}

	// Insert groups in a stable order and remember their row ids.
	gids := make([]int, 0, len(snap.Groups))
	for id := range snap.Groups {
		gids = append(gids, id)
	}
	sort.Ints(gids)

	rowID := make(map[int]int64, len(gids))
	for _, id := range gids {
		g := snap.Groups[id]
		res, err := tx.Exec(
			"INSERT INTO archive_groups (archive_id, group_id, title, color) VALUES (?, ?, ?, ?)",
			archiveID, g.ID, g.Title, g.Color,
		)
		if err != nil {
			return 0, fmt.Errorf("insert group %q: %w", g.Title, err)
		}
		rid, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("get group id: %w", err)
		}
		rowID[id] = rid
	}

	for _, tab := range snap.Tabs {
		var groupRef interface{}
		if tab.GroupID != types.NoGroup {
			if rid, ok := rowID[tab.GroupID]; ok {
				groupRef = rid
			}
		}
		_, err := tx.Exec(
			"INSERT INTO archive_tabs (archive_id, group_id, url, title, favicon_url, pinned) VALUES (?, ?, ?, ?, ?, ?)",
			archiveID, groupRef, tab.URL, tab.Title, tab.FavIconURL, tab.Pinned,
		)
		if err != nil {
			return 0, fmt.Errorf("insert tab %q: %w", tab.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return rev, nil
}

// ListArchives returns all archived snapshots, newest first.
func ListArchives(db *sql.DB) ([]ArchiveSummary, error) {
	rows, err := db.Query(
		"SELECT id, rev, label, created_at, tab_count FROM archives ORDER BY created_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("query archives: %w", err)
	}
	defer rows.Close()

	var result []ArchiveSummary
	for rows.Next() {
		var s ArchiveSummary
		var label sql.NullString
		if err := rows.Scan(&s.ID, &s.Rev, &label, &s.CreatedAt, &s.TabCount); err != nil {
			return nil, fmt.Errorf("scan archive: %w", err)
		}
		if label.Valid {
			s.Label = label.String
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetArchive loads a full archived snapshot by rev. Each tab's GroupTitle
// is populated from its group.
func GetArchive(db *sql.DB, rev int) (*ArchiveFull, error) {
	arch := &ArchiveFull{}

	var label sql.NullString
	err := db.QueryRow(
		"SELECT id, rev, label, created_at, tab_count FROM archives WHERE rev = ?",
		rev,
	).Scan(&arch.ID, &arch.Rev, &label, &arch.CreatedAt, &arch.TabCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("archive rev %d not found", rev)
		}
		return nil, fmt.Errorf("query archive: %w", err)
	}
	if label.Valid {
		arch.Label = label.String
	}

	groupRows, err := db.Query(
		"SELECT id, group_id, title, color FROM archive_groups WHERE archive_id = ?",
		arch.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer groupRows.Close()

	titleByRow := make(map[int64]string)
	for groupRows.Next() {
		var g ArchiveGroup
		if err := groupRows.Scan(&g.ID, &g.GroupID, &g.Title, &g.Color); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		arch.Groups = append(arch.Groups, g)
		titleByRow[g.ID] = g.Title
	}
	if err := groupRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	tabRows, err := db.Query(
		"SELECT url, title, favicon_url, group_id, pinned FROM archive_tabs WHERE archive_id = ? ORDER BY id",
		arch.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tabs: %w", err)
	}
	defer tabRows.Close()

	for tabRows.Next() {
		var tab ArchiveTab
		var groupRef *int64
		if err := tabRows.Scan(&tab.URL, &tab.Title, &tab.FavIconURL, &groupRef, &tab.Pinned); err != nil {
			return nil, fmt.Errorf("scan tab: %w", err)
		}
		if groupRef != nil {
			tab.GroupTitle = titleByRow[*groupRef]
		}
		arch.Tabs = append(arch.Tabs, tab)
	}
	if err := tabRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tabs: %w", err)
	}

	return arch, nil
}

// GetLatestArchive returns the most recent archive, or nil, nil when the
// database is empty.
func GetLatestArchive(db *sql.DB) (*ArchiveFull, error) {
	var rev int
	err := db.QueryRow("SELECT rev FROM archives ORDER BY rev DESC LIMIT 1").Scan(&rev)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest rev: %w", err)
	}
	return GetArchive(db, rev)
}

// DeleteArchive removes an archive by rev. Groups and tabs cascade.
func DeleteArchive(db *sql.DB, rev int) error {
	res, err := db.Exec("DELETE FROM archives WHERE rev = ?", rev)
	if err != nil {
		return fmt.Errorf("delete archive: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("archive rev %d not found", rev)
	}
	return nil
}
