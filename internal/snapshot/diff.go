// Package snapshot compares archived tab sets against the live session.
package snapshot

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/azln/zenith/internal/storage"
	"github.com/azln/zenith/internal/types"
)

// DiffEntry is a single tab in a diff result.
type DiffEntry struct {
	URL   string
	Title string
	Group string // group title, or empty if ungrouped
}

// DiffResult is the outcome of comparing an archive against the live
// session. Comparison is by URL: position, pin state, and grouping changes
// do not count as differences.
type DiffResult struct {
	Rev     int
	Added   []DiffEntry // in live but not in the archive
	Removed []DiffEntry // in the archive but not in live
}

// Diff compares archive rev against the live snapshot.
func Diff(db *sql.DB, rev int, live *types.Snapshot) (*DiffResult, error) {
	arch, err := storage.GetArchive(db, rev)
	if err != nil {
		return nil, err
	}

	archived := make(map[string]DiffEntry, len(arch.Tabs))
	for _, tab := range arch.Tabs {
		archived[tab.URL] = DiffEntry{URL: tab.URL, Title: tab.Title, Group: tab.GroupTitle}
	}

	current := make(map[string]DiffEntry, len(live.Tabs))
	for _, tab := range live.Tabs {
		group := ""
		if g, ok := live.Groups[tab.GroupID]; ok {
			group = g.Title
		}
		current[tab.URL] = DiffEntry{URL: tab.URL, Title: tab.Title, Group: group}
	}

	result := &DiffResult{Rev: rev}
	for url, entry := range current {
		if _, ok := archived[url]; !ok {
			result.Added = append(result.Added, entry)
		}
	}
	for url, entry := range archived {
		if _, ok := current[url]; !ok {
			result.Removed = append(result.Removed, entry)
		}
	}
	return result, nil
}

// FormatDiff renders a DiffResult for terminal output.
func FormatDiff(d *DiffResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Diff against archive rev %d\n", d.Rev)
	fmt.Fprintf(&sb, "Added: %d  Removed: %d\n", len(d.Added), len(d.Removed))

	if len(d.Added) > 0 {
		sb.WriteString("\n+ Added:\n")
		for _, e := range d.Added {
			if e.Group != "" {
				fmt.Fprintf(&sb, "  + %s [%s]\n", e.URL, e.Group)
			} else {
				fmt.Fprintf(&sb, "  + %s\n", e.URL)
			}
		}
	}

	if len(d.Removed) > 0 {
		sb.WriteString("\n- Removed:\n")
		for _, e := range d.Removed {
			if e.Group != "" {
				fmt.Fprintf(&sb, "  - %s [%s]\n", e.URL, e.Group)
			} else {
				fmt.Fprintf(&sb, "  - %s\n", e.URL)
			}
		}
	}

	if len(d.Added) == 0 && len(d.Removed) == 0 {
		sb.WriteString("\nNo changes.\n")
	}
	return sb.String()
}
