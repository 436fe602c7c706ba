// Package state holds the sidebar's single source of truth: the most recent
// snapshot mirrored from the browser plus UI-local state the browser knows
// nothing about. All mutation goes through Store methods, and the Store is
// only ever touched from the bubbletea update loop, so no locking is needed.
// Renderers and the reconciler read it; they never write.
package state

import (
	"sort"
	"strings"

	"github.com/azln/zenith/internal/types"
)

// Store owns the current snapshot and UI-local state.
type Store struct {
	snap types.Snapshot

	searchQuery     string
	collapsedGroups map[int]bool

	// In-flight drag identity. Zero draggedTabID means no drag.
	draggedTabID       int
	draggedFromGroupID int

	// Tab optimistically marked active before the browser confirms. The
	// reconciler always trusts the snapshot's active flag over this.
	pendingSelection int
}

func NewStore() *Store {
	return &Store{
		collapsedGroups:    make(map[int]bool),
		draggedFromGroupID: types.NoGroup,
	}
}

// ReplaceSnapshot installs a newer snapshot. Fetches resolve in any order,
// so a snapshot older than the one already applied is dropped: last
// requested wins. Returns whether the snapshot was accepted.
func (s *Store) ReplaceSnapshot(next types.Snapshot) bool {
	if next.Seq < s.snap.Seq {
		return false
	}
	s.snap = next
	// The browser confirmed some selection by now, one way or the other.
	s.pendingSelection = 0
	return true
}

// Snapshot returns the current snapshot. Callers must not mutate it.
func (s *Store) Snapshot() *types.Snapshot { return &s.snap }

func (s *Store) SetSearchQuery(q string) { s.searchQuery = q }
func (s *Store) SearchQuery() string     { return s.searchQuery }

// FilteredTabs returns tabs matching the search query: case-insensitive
// substring match against title or url. An empty query matches everything.
func (s *Store) FilteredTabs() []types.Tab {
	if s.searchQuery == "" {
		return s.snap.Tabs
	}
	q := strings.ToLower(s.searchQuery)
	var out []types.Tab
	for _, t := range s.snap.Tabs {
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.URL), q) {
			out = append(out, t)
		}
	}
	return out
}

// ToggleGroupCollapsed flips the local collapsed flag for a group. This set
// is independent of the browser-side collapsed flag, which the sidebar does
// not mirror.
func (s *Store) ToggleGroupCollapsed(groupID int) {
	if s.collapsedGroups[groupID] {
		delete(s.collapsedGroups, groupID)
	} else {
		s.collapsedGroups[groupID] = true
	}
}

func (s *Store) GroupCollapsed(groupID int) bool { return s.collapsedGroups[groupID] }

// CollapsedGroups returns the collapsed group ids in sorted order, suitable
// for order-sensitive comparison in the reconciler.
func (s *Store) CollapsedGroups() []int {
	ids := make([]int, 0, len(s.collapsedGroups))
	for id := range s.collapsedGroups {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// BeginDrag records the in-flight drag identity and its origin group. The
// origin group is captured now because the tab may be regrouped mid-drag by
// a concurrent snapshot refresh.
func (s *Store) BeginDrag(tabID int) {
	s.draggedTabID = tabID
	s.draggedFromGroupID = types.NoGroup
	if t := s.snap.TabByID(tabID); t != nil && s.snap.Grouped(*t) {
		s.draggedFromGroupID = t.GroupID
	}
}

// EndDrag clears drag state. Idempotent; this is the only guaranteed
// cleanup point after a drop or a cancelled drag.
func (s *Store) EndDrag() {
	s.draggedTabID = 0
	s.draggedFromGroupID = types.NoGroup
}

func (s *Store) Dragging() bool        { return s.draggedTabID != 0 }
func (s *Store) DraggedTabID() int     { return s.draggedTabID }
func (s *Store) DraggedFromGroup() int { return s.draggedFromGroupID }

// MarkPendingSelection optimistically records a switch-tab request so the
// UI can highlight the row before the browser's activation event arrives.
func (s *Store) MarkPendingSelection(tabID int) { s.pendingSelection = tabID }
func (s *Store) PendingSelection() int          { return s.pendingSelection }
