package state

import (
	"testing"

	"github.com/azln/zenith/internal/types"
)

func snap(seq uint64, tabs ...types.Tab) types.Snapshot {
	return types.Snapshot{Tabs: tabs, Groups: map[int]types.Group{}, Seq: seq}
}

func TestReplaceSnapshotSeqGuard(t *testing.T) {
	s := NewStore()
	if !s.ReplaceSnapshot(snap(2, types.Tab{ID: 1, Title: "new"})) {
		t.Fatal("seq 2 rejected")
	}
	// A stale fetch resolving late must be dropped.
	if s.ReplaceSnapshot(snap(1, types.Tab{ID: 1, Title: "old"})) {
		t.Error("stale seq 1 accepted")
	}
	if s.Snapshot().Tabs[0].Title != "new" {
		t.Errorf("snapshot overwritten by stale fetch: %q", s.Snapshot().Tabs[0].Title)
	}
	// Equal seq is a re-fetch of the same request; accept it.
	if !s.ReplaceSnapshot(snap(2, types.Tab{ID: 1, Title: "again"})) {
		t.Error("equal seq rejected")
	}
}

func TestFilteredTabs(t *testing.T) {
	s := NewStore()
	tabs := []types.Tab{
		{ID: 1, Title: "GitHub - pulls", URL: "https://github.com/pulls"},
		{ID: 2, Title: "Hacker News", URL: "https://news.ycombinator.com"},
		{ID: 3, Title: "Docs", URL: "https://pkg.go.dev/github.com/x"},
	}
	s.ReplaceSnapshot(snap(1, tabs...))

	tests := []struct {
		query string
		want  []int
	}{
		{"", []int{1, 2, 3}},
		{"github", []int{1, 3}}, // title match and url match
		{"GITHUB", []int{1, 3}}, // case-insensitive
		{"hacker", []int{2}},
		{"zzz_no_match", nil},
	}
	for _, tt := range tests {
		s.SetSearchQuery(tt.query)
		got := s.FilteredTabs()
		if len(got) != len(tt.want) {
			t.Errorf("query %q: got %d tabs, want %d", tt.query, len(got), len(tt.want))
			continue
		}
		for i, id := range tt.want {
			if got[i].ID != id {
				t.Errorf("query %q: tab[%d].ID = %d, want %d", tt.query, i, got[i].ID, id)
			}
		}
	}
}

func TestToggleGroupCollapsed(t *testing.T) {
	s := NewStore()
	s.ToggleGroupCollapsed(7)
	s.ToggleGroupCollapsed(3)
	if !s.GroupCollapsed(7) || !s.GroupCollapsed(3) {
		t.Fatal("groups not collapsed after toggle")
	}
	got := s.CollapsedGroups()
	if len(got) != 2 || got[0] != 3 || got[1] != 7 {
		t.Errorf("CollapsedGroups = %v, want sorted [3 7]", got)
	}
	s.ToggleGroupCollapsed(7)
	if s.GroupCollapsed(7) {
		t.Error("group 7 still collapsed after second toggle")
	}
}

func TestDragLifecycle(t *testing.T) {
	s := NewStore()
	s.ReplaceSnapshot(snap(1,
		types.Tab{ID: 10, GroupID: 5},
		types.Tab{ID: 11, GroupID: types.NoGroup},
	))

	s.BeginDrag(10)
	if !s.Dragging() || s.DraggedTabID() != 10 || s.DraggedFromGroup() != 5 {
		t.Errorf("drag state = (%v, %d, %d)", s.Dragging(), s.DraggedTabID(), s.DraggedFromGroup())
	}

	s.EndDrag()
	s.EndDrag() // cleanup must be idempotent
	if s.Dragging() || s.DraggedFromGroup() != types.NoGroup {
		t.Error("drag state survived EndDrag")
	}
}

func TestPendingSelectionClearedBySnapshot(t *testing.T) {
	s := NewStore()
	s.MarkPendingSelection(42)
	if s.PendingSelection() != 42 {
		t.Fatal("pending selection not recorded")
	}
	s.ReplaceSnapshot(snap(1, types.Tab{ID: 42, Active: true}))
	if s.PendingSelection() != 0 {
		t.Error("pending selection survived snapshot replace")
	}
}
