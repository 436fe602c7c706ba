package tui

import (
	"testing"

	"github.com/azln/zenith/internal/reconcile"
	"github.com/azln/zenith/internal/state"
	"github.com/azln/zenith/internal/types"
)

func flatTabs(seq uint64) types.Snapshot {
	return types.Snapshot{
		Seq:      seq,
		WindowID: 1,
		Tabs: []types.Tab{
			{ID: 1, Index: 0, Active: true, Title: "Alpha", URL: "https://a.example.com", GroupID: types.NoGroup},
			{ID: 2, Index: 1, Title: "Beta", URL: "https://b.example.com", GroupID: types.NoGroup},
			{ID: 3, Index: 2, Title: "Gamma", URL: "https://c.example.com", GroupID: types.NoGroup},
		},
		Groups: map[int]types.Group{},
	}
}

func sidebarWith(t *testing.T, snap types.Snapshot) (*Sidebar, *state.Store) {
	t.Helper()
	st := state.NewStore()
	if !st.ReplaceSnapshot(snap) {
		t.Fatal("snapshot rejected")
	}
	s := NewSidebar(st)
	s.Refresh()
	return s, st
}

func TestRefreshBuildsOnFirstSnapshot(t *testing.T) {
	st := state.NewStore()
	if !st.ReplaceSnapshot(flatTabs(1)) {
		t.Fatal("snapshot rejected")
	}
	s := NewSidebar(st)

	if action := s.Refresh(); action != reconcile.Full {
		t.Errorf("first refresh action = %v, want Full", action)
	}
	tree := s.Tree()
	if tree == nil {
		t.Fatal("no tree after refresh")
	}
	for _, id := range []int{1, 2, 3} {
		if !tree.Has(id) {
			t.Errorf("tree missing tab %d", id)
		}
	}
}

func TestRefreshPatchKeepsTree(t *testing.T) {
	s, st := sidebarWith(t, flatTabs(1))
	before := s.Tree()

	next := flatTabs(2)
	next.Tabs[1].Title = "Beta renamed"
	if !st.ReplaceSnapshot(next) {
		t.Fatal("snapshot rejected")
	}

	if action := s.Refresh(); action != reconcile.Patch {
		t.Errorf("cosmetic refresh action = %v, want Patch", action)
	}
	if s.Tree() != before {
		t.Error("patch replaced the tree")
	}
}

func TestRefreshStructuralChangeRebuilds(t *testing.T) {
	s, st := sidebarWith(t, flatTabs(1))
	before := s.Tree()

	next := flatTabs(2)
	next.Tabs = append(next.Tabs, types.Tab{
		ID: 4, Index: 3, Title: "Delta", URL: "https://d.example.com", GroupID: types.NoGroup,
	})
	if !st.ReplaceSnapshot(next) {
		t.Fatal("snapshot rejected")
	}

	if action := s.Refresh(); action != reconcile.Full {
		t.Errorf("structural refresh action = %v, want Full", action)
	}
	if s.Tree() == before {
		t.Error("structural change kept the old tree")
	}
	if !s.Tree().Has(4) {
		t.Error("rebuilt tree missing new tab")
	}
}

func TestRefreshIdenticalSnapshotIsNone(t *testing.T) {
	s, st := sidebarWith(t, flatTabs(1))
	if !st.ReplaceSnapshot(flatTabs(2)) {
		t.Fatal("snapshot rejected")
	}
	s.Refresh()

	if !st.ReplaceSnapshot(flatTabs(3)) {
		t.Fatal("snapshot rejected")
	}
	if action := s.Refresh(); action != reconcile.None {
		t.Errorf("identical refresh action = %v, want None", action)
	}
}

func TestRefreshRestoresPendingSelection(t *testing.T) {
	s, st := sidebarWith(t, flatTabs(1))
	st.MarkPendingSelection(3)

	next := flatTabs(2)
	next.Tabs[0].Title = "Alpha renamed"
	if !st.ReplaceSnapshot(next) {
		t.Fatal("snapshot rejected")
	}
	s.Refresh()

	if want := s.Tree().IndexOfTab(3); s.Cursor != want {
		t.Errorf("cursor = %d, want %d (row of tab 3)", s.Cursor, want)
	}
}

func TestIndexAtRespectsViewport(t *testing.T) {
	s, _ := sidebarWith(t, flatTabs(1))
	s.Height = 2
	s.Offset = 1

	if got := s.IndexAt(0); got != 1 {
		t.Errorf("IndexAt(0) = %d, want 1", got)
	}
	if got := s.IndexAt(5); got != -1 {
		t.Errorf("IndexAt(5) = %d, want -1 (outside viewport)", got)
	}
	node := s.RowAt(1)
	if node == nil || node.Tab.ID != 3 {
		t.Errorf("RowAt(1) = %+v, want tab 3", node)
	}
}

func TestMoveDownScrolls(t *testing.T) {
	s, _ := sidebarWith(t, flatTabs(1))
	s.Height = 2

	s.MoveDown()
	s.MoveDown()
	if s.Cursor != 2 || s.Offset != 1 {
		t.Errorf("cursor/offset = %d/%d, want 2/1", s.Cursor, s.Offset)
	}
	s.MoveUp()
	s.MoveUp()
	if s.Cursor != 0 || s.Offset != 0 {
		t.Errorf("cursor/offset = %d/%d, want 0/0", s.Cursor, s.Offset)
	}
}
