// Package render builds the sidebar's row tree from store contents and
// turns it into styled terminal lines. The tree is the render target and
// nothing else: state lives in the store, and interaction code never reads
// state back out of rendered rows.
package render

import (
	"github.com/azln/zenith/internal/reconcile"
	"github.com/azln/zenith/internal/state"
	"github.com/azln/zenith/internal/types"
)

// NodeKind discriminates row types in the tree.
type NodeKind int

const (
	NodeSectionLabel NodeKind = iota
	NodeTab
	NodeGroupHeader
	NodeEmpty
)

// DropPos marks where a dragged tab would land relative to a row.
type DropPos int

const (
	DropNone DropPos = iota
	DropAbove
	DropBelow
	DropInto // group header or body target
)

// Node is one rendered row. Exactly one terminal line.
type Node struct {
	Kind  NodeKind
	Tab   types.Tab   // valid when Kind == NodeTab
	Group types.Group // valid when Kind == NodeGroupHeader
	Count int         // member count for group headers
	Label string      // section labels and empty-state text

	Dragging bool
	Drop     DropPos

	line  string
	dirty bool
}

// Tree is the ordered row list plus a tab-id index for patching.
type Tree struct {
	Nodes []*Node
	byTab map[int]*Node
	width int
}

// Build does a full render: filter, partition into pinned strip, group
// sections, and ungrouped rows, in that order. Collapsed groups keep their
// header (with member count) but contribute no member rows.
func Build(st *state.Store, width int) *Tree {
	t := &Tree{byTab: make(map[int]*Node), width: width}
	snap := st.Snapshot()
	filtered := st.FilteredTabs()

	if len(filtered) == 0 {
		text := "No tabs"
		if st.SearchQuery() != "" {
			text = "No matching tabs"
		}
		t.push(&Node{Kind: NodeEmpty, Label: text})
		return t
	}

	var pinned, unpinned []types.Tab
	for _, tab := range filtered {
		if tab.Pinned {
			pinned = append(pinned, tab)
		} else {
			unpinned = append(unpinned, tab)
		}
	}

	if len(pinned) > 0 {
		t.push(&Node{Kind: NodeSectionLabel, Label: "Pinned"})
		for _, tab := range pinned {
			t.push(&Node{Kind: NodeTab, Tab: tab})
		}
	}

	// Group sections in order of first member occurrence; tabs keep index
	// order within each section.
	grouped := make(map[int][]types.Tab)
	var groupOrder []int
	var ungrouped []types.Tab
	for _, tab := range unpinned {
		if snap.Grouped(tab) {
			if _, seen := grouped[tab.GroupID]; !seen {
				groupOrder = append(groupOrder, tab.GroupID)
			}
			grouped[tab.GroupID] = append(grouped[tab.GroupID], tab)
		} else {
			ungrouped = append(ungrouped, tab)
		}
	}

	for _, gid := range groupOrder {
		group := snap.Groups[gid]
		members := grouped[gid]
		t.push(&Node{Kind: NodeGroupHeader, Group: group, Count: len(members)})
		if st.GroupCollapsed(gid) {
			continue
		}
		for _, tab := range members {
			t.push(&Node{Kind: NodeTab, Tab: tab})
		}
	}

	for _, tab := range ungrouped {
		t.push(&Node{Kind: NodeTab, Tab: tab})
	}

	return t
}

func (t *Tree) push(n *Node) {
	n.dirty = true
	t.Nodes = append(t.Nodes, n)
	if n.Kind == NodeTab {
		t.byTab[n.Tab.ID] = n
	}
}

// Has reports whether a row exists for the tab id. This is the reconciler's
// exists check.
func (t *Tree) Has(tabID int) bool {
	_, ok := t.byTab[tabID]
	return ok
}

// Apply patches existing rows in place per the plan. Returns false when the
// plan demands a full rebuild (or targets a missing row), in which case the
// caller rebuilds via Build. Applying the same plan twice leaves the tree
// in the same state.
func (t *Tree) Apply(plan reconcile.Plan) bool {
	switch plan.Action {
	case reconcile.None:
		return true
	case reconcile.Full:
		return false
	}
	for _, p := range plan.Patches {
		n, ok := t.byTab[p.TabID]
		if !ok {
			return false
		}
		if n.Tab.Active != p.Active {
			n.Tab.Active = p.Active
			n.dirty = true
		}
		if p.TitleChanged && n.Tab.Title != p.Title {
			n.Tab.Title = p.Title
			n.dirty = true
		}
	}
	return true
}

// SetDragging toggles the drag styling on a tab row.
func (t *Tree) SetDragging(tabID int, on bool) {
	if n, ok := t.byTab[tabID]; ok && n.Dragging != on {
		n.Dragging = on
		n.dirty = true
	}
}

// SetDropIndicator marks a single drop target, clearing all others first.
// Only one indicator is ever active.
func (t *Tree) SetDropIndicator(idx int, pos DropPos) {
	t.ClearDropIndicators()
	if idx >= 0 && idx < len(t.Nodes) {
		t.Nodes[idx].Drop = pos
		t.Nodes[idx].dirty = true
	}
}

// ClearDropIndicators removes every drop marker. Idempotent.
func (t *Tree) ClearDropIndicators() {
	for _, n := range t.Nodes {
		if n.Drop != DropNone {
			n.Drop = DropNone
			n.dirty = true
		}
	}
}

// ClearDragging removes drag styling from all rows. Idempotent.
func (t *Tree) ClearDragging() {
	for _, n := range t.Nodes {
		if n.Dragging {
			n.Dragging = false
			n.dirty = true
		}
	}
}

// NodeAt returns the node at a row index, or nil.
func (t *Tree) NodeAt(idx int) *Node {
	if idx < 0 || idx >= len(t.Nodes) {
		return nil
	}
	return t.Nodes[idx]
}

// IndexOfTab returns the row index for a tab id, or -1.
func (t *Tree) IndexOfTab(tabID int) int {
	for i, n := range t.Nodes {
		if n.Kind == NodeTab && n.Tab.ID == tabID {
			return i
		}
	}
	return -1
}

// Len returns the number of rows.
func (t *Tree) Len() int { return len(t.Nodes) }
