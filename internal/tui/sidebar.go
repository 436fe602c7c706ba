package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/azln/zenith/internal/applog"
	"github.com/azln/zenith/internal/reconcile"
	"github.com/azln/zenith/internal/render"
	"github.com/azln/zenith/internal/state"
)

var cursorStyle = lipgloss.NewStyle().Bold(true).Reverse(true)

// Sidebar owns the rendered tab tree and the projection it was last built
// from. Refresh decides between patching rows in place and rebuilding the
// whole tree, so cosmetic churn (title flips, activation) never resets
// scroll position or an in-flight drag.
type Sidebar struct {
	st   *state.Store
	tree *render.Tree
	last *reconcile.Projection

	Cursor int
	Offset int
	Width  int
	Height int
}

func NewSidebar(st *state.Store) *Sidebar {
	return &Sidebar{st: st, Width: 40, Height: 20}
}

// Refresh reconciles the tree against the store and returns the action it
// took. A Patch keeps every row object; a Full rebuild re-derives the tree
// and re-clamps the cursor.
func (s *Sidebar) Refresh() reconcile.Action {
	snap := s.st.Snapshot()
	next := reconcile.Project(snap, s.st.SearchQuery(), s.st.CollapsedGroups())

	exists := func(tabID int) bool { return s.tree != nil && s.tree.Has(tabID) }
	var prev *reconcile.Projection
	if s.tree != nil {
		prev = s.last
	}
	plan := reconcile.Classify(prev, next, exists)

	switch plan.Action {
	case reconcile.None:
		return plan.Action
	case reconcile.Patch:
		if s.tree.Apply(plan) {
			break
		}
		// A patch that cannot land degrades to a rebuild.
		fallthrough
	default:
		s.rebuild()
	}

	s.last = &next
	s.restoreSelection()
	s.clamp()
	return plan.Action
}

func (s *Sidebar) rebuild() {
	s.tree = render.Build(s.st, s.Width)
	applog.Info("sidebar.rebuild", "rows", s.tree.Len())
}

// restoreSelection moves the cursor to a tab that was optimistically
// selected before the confirming snapshot arrived.
func (s *Sidebar) restoreSelection() {
	pending := s.st.PendingSelection()
	if pending == 0 || s.tree == nil {
		return
	}
	if idx := s.tree.IndexOfTab(pending); idx >= 0 {
		s.Cursor = idx
	}
}

// SetWidth changes the render width. Row text depends on it, so the tree
// is rebuilt.
func (s *Sidebar) SetWidth(w int) {
	if w == s.Width {
		return
	}
	s.Width = w
	if s.tree != nil {
		s.rebuild()
	}
}

// Tree exposes the current render tree; nil before the first refresh.
func (s *Sidebar) Tree() *render.Tree { return s.tree }

func (s *Sidebar) visibleRows() int {
	if s.Height < 1 {
		return 1
	}
	return s.Height
}

// MoveUp moves the cursor up one row, scrolling when it leaves the
// viewport.
func (s *Sidebar) MoveUp() {
	if s.Cursor > 0 {
		s.Cursor--
	}
	if s.Cursor < s.Offset {
		s.Offset = s.Cursor
	}
}

// MoveDown moves the cursor down one row.
func (s *Sidebar) MoveDown() {
	if s.tree == nil {
		return
	}
	if s.Cursor < s.tree.Len()-1 {
		s.Cursor++
	}
	if s.Cursor >= s.Offset+s.visibleRows() {
		s.Offset = s.Cursor - s.visibleRows() + 1
	}
}

// CursorToTab places the cursor on a tab's row if it is in the tree.
func (s *Sidebar) CursorToTab(tabID int) bool {
	if s.tree == nil {
		return false
	}
	idx := s.tree.IndexOfTab(tabID)
	if idx < 0 {
		return false
	}
	s.Cursor = idx
	s.clamp()
	return true
}

// SelectedNode returns the node under the cursor, or nil.
func (s *Sidebar) SelectedNode() *render.Node {
	if s.tree == nil {
		return nil
	}
	return s.tree.NodeAt(s.Cursor)
}

// RowAt maps a viewport y coordinate to a tree node, or nil when the row
// is past the end of the list.
func (s *Sidebar) RowAt(y int) *render.Node {
	if s.tree == nil || y < 0 || y >= s.visibleRows() {
		return nil
	}
	return s.tree.NodeAt(s.Offset + y)
}

// IndexAt maps a viewport y coordinate to a tree index, or -1.
func (s *Sidebar) IndexAt(y int) int {
	if s.tree == nil || y < 0 || y >= s.visibleRows() {
		return -1
	}
	idx := s.Offset + y
	if idx >= s.tree.Len() {
		return -1
	}
	return idx
}

func (s *Sidebar) clamp() {
	if s.tree == nil {
		return
	}
	if s.Cursor >= s.tree.Len() {
		s.Cursor = s.tree.Len() - 1
	}
	if s.Cursor < 0 {
		s.Cursor = 0
	}
	if s.Offset > s.Cursor {
		s.Offset = s.Cursor
	}
	if s.Cursor >= s.Offset+s.visibleRows() {
		s.Offset = s.Cursor - s.visibleRows() + 1
	}
	if s.Offset < 0 {
		s.Offset = 0
	}
}

// View renders the visible window of the tree with the cursor row
// highlighted.
func (s *Sidebar) View() string {
	if s.tree == nil {
		return "  Connecting..."
	}

	lines := s.tree.Lines()
	end := s.Offset + s.visibleRows()
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	for i := s.Offset; i < end; i++ {
		line := lines[i]
		if i == s.Cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
