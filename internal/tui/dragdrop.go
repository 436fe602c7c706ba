package tui

import (
	"github.com/azln/zenith/internal/applog"
	"github.com/azln/zenith/internal/state"
	"github.com/azln/zenith/internal/types"
)

// DropZone is where a dragged tab lands relative to the row under the
// pointer.
type DropZone int

const (
	DropAbove DropZone = iota
	DropBelow
)

// dropZone maps a pointer offset within a target row to a zone. The top
// 40% inserts above, the bottom 40% inserts below, and the middle band
// counts as above. Offsets are cell-based, so the midpoint of cell y is
// (y + 0.5) / height.
func dropZone(offsetY, height int) DropZone {
	if height <= 0 {
		return DropAbove
	}
	frac := (float64(offsetY) + 0.5) / float64(height)
	if frac > 0.6 {
		return DropBelow
	}
	return DropAbove
}

// tabMover is the command surface a drop needs. Satisfied by bridge.Bridge.
type tabMover interface {
	MoveTab(tabID, newIndex int)
	AddToGroup(tabID, groupID int)
	RemoveFromGroup(tabID int)
}

// DragController runs the drag-and-drop session: idle, dragging, then a
// drop or cancel back to idle. It never reorders the local model; the
// commands round-trip through the browser and come back as a snapshot
// refresh.
type DragController struct {
	st   *state.Store
	cmds tabMover
}

func NewDragController(st *state.Store, cmds tabMover) *DragController {
	return &DragController{st: st, cmds: cmds}
}

// Start begins a drag session for a tab. Starting a new session while one
// is active abandons the old one.
func (d *DragController) Start(tabID int) {
	d.st.BeginDrag(tabID)
}

// Active reports whether a drag session is in flight.
func (d *DragController) Active() bool { return d.st.Dragging() }

// DropOnTab completes a drag onto another tab row. When the target sits in
// a different group than the drag origin, the regroup command goes out
// before the move so the browser never places a grouped tab outside its
// group's span.
func (d *DragController) DropOnTab(targetID int, zone DropZone) {
	defer d.End()

	draggedID := d.st.DraggedTabID()
	if draggedID == 0 || draggedID == targetID {
		return
	}
	snap := d.st.Snapshot()
	dragged := snap.TabByID(draggedID)
	target := snap.TabByID(targetID)
	if dragged == nil || target == nil {
		return
	}

	// A dangling GroupID renders as ungrouped, so resolve the target's
	// effective group before deciding on a regroup command.
	targetGroup := types.NoGroup
	if snap.Grouped(*target) {
		targetGroup = target.GroupID
	}
	if targetGroup != d.st.DraggedFromGroup() {
		if targetGroup == types.NoGroup {
			d.cmds.RemoveFromGroup(draggedID)
		} else {
			d.cmds.AddToGroup(draggedID, targetGroup)
		}
	}

	newIndex := reindex(dragged.Index, target.Index, zone == DropBelow)
	applog.Info("drag.drop", "tab", draggedID, "target", targetID, "index", newIndex)
	d.cmds.MoveTab(draggedID, newIndex)
}

// DropOnGroup completes a drag onto a group header or body. Membership
// only; the browser picks the position within the group.
func (d *DragController) DropOnGroup(groupID int) {
	defer d.End()

	draggedID := d.st.DraggedTabID()
	if draggedID == 0 || groupID == d.st.DraggedFromGroup() {
		return
	}
	applog.Info("drag.drop-group", "tab", draggedID, "group", groupID)
	d.cmds.AddToGroup(draggedID, groupID)
}

// End clears the drag session. It is the only guaranteed cleanup point,
// runs on every drop and cancel path, and is safe to call repeatedly.
func (d *DragController) End() {
	d.st.EndDrag()
}

// reindex computes the move-tab index for a drop. The browser's move
// operation uses post-removal indexing: the dragged tab is lifted out
// first, shifting everything after its old slot left by one, and then
// lands at the requested position. So the insertion point is the target's
// index (plus one when inserting below), decremented when the dragged
// tab's own removal shifted that point.
func reindex(origin, targetIndex int, below bool) int {
	pos := targetIndex
	if below {
		pos++
	}
	if origin < pos {
		pos--
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}
