package bridge

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/azln/zenith/internal/applog"
	"github.com/azln/zenith/internal/types"
)

// FetchSnapshot asks the extension for the full tab and group listing of a
// window. Each successful fetch gets a strictly increasing sequence number;
// the store uses it to discard responses that resolve out of order. With no
// window id, the last-seen window is used. Any failure degrades to
// (nil, false): the caller keeps rendering the previous snapshot.
func (b *Bridge) FetchSnapshot(ctx context.Context, windowID int) (*types.Snapshot, bool) {
	if windowID == 0 {
		windowID = b.MainWindowID()
	}
	resp, ok := b.request(ctx, outgoingMsg{Action: "get-tabs", WindowID: windowID})
	if !ok || !resp.succeeded() {
		return nil, false
	}
	seq := b.snapSeq.Add(1)
	snap, err := parseSnapshot(resp, windowID, seq)
	if err != nil {
		applog.Error("snapshot.parse", err)
		return nil, false
	}
	return &snap, true
}

// SwitchTab focuses a tab (and its window).
func (b *Bridge) SwitchTab(tabID int) {
	b.send(outgoingMsg{Action: "switch-tab", TabID: tabID})
}

// CloseTab closes a single tab.
func (b *Bridge) CloseTab(tabID int) {
	b.send(outgoingMsg{Action: "close-tab", TabID: tabID})
}

// NewTab opens a blank tab in the given window.
func (b *Bridge) NewTab(windowID int) {
	b.send(outgoingMsg{Action: "new-tab", WindowID: windowID})
}

// NewTabURL opens a tab at a specific URL.
func (b *Bridge) NewTabURL(windowID int, url string) {
	b.send(outgoingMsg{Action: "new-tab", WindowID: windowID, URL: url})
}

// NewTabInGroup opens a blank tab inside an existing group.
func (b *Bridge) NewTabInGroup(groupID int) {
	b.send(outgoingMsg{Action: "new-tab-in-group", GroupID: groupID})
}

// Navigate points an existing tab at a new URL.
func (b *Bridge) Navigate(tabID int, url string) {
	b.send(outgoingMsg{Action: "navigate", TabID: tabID, URL: url})
}

func (b *Bridge) GoBack(tabID int)    { b.send(outgoingMsg{Action: "go-back", TabID: tabID}) }
func (b *Bridge) GoForward(tabID int) { b.send(outgoingMsg{Action: "go-forward", TabID: tabID}) }
func (b *Bridge) ReloadTab(tabID int) { b.send(outgoingMsg{Action: "reload-tab", TabID: tabID}) }

// PinTab sets a tab's pinned state.
func (b *Bridge) PinTab(tabID int, pinned bool) {
	b.send(outgoingMsg{Action: "pin-tab", TabID: tabID, Pinned: &pinned})
}

// MuteTab sets a tab's muted state.
func (b *Bridge) MuteTab(tabID int, muted bool) {
	b.send(outgoingMsg{Action: "mute-tab", TabID: tabID, Muted: &muted})
}

// DiscardTab unloads a tab from memory without closing it.
func (b *Bridge) DiscardTab(tabID int) {
	b.send(outgoingMsg{Action: "discard-tab", TabID: tabID})
}

// DuplicateTab clones a tab next to the original.
func (b *Bridge) DuplicateTab(tabID int) {
	b.send(outgoingMsg{Action: "duplicate-tab", TabID: tabID})
}

// CloseOtherTabs closes every unpinned tab in the window except one.
func (b *Bridge) CloseOtherTabs(tabID int) {
	b.send(outgoingMsg{Action: "close-other-tabs", TabID: tabID})
}

// CloseTabsToRight closes every tab positioned after the given one.
func (b *Bridge) CloseTabsToRight(tabID int) {
	b.send(outgoingMsg{Action: "close-tabs-right", TabID: tabID})
}

// MoveTab moves a tab to a new index within its window. The index is the
// browser's post-removal index: the position the tab lands at after being
// lifted out of its old slot.
func (b *Bridge) MoveTab(tabID, newIndex int) {
	if newIndex < 0 {
		newIndex = 0
	}
	b.send(outgoingMsg{Action: "move-tab", TabID: tabID, NewIndex: &newIndex})
}

// AddToGroup places a tab into an existing group. Ordered before any
// accompanying MoveTab so the browser never sees a grouped tab at a
// position outside its group's span.
func (b *Bridge) AddToGroup(tabID, groupID int) {
	b.send(outgoingMsg{Action: "add-to-group", TabID: tabID, GroupID: groupID})
}

// RemoveFromGroup ungroups a tab. Same ordering contract as AddToGroup.
func (b *Bridge) RemoveFromGroup(tabID int) {
	b.send(outgoingMsg{Action: "remove-from-group", TabID: tabID})
}

// CreateGroup makes an empty named group and returns its id.
func (b *Bridge) CreateGroup(ctx context.Context, windowID int, title, color string) (int, bool) {
	resp, ok := b.request(ctx, outgoingMsg{Action: "create-group", WindowID: windowID, Name: title, Color: color})
	if !ok || !resp.succeeded() {
		return 0, false
	}
	return resp.NewGroupID, true
}

// CreateGroupWithTab makes a group seeded with one tab.
func (b *Bridge) CreateGroupWithTab(ctx context.Context, tabID int, title, color string) (int, bool) {
	resp, ok := b.request(ctx, outgoingMsg{Action: "create-group-with-tab", TabID: tabID, Name: title, Color: color})
	if !ok || !resp.succeeded() {
		return 0, false
	}
	return resp.NewGroupID, true
}

// RenameGroup updates a group's title and color.
func (b *Bridge) RenameGroup(groupID int, title, color string) {
	b.send(outgoingMsg{Action: "update-group", GroupID: groupID, Name: title, Color: color})
}

// CloseGroup closes a group and every tab in it.
func (b *Bridge) CloseGroup(groupID int) {
	b.send(outgoingMsg{Action: "close-group", GroupID: groupID})
}

// MoveGroupToNewWindow detaches a group into its own window.
func (b *Bridge) MoveGroupToNewWindow(groupID int) {
	b.send(outgoingMsg{Action: "move-group-to-window", GroupID: groupID})
}

// GetWindows lists the browser's windows.
func (b *Bridge) GetWindows(ctx context.Context) []types.Window {
	resp, ok := b.request(ctx, outgoingMsg{Action: "get-windows"})
	if !ok || !resp.succeeded() {
		return nil
	}
	var wins []wireWindow
	if err := json.Unmarshal(resp.Windows, &wins); err != nil {
		return nil
	}
	out := make([]types.Window, 0, len(wins))
	for _, w := range wins {
		out = append(out, types.Window{ID: w.ID, Focused: w.Focused, TabCount: w.TabCount})
	}
	return out
}

// GetHistory searches browsing history for the suggestion ranker. The
// query is passed through as typed; matching happens browser-side, the
// ranking here.
func (b *Bridge) GetHistory(ctx context.Context, query string, max int) []types.HistoryItem {
	resp, ok := b.request(ctx, outgoingMsg{Action: "get-history", Query: strings.TrimSpace(query), MaxResults: max})
	if !ok || !resp.succeeded() {
		return nil
	}
	var items []wireHistoryItem
	if err := json.Unmarshal(resp.History, &items); err != nil {
		return nil
	}
	out := make([]types.HistoryItem, 0, len(items))
	for _, h := range items {
		out = append(out, types.HistoryItem{
			URL:        h.URL,
			Title:      h.Title,
			VisitCount: h.VisitCount,
		})
	}
	return out
}

// GetTabPreview fetches a page-content excerpt for the hover preview.
// Empty string means no preview is available for that tab.
func (b *Bridge) GetTabPreview(ctx context.Context, tabID int) string {
	resp, ok := b.request(ctx, outgoingMsg{Action: "get-preview", TabID: tabID})
	if !ok || !resp.succeeded() {
		return ""
	}
	return resp.PreviewData
}
