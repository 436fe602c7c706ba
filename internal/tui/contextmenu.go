package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/azln/zenith/internal/types"
)

// MenuAction identifies a context menu entry.
type MenuAction int

const (
	MenuPin MenuAction = iota
	MenuUnpin
	MenuMute
	MenuUnmute
	MenuDuplicate
	MenuReload
	MenuDiscard
	MenuNewGroupWithTab
	MenuRemoveFromGroup
	MenuClose
	MenuCloseOthers
	MenuCloseToRight

	MenuGroupNewTab
	MenuGroupRename
	MenuGroupToWindow
	MenuGroupClose
)

type MenuItem struct {
	Label  string
	Action MenuAction
}

// ContextMenu is a modal action list for the node it was opened on.
type ContextMenu struct {
	Items  []MenuItem
	Cursor int
	TabID  int
	Group  int
}

// TabMenu builds the menu for a tab row. Labels flip with the tab's
// current state so the menu always shows the action, not the state.
func TabMenu(tab types.Tab) ContextMenu {
	var items []MenuItem
	if tab.Pinned {
		items = append(items, MenuItem{"Unpin", MenuUnpin})
	} else {
		items = append(items, MenuItem{"Pin", MenuPin})
	}
	if tab.Muted {
		items = append(items, MenuItem{"Unmute", MenuUnmute})
	} else {
		items = append(items, MenuItem{"Mute", MenuMute})
	}
	items = append(items,
		MenuItem{"Duplicate", MenuDuplicate},
		MenuItem{"Reload", MenuReload},
		MenuItem{"Unload", MenuDiscard},
		MenuItem{"Add to new group", MenuNewGroupWithTab},
	)
	if tab.GroupID != types.NoGroup {
		items = append(items, MenuItem{"Remove from group", MenuRemoveFromGroup})
	}
	items = append(items,
		MenuItem{"Close", MenuClose},
		MenuItem{"Close other tabs", MenuCloseOthers},
		MenuItem{"Close tabs to the right", MenuCloseToRight},
	)
	return ContextMenu{Items: items, TabID: tab.ID}
}

// GroupMenu builds the menu for a group header.
func GroupMenu(group types.Group) ContextMenu {
	return ContextMenu{
		Items: []MenuItem{
			{"New tab in group", MenuGroupNewTab},
			{"Rename group", MenuGroupRename},
			{"Move group to new window", MenuGroupToWindow},
			{"Close group", MenuGroupClose},
		},
		Group: group.ID,
	}
}

func (m *ContextMenu) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
}

func (m *ContextMenu) MoveDown() {
	if m.Cursor < len(m.Items)-1 {
		m.Cursor++
	}
}

func (m ContextMenu) Selected() *MenuItem {
	if m.Cursor >= 0 && m.Cursor < len(m.Items) {
		return &m.Items[m.Cursor]
	}
	return nil
}

func (m ContextMenu) View() string {
	selectedStyle := lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Padding(0, 1)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	var b strings.Builder
	for i, item := range m.Items {
		label := item.Label
		if i == m.Cursor {
			label = selectedStyle.Render(label)
		} else {
			label = normalStyle.Render("  " + label)
		}
		b.WriteString(label + "\n")
	}
	b.WriteString("\n" + normalStyle.Render("↑↓ navigate · enter confirm · esc cancel"))

	return boxStyle.Render(b.String())
}
