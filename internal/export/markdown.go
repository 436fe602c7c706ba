// Package export renders a live snapshot as JSON or Markdown, sectioned
// the way the sidebar lists tabs.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/azln/zenith/internal/types"
)

// groupSection pairs a group with its tabs, preserving tab order.
type groupSection struct {
	Group types.Group
	Tabs  []types.Tab
}

// partition splits a snapshot into the sidebar's sections: pinned tabs,
// groups in order of first tab occurrence, then ungrouped tabs.
func partition(snap *types.Snapshot) (pinned []types.Tab, groups []groupSection, ungrouped []types.Tab) {
	index := make(map[int]int)
	for _, tab := range snap.Tabs {
		switch {
		case tab.Pinned:
			pinned = append(pinned, tab)
		case tab.GroupID != types.NoGroup:
			g, known := snap.Groups[tab.GroupID]
			if !known {
				ungrouped = append(ungrouped, tab)
				continue
			}
			i, seen := index[tab.GroupID]
			if !seen {
				i = len(groups)
				index[tab.GroupID] = i
				groups = append(groups, groupSection{Group: g})
			}
			groups[i].Tabs = append(groups[i].Tabs, tab)
		default:
			ungrouped = append(ungrouped, tab)
		}
	}
	return pinned, groups, ungrouped
}

// Markdown formats a snapshot as a markdown document.
func Markdown(snap *types.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Open Tabs — window %d\n", snap.WindowID)
	fmt.Fprintf(&b, "> Exported %s\n", time.Now().Format("2006-01-02 15:04"))

	pinned, groups, ungrouped := partition(snap)

	if len(pinned) > 0 {
		fmt.Fprintf(&b, "\n## Pinned (%d %s)\n\n", len(pinned), plural(len(pinned)))
		writeTabs(&b, pinned)
	}
	for _, g := range groups {
		fmt.Fprintf(&b, "\n## %s (%d %s)\n\n", g.Group.Title, len(g.Tabs), plural(len(g.Tabs)))
		writeTabs(&b, g.Tabs)
	}
	if len(ungrouped) > 0 {
		fmt.Fprintf(&b, "\n## Ungrouped (%d %s)\n\n", len(ungrouped), plural(len(ungrouped)))
		writeTabs(&b, ungrouped)
	}

	return b.String()
}

func writeTabs(b *strings.Builder, tabs []types.Tab) {
	for _, tab := range tabs {
		title := tab.Title
		if title == "" {
			title = tab.URL
		}
		fmt.Fprintf(b, "- [%s](%s)\n", title, tab.URL)
	}
}

func plural(n int) string {
	if n == 1 {
		return "tab"
	}
	return "tabs"
}
