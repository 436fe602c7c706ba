package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/azln/zenith/internal/favicon"
)

var groupPalette = map[string]lipgloss.Color{
	"grey":   lipgloss.Color("245"),
	"blue":   lipgloss.Color("33"),
	"red":    lipgloss.Color("196"),
	"yellow": lipgloss.Color("220"),
	"green":  lipgloss.Color("40"),
	"pink":   lipgloss.Color("205"),
	"purple": lipgloss.Color("135"),
	"cyan":   lipgloss.Color("51"),
	"orange": lipgloss.Color("208"),
}

var (
	sectionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Bold(true)
	emptyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	activeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	pinnedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	discardedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	draggingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	audibleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	countStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	dropStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	groupBG        = lipgloss.NewStyle().Bold(true)
)

// Lines renders every row, re-rendering only rows marked dirty since the
// last call. Row order is stable between calls unless the tree was rebuilt.
func (t *Tree) Lines() []string {
	out := make([]string, len(t.Nodes))
	for i, n := range t.Nodes {
		if n.dirty || n.line == "" {
			n.line = t.renderNode(n)
			n.dirty = false
		}
		out[i] = n.line
	}
	return out
}

func (t *Tree) renderNode(n *Node) string {
	switch n.Kind {
	case NodeSectionLabel:
		return sectionStyle.Render(n.Label)
	case NodeEmpty:
		return emptyStyle.Render(n.Label)
	case NodeGroupHeader:
		return t.renderGroupHeader(n)
	default:
		return t.renderTab(n)
	}
}

func (t *Tree) renderGroupHeader(n *Node) string {
	title := n.Group.Title
	if title == "" {
		title = "Unnamed"
	}
	color, ok := groupPalette[n.Group.Color]
	if !ok {
		color = groupPalette["grey"]
	}
	dot := lipgloss.NewStyle().Foreground(color).Render("●")
	label := groupBG.Foreground(color).Render(truncate(title, t.width-8))
	line := fmt.Sprintf("%s %s %s", dot, label, countStyle.Render(fmt.Sprintf("(%d)", n.Count)))
	if n.Drop == DropInto {
		line = dropStyle.Render("▸ ") + line
	}
	return line
}

func (t *Tree) renderTab(n *Node) string {
	tab := n.Tab

	icon := favicon.Glyph(tab.URL)
	title := favicon.DisplayTitle(tab)

	var badges []string
	if tab.Audible && !tab.Muted {
		badges = append(badges, audibleStyle.Render("♪"))
	}
	if tab.Muted {
		badges = append(badges, mutedStyle.Render("⊘"))
	}
	if tab.Discarded {
		badges = append(badges, discardedStyle.Render("◌"))
	}
	badge := ""
	if len(badges) > 0 {
		badge = " " + strings.Join(badges, "")
	}

	indent := "  "
	if tab.GroupID >= 0 {
		indent = "    "
	}

	maxTitle := t.width - len(indent) - 4 - lipgloss.Width(badge)
	if maxTitle < 8 {
		maxTitle = 8
	}
	body := fmt.Sprintf("%s%s %s%s", indent, icon, truncate(title, maxTitle), badge)

	style := tabStyle
	switch {
	case n.Dragging:
		style = draggingStyle
	case tab.Active:
		style = activeStyle
		body = "▎" + body[1:]
	case tab.Discarded:
		style = discardedStyle
	case tab.Pinned:
		style = pinnedStyle
	}

	line := style.Render(body)
	switch n.Drop {
	case DropAbove:
		line = dropStyle.Render("▔") + line
	case DropBelow:
		line = line + dropStyle.Render(" ▁")
	case DropInto:
		line = dropStyle.Render("▸") + line
	}
	return line
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
