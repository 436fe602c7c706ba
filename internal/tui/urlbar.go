package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/azln/zenith/internal/favicon"
	"github.com/azln/zenith/internal/types"
)

// URLBar is the command-palette style input: type to see ranked
// suggestions from open tabs and history, enter to navigate or switch.
type URLBar struct {
	input       textinput.Model
	suggestions []types.Suggestion
	cursor      int
	Width       int
}

func NewURLBar() URLBar {
	ti := textinput.New()
	ti.Placeholder = "Search or enter address"
	ti.Prompt = "› "
	ti.CharLimit = 512
	return URLBar{input: ti, Width: 40}
}

// Focus activates the input and clears previous state.
func (u *URLBar) Focus() tea.Cmd {
	u.input.SetValue("")
	u.suggestions = nil
	u.cursor = 0
	return u.input.Focus()
}

// Blur deactivates the input.
func (u *URLBar) Blur() {
	u.input.Blur()
	u.suggestions = nil
	u.cursor = 0
}

// Focused reports whether the bar is capturing keystrokes.
func (u *URLBar) Focused() bool { return u.input.Focused() }

// Value returns the typed query.
func (u *URLBar) Value() string { return u.input.Value() }

// Update forwards a message to the text input and reports whether the
// query text changed, which tells the caller to re-rank suggestions.
func (u *URLBar) Update(msg tea.Msg) (tea.Cmd, bool) {
	before := u.input.Value()
	var cmd tea.Cmd
	u.input, cmd = u.input.Update(msg)
	return cmd, u.input.Value() != before
}

// SetSuggestions replaces the ranked list. Stale responses for an older
// query are the caller's problem; the bar shows whatever it is given.
func (u *URLBar) SetSuggestions(s []types.Suggestion) {
	u.suggestions = s
	if u.cursor >= len(s) {
		u.cursor = 0
	}
}

// MoveUp and MoveDown walk the suggestion list, wrapping at the ends.
func (u *URLBar) MoveUp() {
	if len(u.suggestions) == 0 {
		return
	}
	u.cursor--
	if u.cursor < 0 {
		u.cursor = len(u.suggestions) - 1
	}
}

func (u *URLBar) MoveDown() {
	if len(u.suggestions) == 0 {
		return
	}
	u.cursor = (u.cursor + 1) % len(u.suggestions)
}

// Selected returns the highlighted suggestion, or nil when the typed text
// itself should be resolved.
func (u *URLBar) Selected() *types.Suggestion {
	if u.cursor < 0 || u.cursor >= len(u.suggestions) {
		return nil
	}
	return &u.suggestions[u.cursor]
}

var (
	urlbarBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
	suggTabBadge    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	suggSearchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	suggCursorStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	suggDomainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// View renders the input box with the suggestion list beneath it.
func (u *URLBar) View() string {
	var b strings.Builder
	b.WriteString(u.input.View())

	for i, s := range u.suggestions {
		b.WriteByte('\n')
		line := u.renderSuggestion(s)
		if i == u.cursor {
			line = suggCursorStyle.Render(line)
		}
		b.WriteString(line)
	}

	inner := u.Width - 4
	if inner < 20 {
		inner = 20
	}
	return urlbarBorder.Width(inner).Render(b.String())
}

func (u *URLBar) renderSuggestion(s types.Suggestion) string {
	if s.IsSearch {
		return suggSearchStyle.Render("⌕ " + s.Title)
	}

	badge := "  "
	if s.IsTab {
		badge = suggTabBadge.Render("⇄ ")
	}
	title := s.Title
	if title == "" {
		title = s.URL
	}
	domain := favicon.Domain(s.URL)

	maxTitle := u.Width - 8 - len(domain)
	if maxTitle < 12 {
		maxTitle = 12
	}
	runes := []rune(title)
	if len(runes) > maxTitle {
		title = string(runes[:maxTitle-1]) + "…"
	}
	return fmt.Sprintf("%s%s %s", badge, title, suggDomainStyle.Render(domain))
}
