package tui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/azln/zenith/internal/bridge"
	"github.com/azln/zenith/internal/prefs"
	"github.com/azln/zenith/internal/preview"
)

func modelWith(t *testing.T) (Model, *prefs.Store) {
	t.Helper()
	dir := t.TempDir()
	ps, err := prefs.Open(filepath.Join(dir, "prefs.toml"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ps.Close() })
	// Skip the first-run screen so keys reach the sidebar directly.
	if err := ps.Update(func(p *prefs.Prefs) { p.OnboardingShown = true }); err != nil {
		t.Fatal(err)
	}
	pc, err := preview.NewCache(filepath.Join(dir, "previews"))
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(bridge.New(0), ps, pc), ps
}

func press(t *testing.T, m Model, r rune) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out
}

func TestPinKeyTogglesPreference(t *testing.T) {
	m, ps := modelWith(t)

	if ps.Get().SidebarPinned {
		t.Fatal("pinned before any toggle")
	}

	m = press(t, m, 'P')
	if !ps.Get().SidebarPinned {
		t.Error("first toggle did not pin")
	}
	if m.flash != "Sidebar pinned" {
		t.Errorf("flash = %q", m.flash)
	}

	m = press(t, m, 'P')
	if ps.Get().SidebarPinned {
		t.Error("second toggle did not unpin")
	}
	if m.flash != "Sidebar unpinned" {
		t.Errorf("flash = %q", m.flash)
	}
}
