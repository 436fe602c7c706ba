package prefs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "prefs.toml"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestOpenCreatesDefaults(t *testing.T) {
	s := tempStore(t)
	if got := s.Get(); got != Defaults() {
		t.Errorf("got %+v, want defaults", got)
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Errorf("preference file not created: %v", err)
	}
}

func TestClampWidth(t *testing.T) {
	cases := []struct{ in, want int }{
		{10, 200},
		{200, 200},
		{333, 333},
		{500, 500},
		{9999, 500},
	}
	for _, tc := range cases {
		if got := ClampWidth(tc.in); got != tc.want {
			t.Errorf("ClampWidth(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestUpdatePersists(t *testing.T) {
	s := tempStore(t)
	if err := s.Update(func(p *Prefs) {
		p.SidebarWidth = 320
		p.OnboardingShown = true
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// A fresh open sees the persisted values.
	s2, err := Open(s.Path())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := s2.Get()
	if got.SidebarWidth != 320 || !got.OnboardingShown {
		t.Errorf("reloaded = %+v", got)
	}
}

func TestSetWidthClamps(t *testing.T) {
	s := tempStore(t)
	if err := s.SetWidth(9999); err != nil {
		t.Fatalf("SetWidth: %v", err)
	}
	if got := s.Get().SidebarWidth; got != MaxWidth {
		t.Errorf("width = %d, want %d", got, MaxWidth)
	}
}

func TestCorruptFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("sidebar_width = {{{"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open should tolerate corrupt file: %v", err)
	}
	if got := s.Get(); got != Defaults() {
		t.Errorf("got %+v, want defaults", got)
	}
}

func TestWatchSeesExternalWrite(t *testing.T) {
	s := tempStore(t)
	defer s.Close()

	changed := make(chan Prefs, 1)
	if err := s.Watch(func(p Prefs) { changed <- p }); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// Simulate another instance rewriting the file.
	if err := os.WriteFile(s.Path(), []byte("sidebar_width = 444\nsidebar_pinned = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-changed:
		if p.SidebarWidth != 444 || !p.SidebarPinned {
			t.Errorf("got %+v", p)
		}
		if s.Get() != p {
			t.Error("Get() not updated after external change")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never fired")
	}
}
