// Package prefs loads and persists user preferences as a TOML file and
// watches it for edits made by other instances. The file is the source of
// truth; in-memory state is just the last load.
package prefs

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/azln/zenith/internal/applog"
)

const (
	// MinWidth and MaxWidth bound the sidebar width preference. Values
	// outside the range are clamped on load and save, never rejected.
	MinWidth = 200
	MaxWidth = 500

	DefaultWidth = 260

	// WidthStep is the increment used by resize keys.
	WidthStep = 20
)

// Prefs is the persisted preference set.
type Prefs struct {
	SidebarWidth    int  `toml:"sidebar_width"`
	SidebarPinned   bool `toml:"sidebar_pinned"`
	OnboardingShown bool `toml:"onboarding_shown"`
}

// Defaults returns the preference set used before any file exists.
func Defaults() Prefs {
	return Prefs{SidebarWidth: DefaultWidth}
}

// ClampWidth forces a width into the allowed range.
func ClampWidth(w int) int {
	if w < MinWidth {
		return MinWidth
	}
	if w > MaxWidth {
		return MaxWidth
	}
	return w
}

func (p Prefs) normalized() Prefs {
	p.SidebarWidth = ClampWidth(p.SidebarWidth)
	return p
}

// Store owns the preference file and its change watcher.
type Store struct {
	path string

	mu   sync.Mutex
	cur  Prefs
	w    *fsnotify.Watcher
	done chan struct{}
}

// DefaultPath is the preference file location under the user's home.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "zenith", "prefs.toml")
}

// Open loads preferences from path, creating the file with defaults if it
// does not exist. A corrupt file falls back to defaults rather than
// blocking startup.
func Open(path string) (*Store, error) {
	s := &Store{path: path, done: make(chan struct{})}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	p, err := load(path)
	switch {
	case err == nil:
		s.cur = p
	case errors.Is(err, os.ErrNotExist):
		s.cur = Defaults()
		if err := save(path, s.cur); err != nil {
			return nil, err
		}
	default:
		applog.Error("prefs.load", err, "path", path)
		s.cur = Defaults()
	}
	return s, nil
}

func load(path string) (Prefs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Prefs{}, err
	}
	p := Defaults()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Prefs{}, err
	}
	return p.normalized(), nil
}

// save writes via a temp file so a concurrent reader never sees a
// half-written document.
func save(path string, p Prefs) error {
	data, err := toml.Marshal(p.normalized())
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Get returns the current preference set.
func (s *Store) Get() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// Update applies fn to the current preferences and persists the result.
func (s *Store) Update(fn func(*Prefs)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cur
	fn(&next)
	next = next.normalized()
	if next == s.cur {
		return nil
	}
	if err := save(s.path, next); err != nil {
		return err
	}
	s.cur = next
	return nil
}

// SetWidth persists a new sidebar width, clamped to range.
func (s *Store) SetWidth(w int) error {
	return s.Update(func(p *Prefs) { p.SidebarWidth = w })
}

// Watch starts a filesystem watcher and invokes onChange whenever another
// process rewrites the file. Changes made through this Store do not fire
// onChange; callers already know about those.
func (s *Store) Watch(onChange func(Prefs)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors and the atomic rename in save replace
	// the file node, which would silently drop a file-level watch.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return err
	}
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Name != s.path {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				p, err := load(s.path)
				if err != nil {
					continue
				}
				s.mu.Lock()
				changed := p != s.cur
				s.cur = p
				s.mu.Unlock()
				if changed {
					applog.Info("prefs.reloaded", "width", p.SidebarWidth)
					onChange(p)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				applog.Error("prefs.watch", err)
			case <-s.done:
				return
			}
		}
	}()
	return nil
}

// Close stops the watcher.
func (s *Store) Close() {
	close(s.done)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w != nil {
		s.w.Close()
		s.w = nil
	}
}
