package types

// NoGroup is the group id the browser reports for ungrouped tabs.
const NoGroup = -1

// Tab mirrors a single browser tab. The sidebar never owns tab state; it
// only reflects what the extension last reported and issues requests back.
type Tab struct {
	ID         int
	Index      int // position within the window, zero-based and dense
	Title      string
	URL        string
	FavIconURL string
	Active     bool
	Pinned     bool
	GroupID    int // NoGroup if ungrouped
	Audible    bool
	Muted      bool
	Discarded  bool
	Status     string // "loading" or "complete"
}

// Group mirrors a browser tab group.
type Group struct {
	ID        int
	Title     string // empty is rendered as "Unnamed"
	Color     string
	Collapsed bool // browser-side flag; the sidebar keeps its own collapsed set
}

// Snapshot is a consistent view of one window: all tabs in index order plus
// all groups in that window. Seq orders concurrent fetches: a snapshot with
// a lower Seq than one already applied is stale and must be dropped.
type Snapshot struct {
	Tabs     []Tab
	Groups   map[int]Group
	WindowID int
	Seq      uint64
}

// Grouped reports whether the tab belongs to a group known to the snapshot.
// A dangling GroupID renders as ungrouped.
func (s *Snapshot) Grouped(t Tab) bool {
	if t.GroupID == NoGroup {
		return false
	}
	_, ok := s.Groups[t.GroupID]
	return ok
}

// ActiveTab returns the active tab, or nil.
func (s *Snapshot) ActiveTab() *Tab {
	for i := range s.Tabs {
		if s.Tabs[i].Active {
			return &s.Tabs[i]
		}
	}
	return nil
}

// TabByID returns the tab with the given id, or nil.
func (s *Snapshot) TabByID(id int) *Tab {
	for i := range s.Tabs {
		if s.Tabs[i].ID == id {
			return &s.Tabs[i]
		}
	}
	return nil
}

// GroupColors is the fixed palette the browser allows for tab groups.
var GroupColors = []string{
	"grey", "blue", "red", "yellow", "green", "pink", "purple", "cyan", "orange",
}

// Suggestion is one entry in the command-palette dropdown.
type Suggestion struct {
	Title    string
	URL      string
	Favicon  string
	IsSearch bool // trailing "search the web" entry
	IsTab    bool // switch-to-tab entry
	TabID    int
	Score    int
}

// HistoryItem is a browser history entry as reported by the extension.
type HistoryItem struct {
	URL        string
	Title      string
	VisitCount int
}

// Window is a browser window as reported by the extension.
type Window struct {
	ID       int
	Focused  bool
	TabCount int
}
