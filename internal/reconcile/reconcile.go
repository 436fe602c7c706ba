// Package reconcile decides how to bring the rendered tab tree in line with
// a new snapshot: not at all, by patching attributes of existing rows, or
// by a full rebuild.
//
// Most update bursts (activations, title churn while a page loads) are
// cosmetic, and patching those in place avoids flicker and preserves
// scroll, cursor, and drag state. Structural changes and badge changes
// (audio, mute, discard, favicon) rebuild instead: badges are part of a
// larger templated row that is not independently patchable, and a full
// render there keeps the renderer simple and correct.
package reconcile

import (
	"github.com/azln/zenith/internal/types"
)

// TabView is the projection of one tab: only the fields that affect
// rendered output.
type TabView struct {
	ID         int
	Title      string
	URL        string
	FavIconURL string
	Active     bool
	Pinned     bool
	GroupID    int
	Audible    bool
	Muted      bool
	Discarded  bool
}

// Projection is the unit of comparison between renders.
type Projection struct {
	Tabs        []TabView
	SearchQuery string
	Collapsed   []int // sorted; order-sensitive comparison
}

// Project extracts a projection from a snapshot plus the UI-local state
// that affects layout.
func Project(snap *types.Snapshot, searchQuery string, collapsed []int) Projection {
	p := Projection{
		Tabs:        make([]TabView, len(snap.Tabs)),
		SearchQuery: searchQuery,
		Collapsed:   append([]int(nil), collapsed...),
	}
	for i, t := range snap.Tabs {
		gid := t.GroupID
		if !snap.Grouped(t) {
			gid = types.NoGroup
		}
		p.Tabs[i] = TabView{
			ID:         t.ID,
			Title:      t.Title,
			URL:        t.URL,
			FavIconURL: t.FavIconURL,
			Active:     t.Active,
			Pinned:     t.Pinned,
			GroupID:    gid,
			Audible:    t.Audible,
			Muted:      t.Muted,
			Discarded:  t.Discarded,
		}
	}
	return p
}

// Equal reports whether two projections are identical, guarding against
// redundant fetches producing spurious renders.
func Equal(p, n Projection) bool {
	if p.SearchQuery != n.SearchQuery || len(p.Tabs) != len(n.Tabs) || len(p.Collapsed) != len(n.Collapsed) {
		return false
	}
	for i := range p.Collapsed {
		if p.Collapsed[i] != n.Collapsed[i] {
			return false
		}
	}
	for i := range p.Tabs {
		if p.Tabs[i] != n.Tabs[i] {
			return false
		}
	}
	return true
}

// StructurallySame reports whether the set and layout of rows is unchanged:
// same tab count, same id/pinned/group at every position, same query, same
// collapsed list. When true, only attributes of existing rows can differ.
func StructurallySame(p, n Projection) bool {
	if len(p.Tabs) != len(n.Tabs) || p.SearchQuery != n.SearchQuery || len(p.Collapsed) != len(n.Collapsed) {
		return false
	}
	for i := range p.Collapsed {
		if p.Collapsed[i] != n.Collapsed[i] {
			return false
		}
	}
	for i := range p.Tabs {
		if p.Tabs[i].ID != n.Tabs[i].ID ||
			p.Tabs[i].Pinned != n.Tabs[i].Pinned ||
			p.Tabs[i].GroupID != n.Tabs[i].GroupID {
			return false
		}
	}
	return true
}

// Action classifies what the renderer must do.
type Action int

const (
	// None: projections are identical, skip entirely.
	None Action = iota
	// Patch: apply Patches to existing rows, no rebuild.
	Patch
	// Full: rebuild the whole tree and re-bind interactions.
	Full
)

// TabPatch updates one existing row in place. Active is always applied from
// the new snapshot, which is authoritative; a stale optimistic selection
// must never override it. Title is applied only when TitleChanged.
type TabPatch struct {
	TabID        int
	Active       bool
	Title        string
	TitleChanged bool
}

// Plan is the reconciler's verdict for one (prev, next) pair. Applying a
// plan is idempotent: patches carry absolute values, not deltas.
type Plan struct {
	Action  Action
	Patches []TabPatch
}

// Classify compares the previously rendered projection against the next
// one. exists reports whether the rendered tree still has a row for a tab
// id; a missing row under structural sameness should not happen, but is
// treated as an escape to a full render rather than trusted.
func Classify(prev *Projection, next Projection, exists func(tabID int) bool) Plan {
	if prev == nil {
		return Plan{Action: Full}
	}
	if Equal(*prev, next) {
		return Plan{Action: None}
	}
	if !StructurallySame(*prev, next) {
		return Plan{Action: Full}
	}

	patches := make([]TabPatch, 0, len(next.Tabs))
	for i := range next.Tabs {
		nt, pt := next.Tabs[i], prev.Tabs[i]
		if !exists(nt.ID) {
			return Plan{Action: Full}
		}
		if nt.Audible != pt.Audible || nt.Muted != pt.Muted ||
			nt.Discarded != pt.Discarded || nt.FavIconURL != pt.FavIconURL {
			// Badge markup change: rebuild rather than patch.
			return Plan{Action: Full}
		}
		patches = append(patches, TabPatch{
			TabID:        nt.ID,
			Active:       nt.Active,
			Title:        nt.Title,
			TitleChanged: nt.Title != pt.Title,
		})
	}
	return Plan{Action: Patch, Patches: patches}
}
