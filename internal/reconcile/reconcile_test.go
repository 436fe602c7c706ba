package reconcile

import (
	"testing"

	"github.com/azln/zenith/internal/types"
)

func allExist(int) bool { return true }

func proj(tabs ...TabView) Projection {
	return Projection{Tabs: tabs}
}

func TestClassifyFirstPaint(t *testing.T) {
	plan := Classify(nil, proj(TabView{ID: 1}), allExist)
	if plan.Action != Full {
		t.Errorf("first paint action = %v, want Full", plan.Action)
	}
}

func TestClassifyIdentical(t *testing.T) {
	p := proj(TabView{ID: 1, Title: "a", Active: true}, TabView{ID: 2, Title: "b"})
	n := proj(TabView{ID: 1, Title: "a", Active: true}, TabView{ID: 2, Title: "b"})
	plan := Classify(&p, n, allExist)
	if plan.Action != None {
		t.Errorf("identical projections: action = %v, want None", plan.Action)
	}
}

func TestClassifyActiveChangePatches(t *testing.T) {
	p := proj(TabView{ID: 1, Active: true}, TabView{ID: 2}, TabView{ID: 3})
	n := proj(TabView{ID: 1}, TabView{ID: 2}, TabView{ID: 3, Active: true})
	plan := Classify(&p, n, allExist)
	if plan.Action != Patch {
		t.Fatalf("active-only change: action = %v, want Patch", plan.Action)
	}
	if len(plan.Patches) != 3 {
		t.Fatalf("got %d patches, want one per tab", len(plan.Patches))
	}
	activeCount := 0
	for _, pt := range plan.Patches {
		if pt.Active {
			activeCount++
			if pt.TabID != 3 {
				t.Errorf("active patch targets tab %d, want 3", pt.TabID)
			}
		}
		if pt.TitleChanged {
			t.Errorf("tab %d: spurious title patch", pt.TabID)
		}
	}
	if activeCount != 1 {
		t.Errorf("%d tabs patched active, want exactly 1", activeCount)
	}
}

func TestClassifyTitleChangePatches(t *testing.T) {
	p := proj(TabView{ID: 1, Title: "Loading..."})
	n := proj(TabView{ID: 1, Title: "Example Domain"})
	plan := Classify(&p, n, allExist)
	if plan.Action != Patch {
		t.Fatalf("title-only change: action = %v, want Patch", plan.Action)
	}
	if !plan.Patches[0].TitleChanged || plan.Patches[0].Title != "Example Domain" {
		t.Errorf("patch = %+v", plan.Patches[0])
	}
}

func TestClassifyStructuralChanges(t *testing.T) {
	base := proj(TabView{ID: 1}, TabView{ID: 2})
	tests := []struct {
		name string
		next Projection
	}{
		{"tab added", proj(TabView{ID: 1}, TabView{ID: 2}, TabView{ID: 3})},
		{"tab removed", proj(TabView{ID: 1})},
		{"tabs reordered", proj(TabView{ID: 2}, TabView{ID: 1})},
		{"pin changed", proj(TabView{ID: 1, Pinned: true}, TabView{ID: 2})},
		{"regrouped", proj(TabView{ID: 1, GroupID: 9}, TabView{ID: 2})},
		{"query changed", Projection{Tabs: base.Tabs, SearchQuery: "x"}},
		{"collapsed changed", Projection{Tabs: base.Tabs, Collapsed: []int{9}}},
	}
	for _, tt := range tests {
		if plan := Classify(&base, tt.next, allExist); plan.Action != Full {
			t.Errorf("%s: action = %v, want Full", tt.name, plan.Action)
		}
	}
}

func TestClassifyBadgeChangeForcesFull(t *testing.T) {
	base := proj(TabView{ID: 1}, TabView{ID: 2})
	tests := []struct {
		name string
		next Projection
	}{
		{"audible", proj(TabView{ID: 1, Audible: true}, TabView{ID: 2})},
		{"muted", proj(TabView{ID: 1, Muted: true}, TabView{ID: 2})},
		{"discarded", proj(TabView{ID: 1}, TabView{ID: 2, Discarded: true})},
		{"favicon", proj(TabView{ID: 1, FavIconURL: "x"}, TabView{ID: 2})},
	}
	for _, tt := range tests {
		if plan := Classify(&base, tt.next, allExist); plan.Action != Full {
			t.Errorf("%s: action = %v, want Full", tt.name, plan.Action)
		}
	}
}

func TestClassifyMissingRowEscapesToFull(t *testing.T) {
	p := proj(TabView{ID: 1}, TabView{ID: 2})
	n := proj(TabView{ID: 1, Active: true}, TabView{ID: 2})
	plan := Classify(&p, n, func(id int) bool { return id != 2 })
	if plan.Action != Full {
		t.Errorf("missing row: action = %v, want Full", plan.Action)
	}
}

// Classifying the same pair twice must yield the same plan: patches carry
// absolute values, so applying them twice is a no-op the second time.
func TestClassifyIdempotent(t *testing.T) {
	p := proj(TabView{ID: 1, Title: "old"}, TabView{ID: 2, Active: true})
	n := proj(TabView{ID: 1, Title: "new", Active: true}, TabView{ID: 2})
	first := Classify(&p, n, allExist)
	second := Classify(&p, n, allExist)
	if first.Action != second.Action || len(first.Patches) != len(second.Patches) {
		t.Fatalf("plans differ: %+v vs %+v", first, second)
	}
	for i := range first.Patches {
		if first.Patches[i] != second.Patches[i] {
			t.Errorf("patch %d differs: %+v vs %+v", i, first.Patches[i], second.Patches[i])
		}
	}
}

func TestProjectDanglingGroup(t *testing.T) {
	snap := &types.Snapshot{
		Tabs:   []types.Tab{{ID: 1, GroupID: 99}},
		Groups: map[int]types.Group{},
	}
	p := Project(snap, "", nil)
	if p.Tabs[0].GroupID != types.NoGroup {
		t.Errorf("dangling group id projected as %d, want NoGroup", p.Tabs[0].GroupID)
	}
}
