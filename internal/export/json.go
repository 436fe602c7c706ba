package export

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/azln/zenith/internal/types"
)

type jsonExport struct {
	WindowID   int         `json:"window_id"`
	ExportedAt time.Time   `json:"exported_at"`
	Pinned     []jsonTab   `json:"pinned,omitempty"`
	Groups     []jsonGroup `json:"groups"`
	Ungrouped  []jsonTab   `json:"ungrouped,omitempty"`
}

type jsonGroup struct {
	Title     string    `json:"title"`
	Color     string    `json:"color,omitempty"`
	Collapsed bool      `json:"collapsed,omitempty"`
	Tabs      []jsonTab `json:"tabs"`
}

type jsonTab struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Domain  string `json:"domain"`
	Active  bool   `json:"active,omitempty"`
	Audible bool   `json:"audible,omitempty"`
	Muted   bool   `json:"muted,omitempty"`
}

// JSON formats a snapshot as an indented JSON document, sectioned the way
// the sidebar lists it: pinned strip, groups in first-occurrence order,
// then ungrouped tabs.
func JSON(snap *types.Snapshot) (string, error) {
	pinned, groups, ungrouped := partition(snap)

	out := jsonExport{
		WindowID:   snap.WindowID,
		ExportedAt: time.Now(),
		Pinned:     toJSONTabs(pinned),
		Groups:     make([]jsonGroup, 0, len(groups)),
		Ungrouped:  toJSONTabs(ungrouped),
	}
	for _, g := range groups {
		out.Groups = append(out.Groups, jsonGroup{
			Title:     g.Group.Title,
			Color:     g.Group.Color,
			Collapsed: g.Group.Collapsed,
			Tabs:      toJSONTabs(g.Tabs),
		})
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

func toJSONTabs(tabs []types.Tab) []jsonTab {
	out := make([]jsonTab, 0, len(tabs))
	for _, tab := range tabs {
		out = append(out, jsonTab{
			Title:   tab.Title,
			URL:     tab.URL,
			Domain:  extractDomain(tab.URL),
			Active:  tab.Active,
			Audible: tab.Audible,
			Muted:   tab.Muted,
		})
	}
	return out
}

func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Hostname()
}
