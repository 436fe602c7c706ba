package bridge

import (
	"encoding/json"

	"github.com/azln/zenith/internal/favicon"
	"github.com/azln/zenith/internal/types"
)

// incomingMsg is any message from the extension: lifecycle events, pushed
// notifications, or a response to a command we sent (matched by ID).
type incomingMsg struct {
	Type     string          `json:"type,omitempty"`
	WindowID int             `json:"windowId,omitempty"`
	TabID    int             `json:"tabId,omitempty"`
	GroupID  int             `json:"groupId,omitempty"`
	Changed  json.RawMessage `json:"changed,omitempty"`

	// Command response fields.
	ID          string          `json:"id,omitempty"`
	OK          *bool           `json:"ok,omitempty"`
	Error       string          `json:"error,omitempty"`
	Tabs        json.RawMessage `json:"tabs,omitempty"`
	Groups      json.RawMessage `json:"groups,omitempty"`
	Windows     json.RawMessage `json:"windows,omitempty"`
	History     json.RawMessage `json:"history,omitempty"`
	NewGroupID  int             `json:"newGroupId,omitempty"`
	PreviewData string          `json:"snapshot,omitempty"` // data URL or ""
}

// succeeded reports whether a response carries a success flag. A missing
// flag counts as success: plain command acks omit it.
func (m incomingMsg) succeeded() bool {
	return m.OK == nil || *m.OK
}

// outgoingMsg is a command from the sidebar to the extension. ID correlates
// the eventual response.
type outgoingMsg struct {
	ID       string `json:"id"`
	Action   string `json:"action"`
	TabID    int    `json:"tabId,omitempty"`
	GroupID  int    `json:"groupId,omitempty"`
	WindowID int    `json:"windowId,omitempty"`
	NewIndex *int   `json:"newIndex,omitempty"`
	URL        string `json:"url,omitempty"`
	Query      string `json:"query,omitempty"`
	MaxResults int    `json:"maxResults,omitempty"`
	Name       string `json:"name,omitempty"`
	Color      string `json:"color,omitempty"`
	Pinned     *bool  `json:"pinned,omitempty"`
	Muted      *bool  `json:"muted,omitempty"`
}

type wireTab struct {
	ID         int    `json:"id"`
	Index      int    `json:"index"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	FavIconURL string `json:"favIconUrl"`
	Active     bool   `json:"active"`
	Pinned     bool   `json:"pinned"`
	GroupID    *int   `json:"groupId"`
	Audible    bool   `json:"audible"`
	MutedInfo  struct {
		Muted bool `json:"muted"`
	} `json:"mutedInfo"`
	Discarded bool   `json:"discarded"`
	Status    string `json:"status"`
}

type wireGroup struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Color     string `json:"color"`
	Collapsed bool   `json:"collapsed"`
}

type wireWindow struct {
	ID       int  `json:"id"`
	Focused  bool `json:"focused"`
	TabCount int  `json:"tabCount"`
}

type wireHistoryItem struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	VisitCount int    `json:"visitCount"`
}

// changeInfo mirrors the changed-fields object on tab.updated events. A nil
// pointer means the field did not change.
type changeInfo struct {
	Title      *string         `json:"title"`
	FavIconURL *string         `json:"favIconUrl"`
	Status     *string         `json:"status"`
	Pinned     *bool           `json:"pinned"`
	GroupID    *int            `json:"groupId"`
	Audible    *bool           `json:"audible"`
	MutedInfo  json.RawMessage `json:"mutedInfo"`
}

// meaningful reports whether a tab.updated event affects the rendered UI.
// Title, favicon, pin, group, audio, and mute changes do; a bare status
// flip to "loading" does not; only reaching "complete" counts. Filtering
// here keeps load-time event noise from scheduling refreshes.
func meaningful(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var ch changeInfo
	if err := json.Unmarshal(raw, &ch); err != nil {
		// Unknown shape: refresh rather than risk a stale sidebar.
		return true
	}
	if ch.Title != nil || ch.FavIconURL != nil || ch.Pinned != nil ||
		ch.GroupID != nil || ch.Audible != nil || len(ch.MutedInfo) > 0 {
		return true
	}
	return ch.Status != nil && *ch.Status == "complete"
}

// parseSnapshot converts a get-tabs response into a normalized Snapshot.
// A missing or malformed groups payload degrades to an empty group map
// (tabs still list, just ungrouped) and never fails the whole fetch.
func parseSnapshot(msg incomingMsg, windowID int, seq uint64) (types.Snapshot, error) {
	var tabs []wireTab
	if err := json.Unmarshal(msg.Tabs, &tabs); err != nil {
		return types.Snapshot{}, err
	}

	groups := make(map[int]types.Group)
	if len(msg.Groups) > 0 {
		var wgs []wireGroup
		if err := json.Unmarshal(msg.Groups, &wgs); err == nil {
			for _, g := range wgs {
				groups[g.ID] = types.Group{ID: g.ID, Title: g.Title, Color: g.Color, Collapsed: g.Collapsed}
			}
		}
	}

	snap := types.Snapshot{
		Tabs:     make([]types.Tab, len(tabs)),
		Groups:   groups,
		WindowID: windowID,
		Seq:      seq,
	}
	for i, wt := range tabs {
		gid := types.NoGroup
		if wt.GroupID != nil {
			gid = *wt.GroupID
		}
		t := types.Tab{
			ID:         wt.ID,
			Index:      wt.Index,
			Title:      wt.Title,
			URL:        wt.URL,
			FavIconURL: wt.FavIconURL,
			Active:     wt.Active,
			Pinned:     wt.Pinned,
			GroupID:    gid,
			Audible:    wt.Audible,
			Muted:      wt.MutedInfo.Muted,
			Discarded:  wt.Discarded,
			Status:     wt.Status,
		}
		t.FavIconURL = favicon.Resolve(t)
		snap.Tabs[i] = t
	}
	return snap, nil
}
