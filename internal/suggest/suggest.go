// Package suggest ranks URL-bar completions from open tabs and browsing
// history. Pure scoring over inputs the caller fetched; no I/O here.
package suggest

import (
	"net/url"
	"sort"
	"strings"

	"github.com/azln/zenith/internal/favicon"
	"github.com/azln/zenith/internal/types"
)

// MaxResults caps the ranked list, not counting the trailing search entry.
const MaxResults = 8

// HistoryWindow is how far back the history query should reach, in days.
const HistoryWindow = 90

const (
	scoreOpenTab     = 100
	scoreExactDomain = 80
	scoreDomainPart  = 50
	scoreHomepage    = 20
	scorePrefix      = 15
	scoreVisitCap    = 20
	scoreURLFallback = 10
)

// Rank scores open tabs and history entries against the typed query and
// returns at most MaxResults suggestions, best first, deduplicated by URL
// with open tabs winning ties. Unless the query already looks like a URL,
// a search entry is appended after the ranked results.
func Rank(query string, tabs []types.Tab, history []types.HistoryItem) []types.Suggestion {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var out []types.Suggestion
	seen := make(map[string]bool)

	for _, tab := range tabs {
		if !strings.Contains(strings.ToLower(tab.Title), query) &&
			!strings.Contains(strings.ToLower(tab.URL), query) {
			continue
		}
		if seen[tab.URL] {
			continue
		}
		seen[tab.URL] = true
		fav := tab.FavIconURL
		if fav == "" {
			fav = favicon.ServiceURL(tab.URL)
		}
		out = append(out, types.Suggestion{
			Title:   titleOr(tab.Title, tab.URL),
			URL:     tab.URL,
			Favicon: fav,
			IsTab:   true,
			TabID:   tab.ID,
			Score:   scoreOpenTab,
		})
	}

	for _, item := range history {
		if seen[item.URL] {
			continue
		}
		seen[item.URL] = true
		out = append(out, types.Suggestion{
			Title:   titleOr(item.Title, item.URL),
			URL:     item.URL,
			Favicon: favicon.ServiceURL(item.URL),
			Score:   scoreHistory(query, item),
		})
	}

	// Stable keeps tabs ahead of equally scored history entries.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > MaxResults {
		out = out[:MaxResults]
	}

	if !IsLikelyURL(query) {
		out = append(out, types.Suggestion{
			Title:    `Search the web for "` + query + `"`,
			URL:      SearchURL(query),
			IsSearch: true,
			Score:    -1,
		})
	}
	return out
}

// scoreHistory mirrors the address-bar relevance heuristics: exact domain
// matches dominate, then partial domain matches, with smaller boosts for
// homepages, prefix matches, and visit frequency.
func scoreHistory(query string, item types.HistoryItem) int {
	u, err := url.Parse(item.URL)
	if err != nil || u.Hostname() == "" {
		if strings.Contains(strings.ToLower(item.URL), query) {
			return scoreURLFallback
		}
		return 0
	}

	score := 0
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	switch {
	case host == query, host == query+".com", host == query+".org", host == query+".net":
		score += scoreExactDomain
	case strings.Contains(host, query):
		score += scoreDomainPart
	}

	if u.Path == "/" || u.Path == "" {
		score += scoreHomepage
	}

	title := strings.ToLower(item.Title)
	if strings.HasPrefix(title, query) || strings.HasPrefix(host, query) {
		score += scorePrefix
	}

	visits := item.VisitCount * 2
	if visits > scoreVisitCap {
		visits = scoreVisitCap
	}
	return score + visits
}

// IsLikelyURL reports whether typed input should navigate rather than
// search: it contains a dot and no spaces, or carries an explicit scheme.
func IsLikelyURL(q string) bool {
	q = strings.TrimSpace(q)
	if strings.HasPrefix(q, "http://") || strings.HasPrefix(q, "https://") {
		return true
	}
	return strings.Contains(q, ".") && !strings.Contains(q, " ")
}

// NavigateURL turns raw input into a loadable URL: likely URLs get an
// https scheme if missing, everything else becomes a web search.
func NavigateURL(q string) string {
	q = strings.TrimSpace(q)
	if !IsLikelyURL(q) {
		return SearchURL(q)
	}
	if strings.HasPrefix(q, "http://") || strings.HasPrefix(q, "https://") {
		return q
	}
	return "https://" + q
}

// SearchURL builds the fallback web-search URL for a query.
func SearchURL(q string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(strings.TrimSpace(q))
}

func titleOr(title, fallback string) string {
	if title == "" {
		return fallback
	}
	return title
}
