// Package favicon resolves icons and display titles for tabs. Regular pages
// fall back to a favicon-service URL derived from the hostname; privileged
// browser pages get scheme-specific glyphs instead.
package favicon

import (
	"net/url"
	"strings"

	"github.com/azln/zenith/internal/types"
)

const serviceURL = "https://www.google.com/s2/favicons?domain=%s&sz=32"

var privilegedPrefixes = []string{
	"chrome://", "chrome-extension://", "about:", "edge://", "brave://",
}

// Privileged reports whether the URL is a restricted browser page that
// cannot be scripted, captured, or resolved through the favicon service.
// An empty URL counts as privileged.
func Privileged(rawURL string) bool {
	if rawURL == "" {
		return true
	}
	for _, p := range privilegedPrefixes {
		if strings.HasPrefix(rawURL, p) {
			return true
		}
	}
	return false
}

// ServiceURL returns the favicon-service URL for the page's hostname, or ""
// for privileged and unparseable URLs. Presentation code substitutes a
// scheme-specific glyph when this is empty.
func ServiceURL(rawURL string) string {
	if Privileged(rawURL) {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.Replace(serviceURL, "%s", u.Hostname(), 1)
}

// Resolve returns the best icon URL for a tab: the tab's own favicon if the
// extension supplied one, else the service URL. Privileged pages resolve to
// "" so the caller renders a glyph.
func Resolve(t types.Tab) string {
	if Privileged(t.URL) {
		return ""
	}
	if t.FavIconURL != "" {
		return t.FavIconURL
	}
	return ServiceURL(t.URL)
}

// Glyph returns the single-cell icon rendered in place of a favicon.
// Privileged pages get page-specific icons; everything else a globe.
func Glyph(rawURL string) string {
	switch {
	case strings.HasPrefix(rawURL, "chrome://newtab"), rawURL == "chrome://new-tab-page/":
		return "+"
	case strings.HasPrefix(rawURL, "chrome://settings"):
		return "⚙"
	case strings.HasPrefix(rawURL, "chrome://extensions"):
		return "▣"
	case strings.HasPrefix(rawURL, "chrome://history"):
		return "⟲"
	case strings.HasPrefix(rawURL, "chrome://downloads"):
		return "↓"
	case strings.HasPrefix(rawURL, "chrome://bookmarks"):
		return "★"
	case Privileged(rawURL):
		return "▤"
	default:
		return "●"
	}
}

// Domain extracts the hostname without a leading "www.".
func Domain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// DisplayTitle returns the human title for a tab. Privileged pages map to
// fixed names, and a missing or URL-equal title falls back to the domain.
func DisplayTitle(t types.Tab) string {
	switch {
	case strings.HasPrefix(t.URL, "chrome://newtab"), t.URL == "chrome://new-tab-page/":
		return "New Tab"
	case strings.HasPrefix(t.URL, "chrome://extensions"):
		return "Extensions"
	case strings.HasPrefix(t.URL, "chrome://settings"):
		return "Settings"
	case strings.HasPrefix(t.URL, "chrome://"):
		rest := strings.TrimPrefix(t.URL, "chrome://")
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i]
		}
		return rest
	}
	if t.Title == "" || t.Title == t.URL {
		if d := Domain(t.URL); d != "" {
			return d
		}
		return "New Tab"
	}
	return t.Title
}
