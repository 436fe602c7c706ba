// Package preview produces hover previews for tabs: a readable-text
// excerpt of the page, cached on disk under lz4 block compression. Fetches
// for the same tab are rate limited to one per second so hovering back and
// forth does not hammer the network.
package preview

import (
	"encoding/binary"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/pierrec/lz4/v4"

	"github.com/azln/zenith/internal/applog"
	"github.com/azln/zenith/internal/favicon"
)

const (
	// ExcerptLen caps the stored excerpt, in runes.
	ExcerptLen = 600

	refreshInterval = time.Second
	fetchTimeout    = 10 * time.Second
)

// Cache entry framing: 8-byte magic + 4-byte LE uint32 uncompressed size +
// payload. Magic selects the payload encoding; short excerpts often do not
// compress, so those are stored raw.
var (
	cacheMagic    = []byte("znthPv1\x00")
	cacheMagicRaw = []byte("znthPv0\x00")
)

// Preview is a cached page excerpt.
type Preview struct {
	Title   string
	Excerpt string
}

// Cache fetches and stores previews keyed by tab id.
type Cache struct {
	dir    string
	client *http.Client

	mu      sync.Mutex
	mem     map[int]Preview
	lastGet map[int]time.Time
	urls    map[int]string // url the cached entry was built from
}

// NewCache opens a preview cache rooted at dir.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{
		dir:     dir,
		client:  &http.Client{Timeout: fetchTimeout},
		mem:     make(map[int]Preview),
		lastGet: make(map[int]time.Time),
		urls:    make(map[int]string),
	}, nil
}

// Get returns the preview for a tab, fetching it if the cache is cold or
// the tab's URL changed. Privileged pages have no preview. A repeat call
// within the refresh interval always serves the cached entry, even a stale
// one, rather than refetching.
func (c *Cache) Get(tabID int, url string) Preview {
	if url == "" || favicon.Privileged(url) {
		return Preview{}
	}

	c.mu.Lock()
	cached, haveMem := c.mem[tabID]
	sameURL := c.urls[tabID] == url
	recent := time.Since(c.lastGet[tabID]) < refreshInterval
	c.mu.Unlock()

	if haveMem && sameURL {
		return cached
	}
	if recent {
		if haveMem {
			return cached
		}
		return Preview{}
	}

	if p, ok := c.readDisk(tabID, url); ok {
		c.store(tabID, url, p)
		return p
	}

	p, err := c.fetch(url)
	if err != nil {
		applog.Error("preview.fetch", err, "tab", tabID)
		c.mu.Lock()
		c.lastGet[tabID] = time.Now()
		c.mu.Unlock()
		return Preview{}
	}
	c.store(tabID, url, p)
	c.writeDisk(tabID, url, p)
	return p
}

// Invalidate drops a tab's cached preview. Called when the tab activates,
// since foreground pages change under the user.
func (c *Cache) Invalidate(tabID int) {
	c.mu.Lock()
	url := c.urls[tabID]
	delete(c.mem, tabID)
	delete(c.urls, tabID)
	delete(c.lastGet, tabID)
	c.mu.Unlock()
	if url != "" {
		os.Remove(c.entryPath(tabID))
	}
}

func (c *Cache) store(tabID int, url string, p Preview) {
	c.mu.Lock()
	c.mem[tabID] = p
	c.urls[tabID] = url
	c.lastGet[tabID] = time.Now()
	c.mu.Unlock()
}

func (c *Cache) fetch(url string) (Preview, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return Preview{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	resp, err := c.client.Do(req)
	if err != nil {
		return Preview{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Preview{}, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, nil)
	if err != nil {
		return Preview{}, fmt.Errorf("extract %s: %w", url, err)
	}
	return Preview{
		Title:   article.Title,
		Excerpt: Excerpt(article.TextContent),
	}, nil
}

// Excerpt collapses whitespace and truncates text to the excerpt cap.
func Excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > ExcerptLen {
		return string(runes[:ExcerptLen]) + "…"
	}
	return text
}

func (c *Cache) entryPath(tabID int) string {
	return filepath.Join(c.dir, fmt.Sprintf("tab-%d.lz4", tabID))
}

// Disk layout inside the frame: url \n title \n excerpt.
func (c *Cache) writeDisk(tabID int, url string, p Preview) {
	payload := []byte(url + "\n" + p.Title + "\n" + p.Excerpt)
	data, err := compress(payload)
	if err != nil {
		applog.Error("preview.compress", err, "tab", tabID)
		return
	}
	if err := os.WriteFile(c.entryPath(tabID), data, 0o644); err != nil {
		applog.Error("preview.write", err, "tab", tabID)
	}
}

func (c *Cache) readDisk(tabID int, url string) (Preview, bool) {
	data, err := os.ReadFile(c.entryPath(tabID))
	if err != nil {
		return Preview{}, false
	}
	payload, err := decompress(data)
	if err != nil {
		os.Remove(c.entryPath(tabID))
		return Preview{}, false
	}
	parts := strings.SplitN(string(payload), "\n", 3)
	if len(parts) != 3 || parts[0] != url {
		return Preview{}, false
	}
	return Preview{Title: parts[1], Excerpt: parts[2]}, true
}

func compress(src []byte) ([]byte, error) {
	buf := make([]byte, 12+lz4.CompressBlockBound(len(src)))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(src)))
	var cmp lz4.Compressor
	n, err := cmp.CompressBlock(src, buf[12:])
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Incompressible; store raw under the alternate magic.
		copy(buf, cacheMagicRaw)
		return append(buf[:12], src...), nil
	}
	copy(buf, cacheMagic)
	return buf[:12+n], nil
}

func decompress(data []byte) ([]byte, error) {
	const headerSize = 12
	if len(data) < headerSize {
		return nil, fmt.Errorf("preview cache: truncated header")
	}
	size := binary.LittleEndian.Uint32(data[8:12])
	switch string(data[:8]) {
	case string(cacheMagicRaw):
		if uint32(len(data)-headerSize) < size {
			return nil, fmt.Errorf("preview cache: truncated payload")
		}
		return data[headerSize : headerSize+int(size)], nil
	case string(cacheMagic):
		dst := make([]byte, size)
		n, err := lz4.UncompressBlock(data[headerSize:], dst)
		if err != nil {
			return nil, fmt.Errorf("preview cache: %w", err)
		}
		return dst[:n], nil
	default:
		return nil, fmt.Errorf("preview cache: bad magic")
	}
}
