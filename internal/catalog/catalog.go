// Package catalog keeps an in-memory snapshot of fonts and canned responses
// and matches free text against them.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nvnfont/nvnfont-bot-go/internal/sliceutil"
	"github.com/nvnfont/nvnfont-bot-go/internal/storage"
	"github.com/nvnfont/nvnfont-bot-go/internal/stringutil"
)

// fontListLinesPerMessage bounds the length of one font list message.
const fontListLinesPerMessage = 50

// Font is a read-only catalog entry.
type Font struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PostURL     string   `json:"urlPost"`
	Images      []string `json:"images"`
	Links       []string `json:"links"`
	Keys        []string `json:"keys"`
	Tags        []string `json:"tags"`
}

// Response is a canned auto-reply group.
type Response struct {
	Keys     []string `json:"keys"`
	Messages []string `json:"messages"`
}

// Match is the result of a lookup.
type Match struct {
	Fonts     []Font     `json:"fonts"`
	Responses []Response `json:"responses"`
}

// Source loads catalog data.
type Source interface {
	ListFonts(ctx context.Context) ([]*storage.Font, error)
	ListResponses(ctx context.Context) ([]*storage.Response, error)
}

type indexedFont struct {
	font Font
	keys []string // folded
}

type indexedResponse struct {
	resp Response
	keys []string // folded
}

// Catalog is safe for concurrent use. Lookups read the snapshot taken by
// the last successful Reload.
type Catalog struct {
	src Source

	mu        sync.RWMutex
	fonts     []indexedFont
	responses []indexedResponse
	fontList  []string
	loadedAt  time.Time
}

// New creates an empty catalog. Call Reload to populate it.
func New(src Source) *Catalog {
	return &Catalog{src: src}
}

// Reload replaces the snapshot with fresh data from the source. On error
// the previous snapshot stays in place.
func (c *Catalog) Reload(ctx context.Context) error {
	fonts, err := c.src.ListFonts(ctx)
	if err != nil {
		return fmt.Errorf("catalog: load fonts: %w", err)
	}
	responses, err := c.src.ListResponses(ctx)
	if err != nil {
		return fmt.Errorf("catalog: load responses: %w", err)
	}

	indexed := make([]indexedFont, 0, len(fonts))
	names := make([]string, 0, len(fonts))
	for _, f := range fonts {
		entry := indexedFont{font: Font{
			ID:          f.ID,
			Name:        f.Name,
			Description: f.Description,
			PostURL:     f.PostURL,
			Images:      f.Images,
			Links:       f.Links,
			Keys:        f.Keys,
			Tags:        f.Tags,
		}}
		entry.keys = foldKeys(append([]string{f.Name}, f.Keys...))
		indexed = append(indexed, entry)
		names = append(names, f.Name)
	}

	resp := make([]indexedResponse, 0, len(responses))
	for _, r := range responses {
		if len(r.Messages) == 0 {
			continue
		}
		resp = append(resp, indexedResponse{
			resp: Response{Keys: r.Keys, Messages: r.Messages},
			keys: foldKeys(r.Keys),
		})
	}

	c.mu.Lock()
	c.fonts = indexed
	c.responses = resp
	c.fontList = buildFontList(names)
	c.loadedAt = time.Now()
	c.mu.Unlock()

	slog.DebugContext(ctx, "catalog reloaded", "fonts", len(indexed), "responses", len(resp))
	return nil
}

func foldKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if f := stringutil.Fold(k); f != "" {
			out = append(out, f)
		}
	}
	return sliceutil.Deduplicate(out, func(k string) string { return k })
}

func buildFontList(names []string) []string {
	chunks := sliceutil.Chunk(names, fontListLinesPerMessage)
	out := make([]string, 0, len(chunks))
	n := 0
	for _, chunk := range chunks {
		lines := make([]string, 0, len(chunk))
		for _, name := range chunk {
			n++
			lines = append(lines, strconv.Itoa(n)+". "+name)
		}
		out = append(out, strings.Join(lines, "\n"))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Lookup returns the fonts and response groups whose keys occur in text.
func (c *Catalog) Lookup(text string) Match {
	folded := stringutil.Fold(text)
	var m Match
	if folded == "" {
		return m
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, f := range c.fonts {
		if containsAny(folded, f.keys) {
			m.Fonts = append(m.Fonts, f.font)
		}
	}
	for _, r := range c.responses {
		if containsAny(folded, r.keys) {
			m.Responses = append(m.Responses, r.resp)
		}
	}
	return m
}

// containsAny reports whether any folded key occurs in text as a plain
// substring, so "nvnparka" and "parkas" both match the key "parka".
func containsAny(text string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// FontList returns the catalog's font names as ready-to-send messages.
func (c *Catalog) FontList() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.fontList...)
}

// Counts returns the number of fonts and response groups loaded.
func (c *Catalog) Counts() (fonts, responses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fonts), len(c.responses)
}

// LoadedAt returns the time of the last successful reload.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
