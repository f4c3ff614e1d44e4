package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const maxVideos = 10

// Video is one YouTube search hit.
type Video struct {
	ID        string
	Title     string
	Thumbnail string
	Duration  string
	URL       string
}

var ytInitialDataMarkers = [][]byte{
	[]byte("var ytInitialData = "),
	[]byte(`window["ytInitialData"] = `),
}

// YouTube searches YouTube for query and returns at most 10 videos.
func (c *Crawler) YouTube(ctx context.Context, query string) ([]Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	return c.youtube.Do(ctx, "youtube:"+strings.ToLower(query), func(ctx context.Context) ([]Video, error) {
		searchURL := strings.TrimRight(c.cfg.YouTubeURL, "/") + "/results?search_query=" + url.QueryEscape(query)
		body, err := c.client.GetBody(ctx, "youtube", searchURL)
		if err != nil {
			return nil, fmt.Errorf("fetch youtube: %w", err)
		}
		return parseYouTube(body, c.cfg.YouTubeURL)
	})
}

func parseYouTube(body []byte, baseURL string) ([]Video, error) {
	raw, err := extractInitialData(body)
	if err != nil {
		return nil, err
	}

	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("decode ytInitialData: %w", err)
	}

	var videos []Video
	walkVideoRenderers(tree, func(r map[string]any) bool {
		v := Video{
			ID:       str(r, "videoId"),
			Title:    runsText(r["title"]),
			Duration: simpleText(r["lengthText"]),
		}
		if v.ID == "" || v.Title == "" {
			return true
		}
		v.URL = strings.TrimRight(baseURL, "/") + "/watch?v=" + v.ID
		if thumbs, ok := dig(r, "thumbnail", "thumbnails").([]any); ok && len(thumbs) > 0 {
			if last, ok := thumbs[len(thumbs)-1].(map[string]any); ok {
				v.Thumbnail = str(last, "url")
			}
		}
		videos = append(videos, v)
		return len(videos) < maxVideos
	})
	return videos, nil
}

// extractInitialData returns the JSON object assigned to ytInitialData.
func extractInitialData(body []byte) ([]byte, error) {
	for _, marker := range ytInitialDataMarkers {
		idx := bytes.Index(body, marker)
		if idx < 0 {
			continue
		}
		rest := body[idx+len(marker):]
		end := bytes.Index(rest, []byte(";</script>"))
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated ytInitialData", ErrNoResult)
		}
		return rest[:end], nil
	}
	return nil, fmt.Errorf("%w: ytInitialData not found", ErrNoResult)
}

// walkVideoRenderers visits every "videoRenderer" object depth first until
// visit returns false.
func walkVideoRenderers(node any, visit func(map[string]any) bool) bool {
	switch n := node.(type) {
	case map[string]any:
		if r, ok := n["videoRenderer"].(map[string]any); ok {
			return visit(r)
		}
		for _, child := range n {
			if !walkVideoRenderers(child, visit) {
				return false
			}
		}
	case []any:
		for _, child := range n {
			if !walkVideoRenderers(child, visit) {
				return false
			}
		}
	}
	return true
}

func dig(node any, path ...string) any {
	for _, key := range path {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = m[key]
	}
	return node
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func simpleText(node any) string {
	if s, ok := dig(node, "simpleText").(string); ok {
		return s
	}
	return runsText(node)
}

func runsText(node any) string {
	runs, ok := dig(node, "runs").([]any)
	if !ok {
		s, _ := dig(node, "simpleText").(string)
		return s
	}
	var b strings.Builder
	for _, run := range runs {
		if m, ok := run.(map[string]any); ok {
			b.WriteString(str(m, "text"))
		}
	}
	return b.String()
}
