package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nvnfont/nvnfont-bot-go/internal/stringutil"
)

const maxSnippets = 3

// Search looks text up on the configured search page. An instant answer
// yields one message; otherwise up to three result snippets are returned.
// An empty slice means nothing useful was found.
func (c *Crawler) Search(ctx context.Context, text string) ([]string, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return nil, nil
	}
	return c.search.Do(ctx, "search:"+stringutil.Fold(query), func(ctx context.Context) ([]string, error) {
		searchURL := c.cfg.SearchURL + "?q=" + url.QueryEscape(query)
		doc, err := c.client.GetDocument(ctx, "search", searchURL)
		if err != nil {
			return nil, fmt.Errorf("fetch search: %w", err)
		}
		return parseSearch(doc), nil
	})
}

func parseSearch(doc *goquery.Document) []string {
	if answer := cleanText(doc.Find(".zci__result, .zci-answer, .kno-rdesc span").First().Text()); answer != "" {
		return []string{answer}
	}

	var snippets []string
	doc.Find(".result").EachWithBreak(func(_ int, res *goquery.Selection) bool {
		snippet := cleanText(res.Find(".result__snippet").Text())
		if snippet == "" {
			return true
		}
		title := cleanText(res.Find(".result__a").First().Text())
		if title != "" {
			snippet = title + "\n" + snippet
		}
		snippets = append(snippets, snippet)
		return len(snippets) < maxSnippets
	})
	return snippets
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
