package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoResult means the upstream page had nothing the parser recognized.
var ErrNoResult = errors.New("crawler: no result")

// Lottery returns the latest northern lottery (XSMB) result as text.
// Concurrent callers share one upstream fetch.
func (c *Crawler) Lottery(ctx context.Context) (string, error) {
	return c.lottery.Do(ctx, "xsmb", func(ctx context.Context) (string, error) {
		doc, err := c.client.GetDocument(ctx, "xsmb", c.cfg.LotteryURL)
		if err != nil {
			return "", fmt.Errorf("fetch xsmb: %w", err)
		}
		return parseLottery(doc)
	})
}

func parseLottery(doc *goquery.Document) (string, error) {
	table := doc.Find("table.table-result").First()
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	if table.Length() == 0 {
		return "", ErrNoResult
	}

	title := strings.TrimSpace(doc.Find("h2").First().Text())
	if title == "" {
		title = "Kết quả xổ số miền Bắc"
	}

	lines := []string{title}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("th").First().Text())
		cells := row.Find("td")
		if label == "" {
			label = strings.TrimSpace(cells.First().Text())
			cells = cells.Slice(1, goquery.ToEnd)
		}

		var nums []string
		cells.Each(func(_ int, cell *goquery.Selection) {
			spans := cell.Find("span")
			if spans.Length() == 0 {
				nums = append(nums, strings.Fields(cell.Text())...)
				return
			}
			spans.Each(func(_ int, s *goquery.Selection) {
				if v := strings.TrimSpace(s.Text()); v != "" {
					nums = append(nums, v)
				}
			})
		})
		if label == "" || len(nums) == 0 {
			return
		}
		lines = append(lines, label+": "+strings.Join(nums, " - "))
	})

	if len(lines) == 1 {
		return "", ErrNoResult
	}
	return strings.Join(lines, "\n"), nil
}
