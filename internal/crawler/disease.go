package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	domerrors "github.com/nvnfont/nvnfont-bot-go/internal/errors"
	"github.com/nvnfont/nvnfont-bot-go/internal/stringutil"
)

// Disease report kinds.
const (
	DiseaseSingleLocation = "singleLocation"
	DiseaseAllLocation    = "allLocation"
)

// Disease is a rendered COVID-19 report.
type Disease struct {
	Type string
	Data string
}

type diseaseStats struct {
	Country     string `json:"country"`
	Cases       int64  `json:"cases"`
	TodayCases  int64  `json:"todayCases"`
	Deaths      int64  `json:"deaths"`
	TodayDeaths int64  `json:"todayDeaths"`
	Recovered   int64  `json:"recovered"`
	Active      int64  `json:"active"`
	Critical    int64  `json:"critical"`
	Updated     int64  `json:"updated"`
}

// CountryFromCommand extracts the country of "@covid tại <country>".
// It returns "" when the command asks for world totals.
func CountryFromCommand(text string) string {
	arg := stringutil.After(text, "@covid")
	if arg == "" {
		return ""
	}
	first, rest, _ := strings.Cut(arg, " ")
	if stringutil.Fold(first) != "tai" {
		return ""
	}
	return strings.TrimSpace(rest)
}

// Disease reports COVID-19 statistics for "@covid tại <country>", or world
// totals for a bare "@covid".
func (c *Crawler) Disease(ctx context.Context, text string) (Disease, error) {
	country := CountryFromCommand(text)
	key := "disease:" + stringutil.Fold(country)

	return c.disease.Do(ctx, key, func(ctx context.Context) (Disease, error) {
		base := strings.TrimRight(c.cfg.DiseaseURL, "/") + "/v3/covid-19"
		if country == "" {
			var stats diseaseStats
			if err := c.client.GetJSON(ctx, "disease", base+"/all", &stats); err != nil {
				return Disease{}, fmt.Errorf("fetch world stats: %w", err)
			}
			return Disease{Type: DiseaseAllLocation, Data: c.renderDisease("Thế giới", stats)}, nil
		}

		query := strings.ReplaceAll(strings.ToLower(stringutil.StripDiacritics(country)), " ", "")
		var stats diseaseStats
		err := c.client.GetJSON(ctx, "disease", base+"/countries/"+url.PathEscape(query)+"?strict=false", &stats)
		if err != nil {
			var ext *domerrors.ExternalCallError
			if errors.As(err, &ext) && ext.StatusCode == http.StatusNotFound {
				return Disease{Type: DiseaseSingleLocation, Data: "Không tìm thấy dữ liệu của quốc gia: " + country}, nil
			}
			return Disease{}, fmt.Errorf("fetch country stats: %w", err)
		}
		name := stats.Country
		if name == "" {
			name = country
		}
		return Disease{Type: DiseaseSingleLocation, Data: c.renderDisease(name, stats)}, nil
	})
}

func (c *Crawler) renderDisease(place string, s diseaseStats) string {
	lines := []string{
		"Tình hình dịch COVID-19 tại " + place,
		"Tổng số ca nhiễm: " + groupDigits(s.Cases) + " (+" + groupDigits(s.TodayCases) + ")",
		"Đang điều trị: " + groupDigits(s.Active),
		"Nguy kịch: " + groupDigits(s.Critical),
		"Đã hồi phục: " + groupDigits(s.Recovered),
		"Tử vong: " + groupDigits(s.Deaths) + " (+" + groupDigits(s.TodayDeaths) + ")",
	}
	if s.Updated > 0 {
		updated := time.UnixMilli(s.Updated).In(c.cfg.Location)
		lines = append(lines, "Cập nhật lúc: "+updated.Format("15:04 02/01/2006"))
	}
	return strings.Join(lines, "\n")
}

// groupDigits formats n with '.' thousands separators.
func groupDigits(n int64) string {
	if n < 0 {
		return "-" + groupDigits(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
