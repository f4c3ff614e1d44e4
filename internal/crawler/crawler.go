// Package crawler implements the external lookups behind the bot's
// keyword commands: lucky numbers, northern lottery results, YouTube
// search, disease statistics and general web search.
package crawler

import (
	"time"

	"github.com/nvnfont/nvnfont-bot-go/internal/scraper"
)

// Default upstreams.
const (
	DefaultLotteryURL = "https://xoso.com.vn/xo-so-mien-bac/xsmb-p1.html"
	DefaultYouTubeURL = "https://www.youtube.com"
	DefaultDiseaseURL = "https://disease.sh"
	DefaultSearchURL  = "https://html.duckduckgo.com/html/"
)

// DedupRecorder counts callers served by a shared in-flight crawl.
type DedupRecorder interface {
	RecordSingleflightDedup(crawler string)
}

// Config holds crawler upstreams. Empty URLs fall back to the defaults.
type Config struct {
	LotteryURL string
	YouTubeURL string
	DiseaseURL string
	SearchURL  string
	Location   *time.Location
}

// Crawler runs lookups through a shared scraper client.
type Crawler struct {
	client *scraper.Client
	cfg    Config
	now    func() time.Time

	lottery *scraper.Flight[string]
	youtube *scraper.Flight[[]Video]
	disease *scraper.Flight[Disease]
	search  *scraper.Flight[[]string]
}

// New creates a Crawler. metrics may be nil.
func New(client *scraper.Client, cfg Config, metrics DedupRecorder) *Crawler {
	if cfg.LotteryURL == "" {
		cfg.LotteryURL = DefaultLotteryURL
	}
	if cfg.YouTubeURL == "" {
		cfg.YouTubeURL = DefaultYouTubeURL
	}
	if cfg.DiseaseURL == "" {
		cfg.DiseaseURL = DefaultDiseaseURL
	}
	if cfg.SearchURL == "" {
		cfg.SearchURL = DefaultSearchURL
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	onShared := func(name string) func(string) {
		return func(string) {
			if metrics != nil {
				metrics.RecordSingleflightDedup(name)
			}
		}
	}

	return &Crawler{
		client:  client,
		cfg:     cfg,
		now:     time.Now,
		lottery: scraper.NewFlight[string](onShared("xsmb")),
		youtube: scraper.NewFlight[[]Video](onShared("youtube")),
		disease: scraper.NewFlight[Disease](onShared("disease")),
		search:  scraper.NewFlight[[]string](onShared("search")),
	}
}
