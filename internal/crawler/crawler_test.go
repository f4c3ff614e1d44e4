package crawler

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nvnfont/nvnfont-bot-go/internal/scraper"
)

type dedupCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (d *dedupCounter) RecordSingleflightDedup(crawler string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.counts == nil {
		d.counts = map[string]int{}
	}
	d.counts[crawler]++
}

func newTestCrawler(t *testing.T, handler http.Handler) (*Crawler, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := scraper.NewClient(scraper.Options{
		Timeout:      2 * time.Second,
		MaxRetries:   0,
		InitialDelay: time.Millisecond,
	})
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		loc = time.FixedZone("ICT", 7*3600)
	}
	c := New(client, Config{
		LotteryURL: srv.URL + "/xsmb",
		YouTubeURL: srv.URL,
		DiseaseURL: srv.URL,
		SearchURL:  srv.URL + "/search",
		Location:   loc,
	}, nil)
	return c, srv
}
