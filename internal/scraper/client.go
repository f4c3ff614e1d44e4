// Package scraper provides the HTTP client shared by the crawlers: random
// user agents, gzip decoding, bounded retry with backoff and singleflight
// deduplication.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/corpix/uarand"
	"github.com/klauspost/compress/gzip"

	domerrors "github.com/nvnfont/nvnfont-bot-go/internal/errors"
)

// maxBodySize caps how much of a page is read into memory.
const maxBodySize = 8 << 20

// MetricsRecorder receives one observation per crawl.
type MetricsRecorder interface {
	RecordScraperRequest(crawler, status string, duration float64)
}

// Options configures a Client.
type Options struct {
	Timeout      time.Duration
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Metrics      MetricsRecorder
}

// Client fetches pages for crawlers. It is safe for concurrent use.
type Client struct {
	httpClient   *http.Client
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
	metrics      MetricsRecorder
	userAgent    func() string
}

// NewClient creates a scraper client.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = time.Second
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 10 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxRetries:   opts.MaxRetries,
		initialDelay: opts.InitialDelay,
		maxDelay:     opts.MaxDelay,
		metrics:      opts.Metrics,
		userAgent:    uarand.GetRandom,
	}
}

// GetBody fetches rawURL and returns the decoded body. crawler labels the
// request in metrics.
func (c *Client) GetBody(ctx context.Context, crawler, rawURL string) (body []byte, err error) {
	start := time.Now()
	defer func() {
		if c.metrics == nil {
			return
		}
		status := "success"
		if err != nil {
			status = "error"
		}
		c.metrics.RecordScraperRequest(crawler, status, time.Since(start).Seconds())
	}()

	err = RetryWithBackoff(ctx, c.maxRetries, c.initialDelay, c.maxDelay, func() error {
		b, fetchErr := c.fetch(ctx, crawler, rawURL)
		if fetchErr != nil {
			return fetchErr
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// GetDocument fetches rawURL and parses it as HTML.
func (c *Client) GetDocument(ctx context.Context, crawler, rawURL string) (*goquery.Document, error) {
	body, err := c.GetBody(ctx, crawler, rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", redact(rawURL), err)
	}
	return doc, nil
}

// GetJSON fetches rawURL and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, crawler, rawURL string, v any) error {
	body, err := c.GetBody(ctx, crawler, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode json from %s: %w", redact(rawURL), err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, crawler, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "vi-VN,vi;q=0.9,en-US;q=0.8,en;q=0.7")
	// Setting Accept-Encoding disables the transport's transparent gzip.
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, Permanent(ctx.Err())
		}
		return nil, domerrors.NewExternalCallError(crawler, redact(rawURL), 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		ext := domerrors.NewExternalCallError(crawler, redact(rawURL), resp.StatusCode, fmt.Errorf("http %s", resp.Status))
		switch {
		case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
			return nil, ext
		default:
			return nil, Permanent(ext)
		}
	}

	reader := io.Reader(resp.Body)
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, Permanent(fmt.Errorf("decompress gzip: %w", err))
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxBodySize))
	if err != nil {
		return nil, domerrors.NewExternalCallError(crawler, redact(rawURL), resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	return body, nil
}

// redact drops the query string, which may carry search terms or keys.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
