// Package messenger is a client for the Messenger Platform Graph API:
// the Send API, the User Profile API and the Messenger Profile API.
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	domerrors "github.com/nvnfont/nvnfont-bot-go/internal/errors"
)

const (
	defaultBaseURL = "https://graph.facebook.com"
	defaultVersion = "v15.0"
	defaultTimeout = 15 * time.Second

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 4 << 10
)

// MetricsRecorder receives one observation per Graph API call.
type MetricsRecorder interface {
	RecordMessengerCall(op, status string, duration float64)
}

// Client talks to the Graph API with a page access token.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	version    string
	token      string
	metrics    MetricsRecorder
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Graph API host (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithVersion sets the Graph API version path segment.
func WithVersion(version string) Option {
	return func(c *Client) { c.version = version }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records call counts and latencies.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for the page identified by token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		version:    defaultVersion,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send delivers msg to recipientID. It signals mark_seen and typing_on
// first and typing_off afterwards; typing_off is attempted even when the
// send fails. Indicator failures are logged and do not fail the send.
func (c *Client) Send(ctx context.Context, recipientID string, msg Message) error {
	if err := c.SenderAction(ctx, recipientID, ActionMarkSeen); err != nil {
		slog.WarnContext(ctx, "mark_seen failed", "recipient_id", recipientID, "error", err)
	}
	if err := c.SenderAction(ctx, recipientID, ActionTypingOn); err != nil {
		slog.WarnContext(ctx, "typing_on failed", "recipient_id", recipientID, "error", err)
	}
	defer func() {
		if err := c.SenderAction(context.WithoutCancel(ctx), recipientID, ActionTypingOff); err != nil {
			slog.WarnContext(ctx, "typing_off failed", "recipient_id", recipientID, "error", err)
		}
	}()

	return c.postJSON(ctx, "send", "/me/messages", sendRequest{
		Recipient: recipient{ID: recipientID},
		Message:   &msg,
	}, nil)
}

// SenderAction posts a sender_action (mark_seen, typing_on, typing_off).
func (c *Client) SenderAction(ctx context.Context, recipientID, action string) error {
	return c.postJSON(ctx, action, "/me/messages", sendRequest{
		Recipient:    recipient{ID: recipientID},
		SenderAction: action,
	}, nil)
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, recipientID, text string) error {
	return c.Send(ctx, recipientID, TextMessage(text))
}

// SendImage sends an image by URL.
func (c *Client) SendImage(ctx context.Context, recipientID, imageURL string) error {
	return c.Send(ctx, recipientID, ImageMessage(imageURL))
}

// SendGeneric sends a carousel.
func (c *Client) SendGeneric(ctx context.Context, recipientID string, elements []Element) error {
	return c.Send(ctx, recipientID, GenericMessage(elements))
}

// SendButtons sends a button template.
func (c *Client) SendButtons(ctx context.Context, recipientID, text string, buttons []Button) error {
	return c.Send(ctx, recipientID, ButtonMessage(text, buttons))
}

// SendQuickReplies sends text with quick reply chips.
func (c *Client) SendQuickReplies(ctx context.Context, recipientID, text string, replies []QuickReply) error {
	return c.Send(ctx, recipientID, QuickReplyMessage(text, replies))
}

// Profile fetches a user's public profile. A Graph API rejection
// (unknown or unreachable PSID) wraps domerrors.ErrNotFound.
func (c *Client) Profile(ctx context.Context, psid string) (*UserProfile, error) {
	endpoint := c.endpoint("/" + url.PathEscape(psid))
	q := url.Values{}
	q.Set("fields", "first_name,last_name,name,profile_pic,id")
	q.Set("access_token", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, domerrors.NewExternalCallError("profile", endpoint, 0, err)
	}

	var profile UserProfile
	if err := c.do(req, "profile", endpoint, &profile); err != nil {
		var ext *domerrors.ExternalCallError
		if errors.As(err, &ext) && (ext.StatusCode == http.StatusBadRequest || ext.StatusCode == http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %w", domerrors.ErrNotFound, err)
		}
		return nil, err
	}
	if profile.ID == "" {
		profile.ID = psid
	}
	return &profile, nil
}

// SetMessengerProfile posts page-level settings (get started, greeting,
// persistent menu).
func (c *Client) SetMessengerProfile(ctx context.Context, profile any) error {
	return c.postJSON(ctx, "setup", "/me/messenger_profile", profile, nil)
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + c.version + path
}

func (c *Client) postJSON(ctx context.Context, op, path string, body, out any) error {
	endpoint := c.endpoint(path)
	payload, err := json.Marshal(body)
	if err != nil {
		return domerrors.NewExternalCallError(op, endpoint, 0, fmt.Errorf("marshal: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return domerrors.NewExternalCallError(op, endpoint, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	return c.do(req, op, endpoint, out)
}

// do executes req. endpoint is the URL without query so tokens never reach
// error messages or logs.
func (c *Client) do(req *http.Request, op, endpoint string, out any) (err error) {
	start := time.Now()
	defer func() {
		if c.metrics == nil {
			return
		}
		status := "success"
		if err != nil {
			status = "error"
		}
		c.metrics.RecordMessengerCall(op, status, time.Since(start).Seconds())
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domerrors.NewExternalCallError(op, endpoint, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domerrors.NewExternalCallError(op, endpoint, resp.StatusCode, graphErrorFrom(body))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domerrors.NewExternalCallError(op, endpoint, resp.StatusCode, fmt.Errorf("decode: %w", err))
	}
	return nil
}

func graphErrorFrom(body []byte) error {
	var ge graphError
	if err := json.Unmarshal(body, &ge); err == nil && ge.Error.Message != "" {
		return fmt.Errorf("graph error %d (%s): %s", ge.Error.Code, ge.Error.Type, ge.Error.Message)
	}
	if len(body) == 0 {
		return errors.New("empty error response")
	}
	return fmt.Errorf("unexpected response: %s", body)
}
