// Package webhook provides the Messenger webhook endpoints: subscription
// verification and event delivery to the bot dispatcher.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nvnfont/nvnfont-bot-go/internal/bot"
	"github.com/nvnfont/nvnfont-bot-go/internal/config"
	"github.com/nvnfont/nvnfont-bot-go/internal/ctxutil"
	"github.com/nvnfont/nvnfont-bot-go/internal/logger"
	"github.com/nvnfont/nvnfont-bot-go/internal/sentry"
)

const (
	// EventReceived is the acknowledgement body of an accepted delivery.
	EventReceived = "EVENT_RECEIVED"

	signatureHeader = "X-Hub-Signature-256"
	signaturePrefix = "sha256="
)

// Dispatcher handles one normalized event.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev bot.Event)
}

// Recorder receives webhook metrics.
type Recorder interface {
	RecordWebhook(eventType, status string, duration float64)
}

// Handler serves the webhook endpoints.
type Handler struct {
	verifyToken string
	appSecret   string
	dispatcher  Dispatcher
	metrics     Recorder
	logger      *logger.Logger

	eventTimeout time.Duration
	maxBodyBytes int64
}

// HandlerConfig holds configuration for creating a new Handler
type HandlerConfig struct {
	VerifyToken string
	// AppSecret enables X-Hub-Signature-256 verification when non-empty.
	AppSecret  string
	Dispatcher Dispatcher
	Metrics    Recorder
	Logger     *logger.Logger

	EventTimeout time.Duration
	MaxBodyBytes int64
}

// NewHandler creates a new webhook handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.EventTimeout <= 0 {
		cfg.EventTimeout = config.WebhookEventProcessing
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = config.WebhookMaxBodyBytes
	}
	return &Handler{
		verifyToken:  cfg.VerifyToken,
		appSecret:    cfg.AppSecret,
		dispatcher:   cfg.Dispatcher,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger.WithModule("webhook"),
		eventTimeout: cfg.EventTimeout,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

// Verify answers the subscription handshake (GET /webhook).
func (h *Handler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "" || token == "" || token != h.verifyToken {
		h.logger.WithField("mode", mode).WarnContext(c.Request.Context(), "Webhook verification rejected")
		c.String(http.StatusForbidden, "Can't verify token")
		return
	}
	h.logger.InfoContext(c.Request.Context(), "Webhook verified")
	c.String(http.StatusOK, challenge)
}

// Handle accepts a delivery (POST /webhook). Events are dispatched
// synchronously in array order before the acknowledgement is written.
func (h *Handler) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes))
	if err != nil {
		h.logger.WithError(err).WarnContext(ctx, "Failed to read webhook body")
		c.Status(http.StatusBadRequest)
		return
	}

	if h.appSecret != "" && !validSignature(h.appSecret, c.GetHeader(signatureHeader), body) {
		h.logger.WarnContext(ctx, "Invalid webhook signature")
		h.record("batch", "invalid_signature", 0)
		c.Status(http.StatusForbidden)
		return
	}

	var d delivery
	if err := json.Unmarshal(body, &d); err != nil {
		h.logger.WithError(err).WarnContext(ctx, "Malformed webhook body")
		c.Status(http.StatusBadRequest)
		return
	}
	if d.Object != "page" {
		h.logger.WithField("object", d.Object).DebugContext(ctx, "Ignoring non-page delivery")
		c.Status(http.StatusNotFound)
		return
	}

	for _, e := range d.Entry {
		if len(e.Messaging) == 0 {
			continue
		}
		h.processEvent(ctx, e.Messaging[0])
	}
	c.String(http.StatusOK, EventReceived)
}

// processEvent dispatches one messaging event. A panic is recovered and
// reported so the rest of the delivery is still processed.
func (h *Handler) processEvent(parent context.Context, m messaging) {
	start := time.Now()
	ev := toEvent(m)
	eventType := ev.Kind()

	ctx, cancel := context.WithTimeout(ctxutil.PreserveTracing(parent), h.eventTimeout)
	defer cancel()
	ctx = ctxutil.WithSenderID(ctx, ev.SenderID)

	status := "success"
	defer func() {
		if r := recover(); r != nil {
			status = "panic"
			err := sentry.RecoverWithContext(ctx, r)
			h.logger.WithError(err).
				WithField("stack", string(debug.Stack())).
				ErrorContext(ctx, "Panic while dispatching event")
		}
		h.record(eventType, status, time.Since(start).Seconds())
		h.logger.WithField("event_type", eventType).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			DebugContext(ctx, "Event processed")
	}()

	if m.Message != nil && m.Message.IsEcho {
		status = "echo"
		return
	}
	h.dispatcher.Dispatch(ctx, ev)
}

func (h *Handler) record(eventType, status string, duration float64) {
	if h.metrics != nil {
		h.metrics.RecordWebhook(eventType, status, duration)
	}
}

func toEvent(m messaging) bot.Event {
	ev := bot.Event{SenderID: m.Sender.ID}
	if m.Message != nil {
		ev.Text = m.Message.Text
		if m.Message.QuickReply != nil {
			ev.QuickReplyPayload = m.Message.QuickReply.Payload
		}
	}
	if m.Postback != nil {
		ev.PostbackPayload = m.Postback.Payload
	}
	return ev
}

// validSignature checks header against the HMAC-SHA256 of body.
func validSignature(secret, header string, body []byte) bool {
	sig, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok {
		return false
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
