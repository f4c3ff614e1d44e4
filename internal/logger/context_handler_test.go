package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/nvnfont/nvnfont-bot-go/internal/ctxutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHandler_Handle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		setup    func(context.Context) context.Context
		expected map[string]string
		absent   []string
	}{
		{
			name: "extracts all context values",
			setup: func(ctx context.Context) context.Context {
				ctx = ctxutil.WithSenderID(ctx, "1234567890")
				ctx = ctxutil.WithRequestID(ctx, "req-abc")
				return ctxutil.WithRoute(ctx, "postback")
			},
			expected: map[string]string{
				"sender_id":  "1234567890",
				"request_id": "req-abc",
				"route":      "postback",
			},
		},
		{
			name:   "handles empty context",
			setup:  func(ctx context.Context) context.Context { return ctx },
			absent: []string{"sender_id", "request_id", "route"},
		},
		{
			name: "skips empty string values",
			setup: func(ctx context.Context) context.Context {
				ctx = ctxutil.WithSenderID(ctx, "")
				return ctxutil.WithRequestID(ctx, "req-x")
			},
			expected: map[string]string{"request_id": "req-x"},
			absent:   []string{"sender_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			handler := NewContextHandler(slog.NewJSONHandler(&buf, nil))
			slog.New(handler).InfoContext(tt.setup(context.Background()), "test message")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			for k, v := range tt.expected {
				assert.Equal(t, v, entry[k], k)
			}
			for _, k := range tt.absent {
				assert.NotContains(t, entry, k)
			}
		})
	}
}

func TestContextHandler_WithAttrsKeepsEnrichment(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))).With("module", "webhook")
	log.InfoContext(ctxutil.WithSenderID(context.Background(), "42"), "hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "webhook", entry["module"])
	assert.Equal(t, "42", entry["sender_id"])
}
