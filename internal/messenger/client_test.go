package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/nvnfont/nvnfont-bot-go/internal/errors"
)

type recordedCall struct {
	Method string
	Path   string
	Auth   string
	Query  string
	Body   map[string]any
}

// fakeGraph records every request. failSends makes message sends (not
// sender actions) return 500.
type fakeGraph struct {
	mu        sync.Mutex
	calls     []recordedCall
	failSends bool
	profile   string
	profileOK bool
}

func (f *fakeGraph) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	call := recordedCall{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization"), Query: r.URL.RawQuery}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &call.Body)
	}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	failSends := f.failSends
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet:
		if !f.profileOK {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"message":"unknown user","type":"GraphMethodException","code":100}}`)
			return
		}
		_, _ = io.WriteString(w, f.profile)
	case failSends && call.Body["message"] != nil:
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"OAuthException","code":2}}`)
	default:
		_, _ = io.WriteString(w, `{"recipient_id":"1","message_id":"m"}`)
	}
}

func (f *fakeGraph) snapshot() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls map[string]int
}

func (r *fakeRecorder) RecordMessengerCall(op, status string, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[op+"/"+status]++
}

func newTestClient(t *testing.T, graph *fakeGraph, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(graph)
	t.Cleanup(srv.Close)
	return New("page-token", append([]Option{WithBaseURL(srv.URL)}, opts...)...)
}

func TestSend_SignalsAroundMessage(t *testing.T) {
	t.Parallel()
	graph := &fakeGraph{}
	rec := &fakeRecorder{}
	c := newTestClient(t, graph, WithMetrics(rec))

	require.NoError(t, c.SendText(context.Background(), "psid-1", "xin chào"))

	calls := graph.snapshot()
	require.Len(t, calls, 4)
	assert.Equal(t, ActionMarkSeen, calls[0].Body["sender_action"])
	assert.Equal(t, ActionTypingOn, calls[1].Body["sender_action"])
	assert.Equal(t, map[string]any{"text": "xin chào"}, calls[2].Body["message"])
	assert.Equal(t, ActionTypingOff, calls[3].Body["sender_action"])

	for _, call := range calls {
		assert.Equal(t, "/v15.0/me/messages", call.Path)
		assert.Equal(t, "Bearer page-token", call.Auth)
		assert.Equal(t, map[string]any{"id": "psid-1"}, call.Body["recipient"])
	}
	assert.Equal(t, 1, rec.calls["send/success"])
	assert.Equal(t, 1, rec.calls["typing_off/success"])
}

func TestSend_TypingOffAfterFailure(t *testing.T) {
	t.Parallel()
	graph := &fakeGraph{failSends: true}
	c := newTestClient(t, graph)

	err := c.SendImage(context.Background(), "psid-1", "https://img/x.png")
	require.Error(t, err)

	var ext *domerrors.ExternalCallError
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, http.StatusInternalServerError, ext.StatusCode)
	assert.Equal(t, "send", ext.Op)
	assert.Contains(t, err.Error(), "boom")

	calls := graph.snapshot()
	require.Len(t, calls, 4)
	assert.Equal(t, ActionTypingOff, calls[3].Body["sender_action"])
}

func TestSend_TemplatePayloads(t *testing.T) {
	t.Parallel()
	graph := &fakeGraph{}
	c := newTestClient(t, graph, WithVersion("v18.0"))

	err := c.SendButtons(context.Background(), "p", "pick", []Button{
		URLButton("Tải xuống", "https://dl"),
		PostbackButton("Font khác", PayloadListFont),
	})
	require.NoError(t, err)

	calls := graph.snapshot()
	require.Len(t, calls, 4)
	assert.Equal(t, "/v18.0/me/messages", calls[2].Path)
	msg := calls[2].Body["message"].(map[string]any)
	att := msg["attachment"].(map[string]any)
	assert.Equal(t, "template", att["type"])
	payload := att["payload"].(map[string]any)
	assert.Equal(t, "button", payload["template_type"])
	assert.Equal(t, "pick", payload["text"])
	buttons := payload["buttons"].([]any)
	require.Len(t, buttons, 2)
	assert.Equal(t, map[string]any{"type": "web_url", "title": "Tải xuống", "url": "https://dl"}, buttons[0])
	assert.Equal(t, map[string]any{"type": "postback", "title": "Font khác", "payload": "LIST_FONT"}, buttons[1])
}

func TestSendQuickReplies(t *testing.T) {
	t.Parallel()
	graph := &fakeGraph{}
	c := newTestClient(t, graph)

	require.NoError(t, c.SendQuickReplies(context.Background(), "p", "bật?", []QuickReply{TextQuickReply("🟢 Bật bot", "ON_BOT")}))

	msg := graph.snapshot()[2].Body["message"].(map[string]any)
	assert.Equal(t, "bật?", msg["text"])
	assert.Equal(t, []any{map[string]any{"content_type": "text", "title": "🟢 Bật bot", "payload": "ON_BOT"}}, msg["quick_replies"])
}

func TestProfile(t *testing.T) {
	t.Parallel()
	graph := &fakeGraph{profileOK: true, profile: `{"id":"42","first_name":"Lan","last_name":"Nguyen","name":"Lan Nguyen","profile_pic":"https://pic"}`}
	c := newTestClient(t, graph)

	p, err := c.Profile(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "Lan Nguyen", p.DisplayName())
	assert.Equal(t, "https://pic", p.ProfilePic)

	calls := graph.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "/v15.0/42", calls[0].Path)
	assert.Contains(t, calls[0].Query, "fields=first_name%2Clast_name%2Cname%2Cprofile_pic%2Cid")
	assert.Contains(t, calls[0].Query, "access_token=page-token")
}

func TestProfile_NotFound(t *testing.T) {
	t.Parallel()
	graph := &fakeGraph{}
	c := newTestClient(t, graph)

	p, err := c.Profile(context.Background(), "nobody")
	assert.Nil(t, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domerrors.ErrNotFound))
	assert.NotContains(t, err.Error(), "page-token")
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	var nilProfile *UserProfile
	assert.Equal(t, "bạn", nilProfile.DisplayName())
	assert.Equal(t, "bạn", (&UserProfile{}).DisplayName())
	assert.Equal(t, "Lan Nguyen", (&UserProfile{FirstName: "Lan", LastName: "Nguyen"}).DisplayName())
	assert.Equal(t, "Lan", (&UserProfile{FirstName: "Lan"}).DisplayName())
}
