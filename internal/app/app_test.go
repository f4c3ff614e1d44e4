package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvnfont/nvnfont-bot-go/internal/api"
	"github.com/nvnfont/nvnfont-bot-go/internal/bot"
	"github.com/nvnfont/nvnfont-bot-go/internal/catalog"
	"github.com/nvnfont/nvnfont-bot-go/internal/config"
	"github.com/nvnfont/nvnfont-bot-go/internal/logger"
	"github.com/nvnfont/nvnfont-bot-go/internal/metrics"
	"github.com/nvnfont/nvnfont-bot-go/internal/r2client"
	"github.com/nvnfont/nvnfont-bot-go/internal/snapshot"
	"github.com/nvnfont/nvnfont-bot-go/internal/storage"
	"github.com/nvnfont/nvnfont-bot-go/internal/webhook"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []bot.Event
}

func (d *recordingDispatcher) Dispatch(_ context.Context, ev bot.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return "etag", nil
}

func (s *memStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, r2client.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStore) List(_ context.Context, prefix string) ([]r2client.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []r2client.Object
	for k, v := range s.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, r2client.Object{Key: k, Size: int64(len(v))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

type testApp struct {
	*Application
	dispatcher *recordingDispatcher
}

// setupTestApp builds an Application over a temp-file database with the
// real router. Each test gets its own file so parallel tests never share
// state.
func setupTestApp(t *testing.T, opts ...func(*config.Config)) *testApp {
	t.Helper()

	db, err := storage.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	registry := prometheus.NewRegistry()
	log := logger.NewWithWriter("error", io.Discard)
	cfg := &config.Config{
		VerifyToken:           "verify-me",
		JWTSecret:             "test-secret",
		CatalogReloadInterval: time.Minute,
		APIRateBurst:          1000,
		APIRateRefill:         100,
		MetricsUsername:       "prometheus",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	a := &Application{
		cfg:      cfg,
		logger:   log,
		db:       db,
		metrics:  metrics.New(registry),
		registry: registry,
		catalog:  catalog.New(db),
		state:    bot.NewRuntimeState(db),
	}

	disp := &recordingDispatcher{}
	wh := webhook.NewHandler(webhook.HandlerConfig{
		VerifyToken: cfg.VerifyToken,
		Dispatcher:  disp,
		Metrics:     a.metrics,
		Logger:      log,
	})
	apiHandler := api.New(api.Config{
		Fonts:         db,
		Games:         db,
		Catalog:       a.catalog,
		JWTSecret:     cfg.JWTSecret,
		Logger:        log,
		ReloadCatalog: a.reloadCatalog,
		ReloadState:   a.state.Reload,
	})
	a.limiter = newAPILimiter(cfg, a.metrics)
	t.Cleanup(a.limiter.Stop)
	a.router = a.newRouter(wh, apiHandler)

	return &testApp{Application: a, dispatcher: disp}
}

func (a *testApp) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func addFont(t *testing.T, db *storage.DB, name string) {
	t.Helper()
	_, _, err := db.CreateFont(context.Background(), &storage.FontInput{Name: name, Keys: []string{strings.ToLower(name)}})
	require.NoError(t, err)
}

func TestLivenessCheck(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)

	w := app.get(t, "/livez")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", decodeBody(t, w)["status"])

	require.NoError(t, app.db.Close())
	w = app.get(t, "/livez")
	assert.Equal(t, http.StatusOK, w.Code, "liveness must not depend on the database")
}

func TestReadinessCheck_Healthy(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)
	addFont(t, app.db, "NVN Bích Ngọc")
	require.NoError(t, app.reloadCatalog(context.Background()))

	w := app.get(t, "/readyz")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.Contains(t, body, "catalog_loaded_at")

	cat, ok := body["catalog"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 1, cat["fonts"], 0)

	botState, ok := body["bot"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, botState["enabled"])

	features, ok := body["features"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, features["snapshots"])
	assert.Equal(t, false, features["webhook_signature"])
}

func TestReadinessCheck_DatabaseDown(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)
	require.NoError(t, app.db.Close())

	w := app.get(t, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "database unavailable", body["reason"])
}

func TestIndex(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)

	w := app.get(t, "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "nvnfont-bot", body["service"])
	assert.NotEmpty(t, body["version"])
}

func TestMiddleware_RequestIDAndHeaders(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)

	w := app.get(t, "/livez")
	_, err := uuid.Parse(w.Header().Get(requestIDHeader))
	assert.NoError(t, err, "a request id is generated when none is sent")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set("X-Correlation-Id", "corr-42")
	w = httptest.NewRecorder()
	app.Router().ServeHTTP(w, req)
	assert.Equal(t, "corr-42", w.Header().Get(requestIDHeader))
}

func TestRoutes_Webhook(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)

	w := app.get(t, "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=1234")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1234", w.Body.String())

	w = app.get(t, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=1234")
	assert.Equal(t, http.StatusForbidden, w.Code)

	body := `{"object":"page","entry":[{"messaging":[{"sender":{"id":"u1"},"message":{"text":"hi"}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	app.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, webhook.EventReceived, w.Body.String())
	assert.Equal(t, 1, app.dispatcher.count())
}

func TestRoutes_APIMounted(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)
	addFont(t, app.db, "NVN Hải Triều")

	w := app.get(t, "/fonts")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "NVN Hải Triều")

	req := httptest.NewRequest(http.MethodDelete, "/fonts", nil)
	w = httptest.NewRecorder()
	app.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutes_APIRateLimited(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, func(cfg *config.Config) {
		cfg.APIRateBurst = 2
		cfg.APIRateRefill = 0.5
	})

	for range 2 {
		require.Equal(t, http.StatusOK, app.get(t, "/fonts").Code)
	}

	w := app.get(t, "/fonts")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many requests", decodeBody(t, w)["message"])
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.InDelta(t, 1, testutil.ToFloat64(app.metrics.RateLimitedTotal.WithLabelValues("api")), 0)

	assert.Equal(t, http.StatusOK, app.get(t, "/livez").Code, "health routes are not limited")
	assert.Equal(t, http.StatusOK, app.get(t, "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=c").Code)
}

func TestRoutes_Metrics(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)

	w := app.get(t, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nvn_catalog_fonts")
	assert.Contains(t, w.Body.String(), "nvn_bot_enabled")
}

func TestRunCatalogReload(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)
	ctx := context.Background()

	addFont(t, app.db, "NVN Mộc Miên")
	addFont(t, app.db, "NVN Sài Gòn")
	app.runCatalogReload(ctx)

	fonts, _ := app.catalog.Counts()
	assert.Equal(t, 2, fonts)
	assert.InDelta(t, 2, testutil.ToFloat64(app.metrics.CatalogFonts), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(app.metrics.CatalogReloadsTotal.WithLabelValues("success")), 0)
}

func TestRecordStateGauges(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)
	ctx := context.Background()

	require.NoError(t, app.db.SaveBan(ctx, "spammer", "Spam Bot"))
	app.state.Mute("quiet-user")
	require.NoError(t, app.db.SetBotEnabled(ctx, false))
	require.NoError(t, app.state.Reload(ctx))

	app.recordStateGauges(ctx)

	assert.InDelta(t, 1, testutil.ToFloat64(app.metrics.BannedUsers), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(app.metrics.MutedUsers), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(app.metrics.BotEnabled), 0)
}

func TestRunSnapshotUpload(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)
	store := newMemStore()
	app.snapshots = snapshot.New(store, snapshot.Config{
		Prefix:  "snapshots/",
		Retain:  2,
		TempDir: t.TempDir(),
		Metrics: app.metrics,
	})
	addFont(t, app.db, "NVN Thư Pháp")

	app.runSnapshotUpload(context.Background())

	objects, err := store.List(context.Background(), "snapshots/")
	require.NoError(t, err)
	assert.Len(t, objects, 1)
	assert.InDelta(t, 1, testutil.ToFloat64(app.metrics.SnapshotUploadsTotal.WithLabelValues("success")), 0)

	// A fresh volume is seeded from the upload.
	log := logger.NewWithWriter("error", io.Discard)
	dest := filepath.Join(t.TempDir(), "nvnfont.db")
	restoreIfMissing(context.Background(), log, app.snapshots, dest)

	restored, err := storage.New(context.Background(), dest)
	require.NoError(t, err)
	defer restored.Close()
	n, err := restored.CountFonts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRestoreIfMissing_KeepsExistingFile(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	store.objects["snapshots/20260101T000000Z-abcdef12.db.zst"] = []byte("not used")
	mgr := snapshot.New(store, snapshot.Config{Prefix: "snapshots/", TempDir: t.TempDir()})

	dest := filepath.Join(t.TempDir(), "nvnfont.db")
	require.NoError(t, os.WriteFile(dest, []byte("local"), 0o644))

	restoreIfMissing(context.Background(), logger.NewWithWriter("error", io.Discard), mgr, dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))
}

func TestEvery_StopsOnCancel(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		app.every(ctx, "test", 5*time.Millisecond, func(context.Context) { runs.Add(1) })
	}()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop after cancel")
	}
}
