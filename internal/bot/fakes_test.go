package bot

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/nvnfont/nvnfont-bot-go/internal/catalog"
	"github.com/nvnfont/nvnfont-bot-go/internal/crawler"
	"github.com/nvnfont/nvnfont-bot-go/internal/ctxutil"
	"github.com/nvnfont/nvnfont-bot-go/internal/logger"
	"github.com/nvnfont/nvnfont-bot-go/internal/messenger"
	"github.com/nvnfont/nvnfont-bot-go/internal/storage"
)

type sentMessage struct {
	To  string
	Msg messenger.Message
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	failAt map[int]bool // 0-based call index
	calls  int
	routes []string // ctxutil route of each call
}

func (f *fakeSender) Send(ctx context.Context, to string, msg messenger.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.calls
	f.calls++
	f.routes = append(f.routes, ctxutil.GetRoute(ctx))
	if f.failAt[idx] {
		return errors.New("send failed")
	}
	f.sent = append(f.sent, sentMessage{To: to, Msg: msg})
	return nil
}

func (f *fakeSender) to(id string) []messenger.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []messenger.Message
	for _, s := range f.sent {
		if s.To == id {
			out = append(out, s.Msg)
		}
	}
	return out
}

func (f *fakeSender) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeProfiles struct {
	profiles map[string]*messenger.UserProfile
	calls    int
}

func (f *fakeProfiles) Profile(_ context.Context, psid string) (*messenger.UserProfile, error) {
	f.calls++
	if p, ok := f.profiles[psid]; ok {
		return p, nil
	}
	return nil, errors.New("unknown psid")
}

type fakeStore struct {
	mu         sync.Mutex
	admins     []string
	enabled    bool
	bans       map[string]string
	saved      []string
	removed    []string
	getBanErr  error
	listAdmErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{enabled: true, bans: map[string]string{}}
}

func (s *fakeStore) ListAdmins(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listAdmErr != nil {
		return nil, s.listAdmErr
	}
	return append([]string(nil), s.admins...), nil
}

func (s *fakeStore) BotEnabled(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled, nil
}

func (s *fakeStore) GetBan(_ context.Context, id string) (*storage.Ban, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getBanErr != nil {
		return nil, s.getBanErr
	}
	name, ok := s.bans[id]
	if !ok {
		return nil, nil
	}
	return &storage.Ban{SenderID: id, Name: name}, nil
}

func (s *fakeStore) AddAdmin(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins = append(s.admins, id)
	return nil
}

func (s *fakeStore) RemoveAdmin(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.admins[:0]
	for _, a := range s.admins {
		if a != id {
			out = append(out, a)
		}
	}
	s.admins = out
	return nil
}

func (s *fakeStore) SetBotEnabled(_ context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
	return nil
}

func (s *fakeStore) SaveBan(_ context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bans[id] = name
	s.saved = append(s.saved, id)
	return nil
}

func (s *fakeStore) RemoveBan(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.bans[id]
	delete(s.bans, id)
	s.removed = append(s.removed, id)
	return ok, nil
}

func (s *fakeStore) ListBans(context.Context) ([]*storage.Ban, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*storage.Ban, 0, len(s.bans))
	for id, name := range s.bans {
		out = append(out, &storage.Ban{SenderID: id, Name: name})
	}
	return out, nil
}

type fakeSource struct {
	fonts     []*storage.Font
	responses []*storage.Response
}

func (f *fakeSource) ListFonts(context.Context) ([]*storage.Font, error) { return f.fonts, nil }

func (f *fakeSource) ListResponses(context.Context) ([]*storage.Response, error) {
	return f.responses, nil
}

type fakeCrawlers struct {
	mu       sync.Mutex
	calls    []string
	videos   []crawler.Video
	disease  crawler.Disease
	search   []string
	lottery  string
	failWith error
}

func (f *fakeCrawlers) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeCrawlers) Lucky(string) string {
	f.record("lucky")
	return "🍀 lucky"
}

func (f *fakeCrawlers) Lottery(context.Context) (string, error) {
	f.record("xsmb")
	return f.lottery, f.failWith
}

func (f *fakeCrawlers) YouTube(_ context.Context, q string) ([]crawler.Video, error) {
	f.record("youtube:" + q)
	return f.videos, f.failWith
}

func (f *fakeCrawlers) Disease(context.Context, string) (crawler.Disease, error) {
	f.record("covid")
	return f.disease, f.failWith
}

func (f *fakeCrawlers) Search(_ context.Context, text string) ([]string, error) {
	f.record("search:" + text)
	return f.search, f.failWith
}

type routeCounter struct {
	mu     sync.Mutex
	routes []string
}

func (r *routeCounter) RecordRoute(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

// firstRand always picks index 0.
type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

func testLogger() *logger.Logger {
	return logger.NewWithWriter("error", io.Discard)
}

type fixture struct {
	d        *Dispatcher
	sender   *fakeSender
	profiles *fakeProfiles
	store    *fakeStore
	state    *RuntimeState
	crawlers *fakeCrawlers
	routes   *routeCounter
}

const (
	adminID = "admin-1"
	userID  = "user-1"
)

func parkaFont() *storage.Font {
	return &storage.Font{
		ID:          1,
		Name:        "NVN Parka",
		Description: "Font tiêu đề",
		PostURL:     "https://fb.com/post/parka",
		Keys:        []string{"parka"},
		Links:       []string{"https://dl/parka-1", "https://dl/parka-2"},
		Images:      []string{"https://img/parka.png"},
	}
}

func newFixture(t *testing.T, src *fakeSource) *fixture {
	t.Helper()
	if src == nil {
		src = &fakeSource{fonts: []*storage.Font{parkaFont()}}
	}
	cat := catalog.New(src)
	if err := cat.Reload(context.Background()); err != nil {
		t.Fatalf("reload catalog: %v", err)
	}

	store := newFakeStore()
	store.admins = []string{adminID}
	state := NewRuntimeState(store)
	if err := state.Reload(context.Background()); err != nil {
		t.Fatalf("reload state: %v", err)
	}

	f := &fixture{
		sender: &fakeSender{},
		profiles: &fakeProfiles{profiles: map[string]*messenger.UserProfile{
			adminID: {ID: adminID, Name: "Admin"},
			userID:  {ID: userID, Name: "Lan"},
		}},
		store:    store,
		state:    state,
		crawlers: &fakeCrawlers{},
		routes:   &routeCounter{},
	}
	f.d = NewDispatcher(Config{
		Location:         time.UTC,
		GreetingImageURL: "https://img/greeting.gif",
		PageURL:          "https://www.facebook.com/NVNFONT/",
	}, Deps{
		Store:    store,
		State:    state,
		Catalog:  cat,
		Sender:   f.sender,
		Profiles: f.profiles,
		Crawlers: f.crawlers,
		Logger:   testLogger(),
		Metrics:  f.routes,
		Rand:     firstRand{},
	})
	return f
}

func texts(msgs []messenger.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}
