package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nvnfont/nvnfont-bot-go/internal/catalog"
	"github.com/nvnfont/nvnfont-bot-go/internal/ctxutil"
	"github.com/nvnfont/nvnfont-bot-go/internal/logger"
	"github.com/nvnfont/nvnfont-bot-go/internal/messenger"
)

// Catalog answers font and canned response lookups.
type Catalog interface {
	Lookup(text string) catalog.Match
	FontList() []string
}

// Store is the persistence the dispatcher needs.
type Store interface {
	StateStore
	BanStore
	AdminStore
}

// Config holds the dispatcher's presentation settings.
type Config struct {
	Location         *time.Location
	GreetingImageURL string
	PageURL          string
}

// Deps are the dispatcher's collaborators.
type Deps struct {
	Store    Store
	State    *RuntimeState
	Catalog  Catalog
	Sender   Sender
	Profiles ProfileFetcher
	Crawlers Crawlers
	Logger   *logger.Logger
	Metrics  RouteRecorder
	Rand     Rand
}

// Dispatcher routes one inbound event to its replies.
type Dispatcher struct {
	cfg       Config
	state     *RuntimeState
	bans      *BanGate
	catalog   Catalog
	profiles  ProfileFetcher
	crawlers  Crawlers
	out       *Outbox
	formatter *Formatter
	registry  *Registry
	rand      Rand
	log       *logger.Logger
	metrics   RouteRecorder
	now       func() time.Time
}

// NewDispatcher wires a dispatcher with the keyword handlers in priority
// order: @lucky, @nvn, @xsmb, @ytb, @covid.
func NewDispatcher(cfg Config, deps Deps) *Dispatcher {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if deps.Rand == nil {
		deps.Rand = defaultRand{}
	}
	log := deps.Logger.WithModule("dispatcher")
	out := NewOutbox(deps.Sender, deps.Logger)

	registry := NewRegistry(
		RecoveryMiddleware(log),
		MetricsMiddleware(deps.Metrics),
		LoggingMiddleware(log),
	)
	registry.Register(NewLuckyHandler(deps.Crawlers))
	registry.Register(NewAdminHandler(deps.Store, deps.State, deps.Profiles, out))
	registry.Register(NewLotteryHandler(deps.Crawlers))
	registry.Register(NewYouTubeHandler(deps.Crawlers, deps.Rand))
	registry.Register(NewDiseaseHandler(deps.Crawlers))

	return &Dispatcher{
		cfg:       cfg,
		state:     deps.State,
		bans:      NewBanGate(deps.Store),
		catalog:   deps.Catalog,
		profiles:  deps.Profiles,
		crawlers:  deps.Crawlers,
		out:       out,
		formatter: NewFormatter(deps.Rand, cfg.PageURL),
		registry:  registry,
		rand:      deps.Rand,
		log:       log,
		metrics:   deps.Metrics,
		now:       time.Now,
	}
}

// mutedPostbacks are processed for muted senders so they can unmute.
var mutedPostbacks = map[string]bool{
	messenger.PayloadToggleBot:  true,
	messenger.PayloadGetStarted: true,
	messenger.PayloadRestartBot: true,
}

// quickReplyPostbacks maps greeting quick replies onto the postback table.
var quickReplyPostbacks = map[string]string{
	PayloadBuyFont:            messenger.PayloadBotBuy,
	PayloadHowToUse:           messenger.PayloadBotTutorial,
	messenger.PayloadListFont: messenger.PayloadListFont,
}

// Dispatch handles ev. Replies are sent through the outbound client; send
// failures are logged and never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	if ev.SenderID == "" {
		return
	}
	ctx = ctxutil.WithSenderID(ctx, ev.SenderID)

	check, err := d.bans.Check(ctx, ev.SenderID)
	if err != nil {
		d.log.WithError(err).WarnContext(ctx, "Ban check failed, treating sender as not banned")
	}
	if check.Banned {
		ctx = d.route(ctx, "banned")
		d.out.SendText(ctx, ev.SenderID, check.Messages...)
		return
	}

	snap := d.state.Snapshot(ev.SenderID)
	if !snap.BotEnabled && !snap.IsAdmin {
		d.route(ctx, "disabled")
		return
	}
	if snap.IsMuted && !snap.IsAdmin && !allowedWhileMuted(ev) {
		d.route(ctx, "muted")
		return
	}

	s := &Session{SenderID: ev.SenderID, Snapshot: snap, out: d.out, profiles: d.profiles}
	switch {
	case ev.QuickReplyPayload != "":
		d.handleQuickReply(ctx, s, ev.QuickReplyPayload)
	case ev.PostbackPayload != "":
		d.handlePostback(ctx, s, ev.PostbackPayload)
	case strings.TrimSpace(ev.Text) != "":
		d.handleText(ctx, s, ev.Text)
	}
}

func allowedWhileMuted(ev Event) bool {
	if ev.QuickReplyPayload != "" {
		return true
	}
	return mutedPostbacks[ev.PostbackPayload]
}

// route counts the route and tags ctx with it for logs and Sentry.
func (d *Dispatcher) route(ctx context.Context, route string) context.Context {
	if d.metrics != nil {
		d.metrics.RecordRoute(route)
	}
	ctx = ctxutil.WithRoute(ctx, route)
	d.log.DebugContext(ctx, "Event routed")
	return ctx
}

func (d *Dispatcher) handleQuickReply(ctx context.Context, s *Session, payload string) {
	switch payload {
	case PayloadOnBot:
		ctx = d.route(ctx, "unmute")
		s.ReplyText(ctx, msgBotOnForUser)
		d.state.Unmute(s.SenderID)
	case PayloadOffBot:
		ctx = d.route(ctx, "mute")
		s.ReplyText(ctx, msgBotOffForUser)
		d.state.Mute(s.SenderID)
	default:
		if postback, ok := quickReplyPostbacks[payload]; ok {
			d.handlePostback(ctx, s, postback)
			return
		}
		d.route(ctx, "quick_reply_ignored")
	}
}

func (d *Dispatcher) handlePostback(ctx context.Context, s *Session, payload string) {
	ctx = d.route(ctx, "postback")
	page := d.cfg.PageURL

	switch payload {
	case messenger.PayloadGetStarted, messenger.PayloadRestartBot:
		d.sendGreetings(ctx, s)
	case messenger.PayloadBotBuy:
		s.ReplyText(ctx, linkBuy+page)
	case messenger.PayloadListFontImageEnd:
		s.ReplyText(ctx, linkNewest+page)
	case messenger.PayloadListFontImage:
		s.ReplyText(ctx, linkDemo+page)
	case messenger.PayloadBotTutorial:
		s.ReplyText(ctx, linkTutorial+page)
	case messenger.PayloadPriceService:
		s.ReplyText(ctx, linkPrice+page)
	case messenger.PayloadListFont:
		d.sendFontList(ctx, s)
	case messenger.PayloadToggleBot:
		d.sendToggle(ctx, s)
	default:
		s.ReplyText(ctx, linkPage+page)
	}
}

func (d *Dispatcher) sendGreetings(ctx context.Context, s *Session) {
	name := s.Name(ctx)
	msgs := []messenger.Message{messenger.TextMessage(GreetingText(name, d.now().In(d.cfg.Location)))}
	if d.cfg.GreetingImageURL != "" {
		msgs = append(msgs, messenger.ImageMessage(d.cfg.GreetingImageURL))
	}
	msgs = append(msgs, messenger.QuickReplyMessage(fmt.Sprintf(msgGreetingPrompt, name), []messenger.QuickReply{
		messenger.TextQuickReply("👋 Mua tồng hợp font", PayloadBuyFont),
		messenger.TextQuickReply("📚 Hướng dẫn sử dụng", PayloadHowToUse),
		messenger.TextQuickReply("📝 Danh sách font", messenger.PayloadListFont),
	}))
	s.Reply(ctx, msgs...)
}

func (d *Dispatcher) sendFontList(ctx context.Context, s *Session) {
	s.ReplyText(ctx, d.catalog.FontList()...)
	s.ReplyText(ctx, fmt.Sprintf(msgFontList, s.Name(ctx)))
}

func (d *Dispatcher) sendToggle(ctx context.Context, s *Session) {
	name := s.Name(ctx)
	if d.state.IsMuted(s.SenderID) {
		s.Reply(ctx, messenger.QuickReplyMessage(fmt.Sprintf(msgToggleMuted, name),
			[]messenger.QuickReply{messenger.TextQuickReply("🟢 Bật bot", PayloadOnBot)}))
		return
	}
	s.Reply(ctx, messenger.QuickReplyMessage(fmt.Sprintf(msgToggleActive, name),
		[]messenger.QuickReply{messenger.TextQuickReply("🔴 Tắt bot", PayloadOffBot)}))
}

func (d *Dispatcher) handleText(ctx context.Context, s *Session, text string) {
	match := d.catalog.Lookup(text)

	if len(match.Fonts) > 0 {
		ctx = d.route(ctx, "font")
		s.Reply(ctx, d.formatter.Format(match.Fonts, s.Profile(ctx))...)
		return
	}

	if len(match.Responses) > 0 {
		ctx = d.route(ctx, "response")
		group := match.Responses[d.rand.IntN(len(match.Responses))]
		if len(group.Messages) > 0 {
			s.ReplyText(ctx, group.Messages[d.rand.IntN(len(group.Messages))])
		}
		return
	}

	if d.registry.Dispatch(ctx, s, text) {
		return
	}

	ctx = d.route(ctx, "search")
	results, err := d.crawlers.Search(ctx, text)
	if err != nil {
		d.log.WithError(err).WarnContext(ctx, "Web search failed")
		return
	}
	s.ReplyText(ctx, results...)
}
