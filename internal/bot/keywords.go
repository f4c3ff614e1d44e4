package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/nvnfont/nvnfont-bot-go/internal/crawler"
	"github.com/nvnfont/nvnfont-bot-go/internal/messenger"
	"github.com/nvnfont/nvnfont-bot-go/internal/stringutil"
)

// Keyword triggers, matched as substrings of the raw message.
const (
	KeywordLucky   = "@lucky"
	KeywordAdmin   = "@nvn"
	KeywordLottery = "@xsmb"
	KeywordYouTube = "@ytb"
	KeywordCovid   = "@covid"
)

// Crawlers are the external lookups behind keyword commands.
type Crawlers interface {
	Lucky(senderID string) string
	Lottery(ctx context.Context) (string, error)
	YouTube(ctx context.Context, query string) ([]crawler.Video, error)
	Disease(ctx context.Context, text string) (crawler.Disease, error)
	Search(ctx context.Context, text string) ([]string, error)
}

type keywordHandler struct {
	name    string
	keyword string
}

func (k keywordHandler) Name() string { return k.name }

func (k keywordHandler) CanHandle(text string) bool { return strings.Contains(text, k.keyword) }

type luckyHandler struct {
	keywordHandler
	crawlers Crawlers
}

// NewLuckyHandler answers "@lucky" with the sender's numbers of the day.
func NewLuckyHandler(c Crawlers) Handler {
	return &luckyHandler{keywordHandler{"lucky", KeywordLucky}, c}
}

func (h *luckyHandler) Handle(ctx context.Context, s *Session, _ string) error {
	s.ReplyText(ctx, h.crawlers.Lucky(s.SenderID))
	return nil
}

type lotteryHandler struct {
	keywordHandler
	crawlers Crawlers
}

// NewLotteryHandler answers "@xsmb" with the latest northern lottery result.
func NewLotteryHandler(c Crawlers) Handler {
	return &lotteryHandler{keywordHandler{"xsmb", KeywordLottery}, c}
}

func (h *lotteryHandler) Handle(ctx context.Context, s *Session, _ string) error {
	result, err := h.crawlers.Lottery(ctx)
	if err != nil {
		return fmt.Errorf("lottery: %w", err)
	}
	s.ReplyText(ctx, result)
	return nil
}

type youtubeHandler struct {
	keywordHandler
	crawlers Crawlers
	rand     Rand
}

// NewYouTubeHandler answers "@ytb <query>" with a video carousel.
func NewYouTubeHandler(c Crawlers, r Rand) Handler {
	if r == nil {
		r = defaultRand{}
	}
	return &youtubeHandler{keywordHandler{"youtube", KeywordYouTube}, c, r}
}

func (h *youtubeHandler) Handle(ctx context.Context, s *Session, text string) error {
	query := stringutil.After(text, KeywordYouTube)
	if query == "" {
		s.ReplyText(ctx, msgYouTubeUsage)
		return nil
	}

	videos, err := h.crawlers.YouTube(ctx, query)
	if err != nil {
		return fmt.Errorf("youtube: %w", err)
	}
	if len(videos) == 0 {
		s.ReplyText(ctx, msgNoVideo)
		return nil
	}
	s.Reply(ctx, messenger.GenericMessage(videoElements(videos, h.rand)))
	return nil
}

func videoElements(videos []crawler.Video, r Rand) []messenger.Element {
	if len(videos) > maxCarouselElements {
		videos = videos[:maxCarouselElements]
	}
	elements := make([]messenger.Element, 0, len(videos))
	for _, v := range videos {
		img := v.Thumbnail
		if img == "" {
			img = fmt.Sprintf("https://picsum.photos/600/40%d", r.IntN(10))
		}
		target := v.URL
		if target == "" {
			target = "fb.com/nvnfont"
		}
		elements = append(elements, messenger.Element{
			Title:         v.Title,
			ImageURL:      img,
			Subtitle:      v.Duration,
			DefaultAction: messenger.TallWebview(target),
			Buttons:       []messenger.Button{messenger.URLButton("Xem Video", target)},
		})
	}
	return elements
}

type diseaseHandler struct {
	keywordHandler
	crawlers Crawlers
}

// NewDiseaseHandler answers "@covid" and "@covid tại <country>".
func NewDiseaseHandler(c Crawlers) Handler {
	return &diseaseHandler{keywordHandler{"covid", KeywordCovid}, c}
}

func (h *diseaseHandler) Handle(ctx context.Context, s *Session, text string) error {
	report, err := h.crawlers.Disease(ctx, text)
	if err != nil {
		return fmt.Errorf("disease: %w", err)
	}
	switch report.Type {
	case crawler.DiseaseSingleLocation:
		s.ReplyText(ctx, report.Data)
	case crawler.DiseaseAllLocation:
		s.ReplyText(ctx, report.Data, msgCovidWorld, msgCovidHint, msgCovidExample)
	default:
		return errSkipped
	}
	return nil
}
