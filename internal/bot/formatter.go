package bot

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/nvnfont/nvnfont-bot-go/internal/catalog"
	"github.com/nvnfont/nvnfont-bot-go/internal/messenger"
	"github.com/nvnfont/nvnfont-bot-go/internal/sliceutil"
)

const (
	// maxCarouselElements is the Messenger generic template limit.
	maxCarouselElements = 10
	maxLinkButtons      = 3
	fontsPerTextMessage = 10
)

// Rand picks uniformly in [0, n).
type Rand interface {
	IntN(n int) int
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int { return rand.IntN(n) }

// Plan is the ordered list of messages to send for one reply.
type Plan []messenger.Message

// Formatter renders font matches as Messenger messages.
type Formatter struct {
	rand    Rand
	pageURL string
}

// NewFormatter creates a Formatter. r may be nil for the global source.
// pageURL is the tap target of fonts without a post URL.
func NewFormatter(r Rand, pageURL string) *Formatter {
	if r == nil {
		r = defaultRand{}
	}
	return &Formatter{rand: r, pageURL: pageURL}
}

// Format picks the presentation by match count: one font gets an image and
// a button card, up to ten get a carousel, more degrade to text batches.
func (f *Formatter) Format(fonts []catalog.Font, profile *messenger.UserProfile) Plan {
	name := profile.DisplayName()
	switch n := len(fonts); {
	case n == 0:
		return nil
	case n == 1:
		return f.single(fonts[0], name)
	case n <= maxCarouselElements:
		return f.carousel(fonts)
	default:
		return f.text(fonts, name)
	}
}

func (f *Formatter) single(font catalog.Font, name string) Plan {
	var plan Plan
	if img := f.pick(font.Images); img != "" {
		plan = append(plan, messenger.ImageMessage(img))
	}

	link := f.pick(font.Links)
	shown := link
	if shown == "" {
		shown = msgUpdating
	}
	text := fmt.Sprintf(msgSingleFont, name, font.Name, shown)

	var buttons []messenger.Button
	if link != "" {
		buttons = append(buttons, messenger.URLButton("Tải xuống", f.pick(font.Links)))
	}
	buttons = append(buttons, messenger.PostbackButton("Font khác", messenger.PayloadListFont))
	return append(plan, messenger.ButtonMessage(text, buttons))
}

func (f *Formatter) carousel(fonts []catalog.Font) Plan {
	elements := make([]messenger.Element, 0, len(fonts))
	for _, font := range fonts {
		img := f.pick(font.Images)
		if img == "" {
			img = f.placeholderImage()
		}
		target := font.PostURL
		if target == "" {
			target = f.pageURL
		}

		el := messenger.Element{
			Title:    font.Name,
			ImageURL: img,
			Subtitle: font.Description,
		}
		if target != "" {
			el.DefaultAction = messenger.TallWebview(target)
		}
		for i, link := range font.Links {
			if i == maxLinkButtons {
				break
			}
			el.Buttons = append(el.Buttons, messenger.URLButton(fmt.Sprintf("Link %d", i+1), link))
		}
		elements = append(elements, el)
	}
	return Plan{messenger.GenericMessage(elements)}
}

func (f *Formatter) text(fonts []catalog.Font, name string) Plan {
	items := make([]string, 0, len(fonts))
	for _, font := range fonts {
		link := f.pick(font.Links)
		if link == "" {
			link = msgUpdating
		}
		items = append(items, fmt.Sprintf(msgFontItem, font.Name, link))
	}

	plan := Plan{messenger.TextMessage(fmt.Sprintf(msgManyFonts, name))}
	for _, chunk := range sliceutil.Chunk(items, fontsPerTextMessage) {
		plan = append(plan, messenger.TextMessage(strings.Join(chunk, "\n\n")))
	}
	return plan
}

// pick returns a uniformly random element, or "" for an empty slice.
func (f *Formatter) pick(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[f.rand.IntN(len(values))]
}

func (f *Formatter) placeholderImage() string {
	return fmt.Sprintf("https://picsum.photos/600/40%d", f.rand.IntN(10))
}
