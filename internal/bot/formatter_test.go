package bot

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvnfont/nvnfont-bot-go/internal/catalog"
	"github.com/nvnfont/nvnfont-bot-go/internal/messenger"
)

func makeFonts(n int) []catalog.Font {
	fonts := make([]catalog.Font, 0, n)
	for i := range n {
		fonts = append(fonts, catalog.Font{
			ID:    int64(i + 1),
			Name:  fmt.Sprintf("Font %d", i+1),
			Links: []string{fmt.Sprintf("https://dl/%d", i+1)},
		})
	}
	return fonts
}

func TestFormat_Empty(t *testing.T) {
	t.Parallel()
	assert.Nil(t, NewFormatter(firstRand{}, "").Format(nil, nil))
}

func TestFormat_SingleWithoutImage(t *testing.T) {
	t.Parallel()
	plan := NewFormatter(firstRand{}, "").Format(makeFonts(1), &messenger.UserProfile{Name: "Lan"})

	require.Len(t, plan, 1)
	card := plan[0].Attachment.Payload.(messenger.TemplatePayload)
	assert.Equal(t, fmt.Sprintf(msgSingleFont, "Lan", "Font 1", "https://dl/1"), card.Text)
	require.Len(t, card.Buttons, 2)
	assert.Equal(t, "https://dl/1", card.Buttons[0].URL)
	assert.Equal(t, messenger.PayloadListFont, card.Buttons[1].Payload)
}

func TestFormat_SingleWithoutLink(t *testing.T) {
	t.Parallel()
	fonts := []catalog.Font{{Name: "Font X", Images: []string{"https://img/x.png"}}}

	plan := NewFormatter(firstRand{}, "").Format(fonts, nil)

	require.Len(t, plan, 2)
	card := plan[1].Attachment.Payload.(messenger.TemplatePayload)
	assert.Contains(t, card.Text, "Chào bạn")
	assert.Contains(t, card.Text, "Link download: "+msgUpdating)
	require.Len(t, card.Buttons, 1, "no download button without a link")
	assert.Equal(t, "postback", card.Buttons[0].Type)
}

func TestFormat_Carousel(t *testing.T) {
	t.Parallel()
	fonts := makeFonts(2)
	fonts[0].Links = []string{"a", "b", "c", "d"}
	fonts[0].PostURL = "https://fb.com/post/1"
	fonts[0].Images = []string{"https://img/1.png"}

	plan := NewFormatter(firstRand{}, "https://page").Format(fonts, nil)

	require.Len(t, plan, 1)
	payload := plan[0].Attachment.Payload.(messenger.TemplatePayload)
	assert.Equal(t, "generic", payload.TemplateType)
	require.Len(t, payload.Elements, 2)

	first, second := payload.Elements[0], payload.Elements[1]
	assert.Equal(t, "https://img/1.png", first.ImageURL)
	assert.Equal(t, "https://fb.com/post/1", first.DefaultAction.URL)
	require.Len(t, first.Buttons, maxLinkButtons)
	assert.Equal(t, "Link 3", first.Buttons[2].Title)

	assert.Equal(t, "https://picsum.photos/600/400", second.ImageURL)
	assert.Equal(t, "https://page", second.DefaultAction.URL)
}

func TestFormat_MessageCounts(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n    int
		want int
	}{
		{1, 1},
		{2, 1},
		{10, 1},
		{11, 3},
		{20, 3},
		{21, 4},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			t.Parallel()
			plan := NewFormatter(firstRand{}, "").Format(makeFonts(tt.n), nil)
			assert.Len(t, plan, tt.want)
		})
	}
}

func TestFormat_TextBatches(t *testing.T) {
	t.Parallel()
	plan := NewFormatter(firstRand{}, "").Format(makeFonts(12), &messenger.UserProfile{FirstName: "Văn", LastName: "An"})

	require.Len(t, plan, 3)
	assert.Equal(t, fmt.Sprintf(msgManyFonts, "Văn An"), plan[0].Text)
	assert.Len(t, strings.Split(plan[1].Text, "\n\n"), 10)
	assert.Equal(t, "Tên font: Font 11\nLink download: https://dl/11\n\nTên font: Font 12\nLink download: https://dl/12", plan[2].Text)
}
