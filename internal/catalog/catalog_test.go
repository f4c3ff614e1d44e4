package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvnfont/nvnfont-bot-go/internal/storage"
)

type fakeSource struct {
	fonts     []*storage.Font
	responses []*storage.Response
	err       error
}

func (f *fakeSource) ListFonts(context.Context) ([]*storage.Font, error) {
	return f.fonts, f.err
}

func (f *fakeSource) ListResponses(context.Context) ([]*storage.Response, error) {
	return f.responses, f.err
}

func newLoaded(t *testing.T, src *fakeSource) *Catalog {
	t.Helper()
	c := New(src)
	require.NoError(t, c.Reload(context.Background()))
	return c
}

func TestLookup_Fonts(t *testing.T) {
	t.Parallel()

	c := newLoaded(t, &fakeSource{fonts: []*storage.Font{
		{ID: 1, Name: "NVN Parka", Keys: []string{"parka"}, Links: []string{"https://l/1"}},
		{ID: 2, Name: "NVN Bông Hồng", Keys: []string{"bong hong"}},
		{ID: 3, Name: "SVN Gilroy"},
	}})

	m := c.Lookup("Tôi muốn tải font NVN Parka")
	require.Len(t, m.Fonts, 1)
	assert.Equal(t, "NVN Parka", m.Fonts[0].Name)
	assert.Equal(t, []string{"https://l/1"}, m.Fonts[0].Links)

	m = c.Lookup("cho mình xin font bông hồng với gilroy")
	require.Len(t, m.Fonts, 1, "gilroy alone is not the full name key")
	assert.Equal(t, int64(2), m.Fonts[0].ID)

	m = c.Lookup("svn gilroy và parka")
	assert.Len(t, m.Fonts, 2)

	assert.Empty(t, c.Lookup("").Fonts)
	assert.Empty(t, c.Lookup("@lucky").Fonts)
}

func TestLookup_SubstringMatch(t *testing.T) {
	t.Parallel()

	c := newLoaded(t, &fakeSource{fonts: []*storage.Font{
		{ID: 1, Name: "NVN Parka", Keys: []string{"parka"}},
	}})

	for _, text := range []string{
		"cho xin font nvnparka",
		"mấy font parkas đâu",
		"PARKA",
	} {
		m := c.Lookup(text)
		require.Len(t, m.Fonts, 1, text)
		assert.Equal(t, int64(1), m.Fonts[0].ID)
	}
	assert.Empty(t, c.Lookup("par ka").Fonts)
}

func TestLookup_Responses(t *testing.T) {
	t.Parallel()

	c := newLoaded(t, &fakeSource{responses: []*storage.Response{
		{Keys: []string{"xin chào", "hello"}, Messages: []string{"Chào bạn!"}},
		{Keys: []string{"cảm ơn"}, Messages: []string{"Không có gì!"}},
		{Keys: []string{"empty"}},
	}})

	m := c.Lookup("Xin chao shop")
	require.Len(t, m.Responses, 1)
	assert.Equal(t, []string{"Chào bạn!"}, m.Responses[0].Messages)

	assert.Empty(t, c.Lookup("empty").Responses, "groups without messages are skipped")

	_, responses := c.Counts()
	assert.Equal(t, 2, responses)
}

func TestReload_ErrorKeepsSnapshot(t *testing.T) {
	t.Parallel()

	src := &fakeSource{fonts: []*storage.Font{{ID: 1, Name: "NVN Parka"}}}
	c := newLoaded(t, src)
	loadedAt := c.LoadedAt()

	src.err = errors.New("db closed")
	require.Error(t, c.Reload(context.Background()))

	fonts, _ := c.Counts()
	assert.Equal(t, 1, fonts)
	assert.Equal(t, loadedAt, c.LoadedAt())
}

func TestFontList_Chunked(t *testing.T) {
	t.Parallel()

	var fonts []*storage.Font
	for i := range 120 {
		fonts = append(fonts, &storage.Font{ID: int64(i + 1), Name: fmt.Sprintf("Font %03d", i+1)})
	}
	c := newLoaded(t, &fakeSource{fonts: fonts})

	list := c.FontList()
	require.Len(t, list, 3)
	assert.Len(t, strings.Split(list[0], "\n"), fontListLinesPerMessage)
	assert.Len(t, strings.Split(list[2], "\n"), 20)
	assert.True(t, strings.HasPrefix(list[0], "1. Font 001"))
	assert.True(t, strings.HasPrefix(list[2], "101. Font 101"))

	assert.Nil(t, New(&fakeSource{}).FontList())
}
