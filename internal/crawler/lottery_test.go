package crawler

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lotteryPage = `<html><body>
<h2>XSMB ngày 09/03/2024</h2>
<table class="table-result">
  <tr><th>G.ĐB</th><td><span>12345</span></td></tr>
  <tr><th>G.1</th><td><span>67890</span></td></tr>
  <tr><th>G.2</th><td><span>11111</span><span>22222</span></td></tr>
  <tr><th></th><td></td></tr>
</table>
</body></html>`

func TestParseLottery(t *testing.T) {
	t.Parallel()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(lotteryPage))
	require.NoError(t, err)

	got, err := parseLottery(doc)
	require.NoError(t, err)
	assert.Equal(t, "XSMB ngày 09/03/2024\nG.ĐB: 12345\nG.1: 67890\nG.2: 11111 - 22222", got)
}

func TestParseLottery_PlainCells(t *testing.T) {
	t.Parallel()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<table><tr><td>Đặc biệt</td><td>54321</td></tr><tr><td>Giải 7</td><td>11 22 33 44</td></tr></table>`))
	require.NoError(t, err)

	got, err := parseLottery(doc)
	require.NoError(t, err)
	assert.Equal(t, "Kết quả xổ số miền Bắc\nĐặc biệt: 54321\nGiải 7: 11 - 22 - 33 - 44", got)
}

func TestParseLottery_NoTable(t *testing.T) {
	t.Parallel()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<p>bảo trì</p>`))
	require.NoError(t, err)

	_, err = parseLottery(doc)
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestLottery_SharesConcurrentFetch(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	release := make(chan struct{})
	c, _ := newTestCrawler(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(lotteryPage))
	}))
	counter := &dedupCounter{}
	c = New(c.client, c.cfg, counter)

	var wg sync.WaitGroup
	for range 5 {
		wg.Go(func() {
			got, err := c.Lottery(context.Background())
			assert.NoError(t, err)
			assert.Contains(t, got, "G.ĐB: 12345")
		})
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 5, counter.counts["xsmb"])
}
