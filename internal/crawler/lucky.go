package crawler

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"strings"
	"time"
)

const luckyCount = 6

// LuckyNumbers returns luckyCount distinct numbers in [0, 99], sorted.
// The result is stable for one sender within one calendar day.
func LuckyNumbers(senderID string, day time.Time) []int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(senderID))
	_, _ = h.Write([]byte(day.Format(time.DateOnly)))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	nums := rng.Perm(100)[:luckyCount]
	slices.Sort(nums)
	return nums
}

// Lucky renders today's lucky numbers for senderID.
func (c *Crawler) Lucky(senderID string) string {
	today := c.now().In(c.cfg.Location)
	nums := LuckyNumbers(senderID, today)
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%02d", n)
	}
	return fmt.Sprintf("🍀 Con số may mắn hôm nay (%s) của bạn là: %s",
		today.Format("02/01/2006"), strings.Join(parts, " - "))
}
