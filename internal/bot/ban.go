package bot

import (
	"context"
	"fmt"

	"github.com/nvnfont/nvnfont-bot-go/internal/storage"
)

// BanStore looks up ban entries.
type BanStore interface {
	GetBan(ctx context.Context, senderID string) (*storage.Ban, error)
}

// BanCheck is the outcome of a ban lookup.
type BanCheck struct {
	Banned   bool
	Messages []string
}

// BanGate decides whether a sender may use the bot at all.
type BanGate struct {
	store BanStore
}

// NewBanGate creates a BanGate over store.
func NewBanGate(store BanStore) *BanGate {
	return &BanGate{store: store}
}

// Check reports whether senderID is banned and what to tell them.
// On a storage error the sender is reported as not banned.
func (g *BanGate) Check(ctx context.Context, senderID string) (BanCheck, error) {
	ban, err := g.store.GetBan(ctx, senderID)
	if err != nil {
		return BanCheck{}, fmt.Errorf("check ban: %w", err)
	}
	if ban == nil {
		return BanCheck{}, nil
	}
	return BanCheck{Banned: true, Messages: []string{msgBanned, msgBanContact}}, nil
}
