// Package bot routes inbound Messenger events to replies: the ban and mute
// gates, postbacks, font recommendations, canned responses, keyword
// commands and the web search fallback.
package bot

import (
	"context"
	"errors"

	"github.com/nvnfont/nvnfont-bot-go/internal/messenger"
)

// Handler is a keyword command such as "@xsmb".
type Handler interface {
	// Name labels the handler in logs and metrics.
	Name() string

	// CanHandle reports whether the raw message text triggers this handler.
	CanHandle(text string) bool

	// Handle replies to text through s. Errors are logged by the registry.
	Handle(ctx context.Context, s *Session, text string) error
}

// ProfileFetcher resolves a sender's public profile.
type ProfileFetcher interface {
	Profile(ctx context.Context, psid string) (*messenger.UserProfile, error)
}

// Session is the per-event reply context. The sender's profile is fetched
// at most once per event and never cached beyond it.
type Session struct {
	SenderID string
	Snapshot Snapshot

	out      *Outbox
	profiles ProfileFetcher

	profile     *messenger.UserProfile
	profileDone bool
}

// Profile returns the sender's profile, or nil if it cannot be fetched.
func (s *Session) Profile(ctx context.Context) *messenger.UserProfile {
	if s.profileDone {
		return s.profile
	}
	s.profileDone = true
	p, err := s.profiles.Profile(ctx, s.SenderID)
	if err != nil {
		s.out.log.WithError(err).WarnContext(ctx, "Failed to fetch user profile")
		return nil
	}
	s.profile = p
	return p
}

// Name returns the sender's display name.
func (s *Session) Name(ctx context.Context) string {
	return s.Profile(ctx).DisplayName()
}

// Reply sends msgs to the sender.
func (s *Session) Reply(ctx context.Context, msgs ...messenger.Message) {
	s.out.Send(ctx, s.SenderID, msgs...)
}

// ReplyText sends each text to the sender as a separate message.
func (s *Session) ReplyText(ctx context.Context, texts ...string) {
	s.out.SendText(ctx, s.SenderID, texts...)
}

// errSkipped marks a handler that matched but had nothing to send.
var errSkipped = errors.New("bot: nothing to send")
