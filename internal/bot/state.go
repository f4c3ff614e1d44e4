package bot

import (
	"context"
	"fmt"
	"sync"
)

// StateStore is the persisted part of the runtime state.
type StateStore interface {
	ListAdmins(ctx context.Context) ([]string, error)
	BotEnabled(ctx context.Context) (bool, error)
}

// Snapshot is the runtime state as seen by one event.
type Snapshot struct {
	BotEnabled bool
	IsAdmin    bool
	IsMuted    bool
}

// RuntimeState holds the global switch, the admin allow-list and the
// per-user mute set. The admin list and switch are reloaded from storage on
// explicit triggers; the mute set lives only in memory and resets on
// restart.
type RuntimeState struct {
	store StateStore

	mu         sync.RWMutex
	botEnabled bool
	admins     map[string]struct{}
	muted      map[string]struct{}
}

// NewRuntimeState creates a state with the bot enabled and no admins.
// Call Reload to load the persisted values.
func NewRuntimeState(store StateStore) *RuntimeState {
	return &RuntimeState{
		store:      store,
		botEnabled: true,
		admins:     make(map[string]struct{}),
		muted:      make(map[string]struct{}),
	}
}

// Reload refreshes both the admin list and the global switch.
func (s *RuntimeState) Reload(ctx context.Context) error {
	if err := s.ReloadAdmins(ctx); err != nil {
		return err
	}
	return s.ReloadBotEnabled(ctx)
}

// ReloadAdmins replaces the admin allow-list from storage. On error the
// current list is kept.
func (s *RuntimeState) ReloadAdmins(ctx context.Context) error {
	ids, err := s.store.ListAdmins(ctx)
	if err != nil {
		return fmt.Errorf("reload admins: %w", err)
	}
	admins := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		admins[id] = struct{}{}
	}

	s.mu.Lock()
	s.admins = admins
	s.mu.Unlock()
	return nil
}

// ReloadBotEnabled refreshes the global switch from storage.
func (s *RuntimeState) ReloadBotEnabled(ctx context.Context) error {
	enabled, err := s.store.BotEnabled(ctx)
	if err != nil {
		return fmt.Errorf("reload bot enabled: %w", err)
	}

	s.mu.Lock()
	s.botEnabled = enabled
	s.mu.Unlock()
	return nil
}

// Snapshot returns the state relevant to senderID.
func (s *RuntimeState) Snapshot(senderID string) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, admin := s.admins[senderID]
	_, muted := s.muted[senderID]
	return Snapshot{BotEnabled: s.botEnabled, IsAdmin: admin, IsMuted: muted}
}

// Mute silences the bot for senderID. It does not touch the global switch.
func (s *RuntimeState) Mute(senderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted[senderID] = struct{}{}
}

// Unmute re-enables the bot for senderID.
func (s *RuntimeState) Unmute(senderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.muted, senderID)
}

// IsMuted reports whether senderID muted the bot.
func (s *RuntimeState) IsMuted(senderID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.muted[senderID]
	return ok
}

// BotEnabled reports the global switch.
func (s *RuntimeState) BotEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.botEnabled
}

// Counts returns the number of admins and muted senders.
func (s *RuntimeState) Counts() (admins, muted int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.admins), len(s.muted)
}
