package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nvnfont/nvnfont-bot-go/internal/storage"
)

// AdminKind is a recognized admin command.
type AdminKind string

// Admin command kinds.
const (
	AdminAddAdmin    AdminKind = "ADD_ADMIN"
	AdminRemoveAdmin AdminKind = "REMOVE_ADMIN"
	AdminBotOn       AdminKind = "ON_BOT"
	AdminBotOff      AdminKind = "OFF_BOT"
	AdminAddBan      AdminKind = "ADD_BAN"
	AdminRemoveBan   AdminKind = "REMOVE_BAN"
	AdminListBan     AdminKind = "LIST_BAN"
	AdminUnknown     AdminKind = "UNKNOWN"
)

var adminVerbs = map[string]AdminKind{
	"add-admin":    AdminAddAdmin,
	"remove-admin": AdminRemoveAdmin,
	"on-bot":       AdminBotOn,
	"off-bot":      AdminBotOff,
	"ban":          AdminAddBan,
	"unban":        AdminRemoveBan,
	"list-ban":     AdminListBan,
}

// AdminResult is a parsed admin command. Messages are relayed to the
// operator when the command cannot run as given.
type AdminResult struct {
	Kind           AdminKind
	TargetSenderID string
	Messages       []string
}

// ParseAdminCommand parses "@nvn <command> [psid]".
func ParseAdminCommand(text string) AdminResult {
	_, rest, ok := strings.Cut(text, KeywordAdmin)
	if !ok {
		return AdminResult{Kind: AdminUnknown, Messages: []string{msgAdminHelp}}
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return AdminResult{Kind: AdminUnknown, Messages: []string{msgAdminHelp}}
	}

	kind, ok := adminVerbs[strings.ToLower(fields[0])]
	if !ok {
		return AdminResult{Kind: AdminUnknown, Messages: []string{msgAdminHelp}}
	}
	res := AdminResult{Kind: kind}
	if len(fields) > 1 {
		res.TargetSenderID = fields[1]
	}

	switch kind {
	case AdminAddAdmin, AdminRemoveAdmin, AdminAddBan, AdminRemoveBan:
		if res.TargetSenderID == "" {
			res.Messages = []string{msgMissingTarget}
		}
	}
	return res
}

// AdminStore persists admin command effects.
type AdminStore interface {
	AddAdmin(ctx context.Context, senderID string) error
	RemoveAdmin(ctx context.Context, senderID string) error
	SetBotEnabled(ctx context.Context, enabled bool) error
	SaveBan(ctx context.Context, senderID, name string) error
	RemoveBan(ctx context.Context, senderID string) (bool, error)
	ListBans(ctx context.Context) ([]*storage.Ban, error)
}

type adminHandler struct {
	keywordHandler
	store    AdminStore
	state    *RuntimeState
	profiles ProfileFetcher
	out      *Outbox
}

// NewAdminHandler runs "@nvn" commands for admins and refuses everyone else.
func NewAdminHandler(store AdminStore, state *RuntimeState, profiles ProfileFetcher, out *Outbox) Handler {
	return &adminHandler{
		keywordHandler: keywordHandler{"admin", KeywordAdmin},
		store:          store,
		state:          state,
		profiles:       profiles,
		out:            out,
	}
}

func (h *adminHandler) Handle(ctx context.Context, s *Session, text string) error {
	if !s.Snapshot.IsAdmin {
		s.ReplyText(ctx, msgNoPermission)
		return nil
	}

	cmd := ParseAdminCommand(text)
	if err := h.execute(ctx, s, cmd); err != nil {
		s.ReplyText(ctx, msgCommandFailed)
		return fmt.Errorf("admin %s: %w", cmd.Kind, err)
	}
	return nil
}

func (h *adminHandler) execute(ctx context.Context, s *Session, cmd AdminResult) error {
	switch cmd.Kind {
	case AdminAddAdmin, AdminRemoveAdmin:
		if cmd.TargetSenderID == "" {
			s.ReplyText(ctx, cmd.Messages...)
			return nil
		}
		var err error
		reply := fmt.Sprintf(msgAdminAdded, cmd.TargetSenderID)
		if cmd.Kind == AdminAddAdmin {
			err = h.store.AddAdmin(ctx, cmd.TargetSenderID)
		} else {
			err = h.store.RemoveAdmin(ctx, cmd.TargetSenderID)
			reply = fmt.Sprintf(msgAdminRemoved, cmd.TargetSenderID)
		}
		if err != nil {
			return err
		}
		// Both list mutations trigger the same reload.
		if err := h.state.ReloadAdmins(ctx); err != nil {
			return err
		}
		s.ReplyText(ctx, reply)
		return nil

	case AdminBotOn, AdminBotOff:
		enabled := cmd.Kind == AdminBotOn
		if err := h.store.SetBotEnabled(ctx, enabled); err != nil {
			return err
		}
		if err := h.state.ReloadBotEnabled(ctx); err != nil {
			return err
		}
		if enabled {
			s.ReplyText(ctx, msgBotOnGlobal)
		} else {
			s.ReplyText(ctx, msgBotOffGlobal)
		}
		return nil

	case AdminAddBan:
		if cmd.TargetSenderID == "" {
			s.ReplyText(ctx, cmd.Messages...)
			return nil
		}
		return h.ban(ctx, s, cmd.TargetSenderID)

	case AdminRemoveBan:
		if cmd.TargetSenderID == "" {
			s.ReplyText(ctx, cmd.Messages...)
			return nil
		}
		if _, err := h.store.RemoveBan(ctx, cmd.TargetSenderID); err != nil {
			return err
		}
		s.ReplyText(ctx, msgUnbanDone)
		h.out.SendText(ctx, cmd.TargetSenderID, msgUnbanned)
		return nil

	case AdminListBan:
		bans, err := h.store.ListBans(ctx)
		if err != nil {
			return err
		}
		if len(bans) == 0 {
			s.ReplyText(ctx, msgBanListEmpty)
			return nil
		}
		lines := make([]string, 0, len(bans))
		for i, b := range bans {
			lines = append(lines, fmt.Sprintf(msgBanEntry, i+1, b.Name, b.SenderID))
		}
		s.ReplyText(ctx, lines...)
		return nil

	default:
		s.ReplyText(ctx, cmd.Messages...)
		return nil
	}
}

// ban persists a ban for a resolvable target. An unresolvable target has
// any stale entry removed and nothing is sent to it.
func (h *adminHandler) ban(ctx context.Context, s *Session, target string) error {
	profile, err := h.profiles.Profile(ctx, target)
	if err != nil || profile == nil {
		if err != nil {
			h.out.log.WithError(err).WithField("target_id", target).WarnContext(ctx, "Ban target not resolvable")
		}
		if _, rmErr := h.store.RemoveBan(ctx, target); rmErr != nil {
			return errors.Join(rmErr, err)
		}
		s.ReplyText(ctx, msgUserNotFound)
		return nil
	}

	id := profile.ID
	if id == "" {
		id = target
	}
	name := profile.DisplayName()
	if err := h.store.SaveBan(ctx, id, name); err != nil {
		return err
	}
	s.ReplyText(ctx, fmt.Sprintf(msgBanDone, name))
	h.out.SendText(ctx, id, msgBanned)
	return nil
}
