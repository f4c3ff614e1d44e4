package storage

import (
	"context"
)

// FontRepository defines font catalog operations.
type FontRepository interface {
	CreateFont(ctx context.Context, in *FontInput) (*Font, bool, error)
	GetFont(ctx context.Context, id int64) (*Font, error)
	GetFontByName(ctx context.Context, name string) (*Font, error)
	ListFonts(ctx context.Context) ([]*Font, error)
	DeleteFont(ctx context.Context, id int64) (bool, error)
	DeleteAllFonts(ctx context.Context) error
	CountFonts(ctx context.Context) (int, error)
}

// ResponseRepository defines canned response operations.
type ResponseRepository interface {
	SaveResponse(ctx context.Context, keys, messages []string) (*Response, error)
	ListResponses(ctx context.Context) ([]*Response, error)
	DeleteResponse(ctx context.Context, id int64) (bool, error)
}

// ModerationRepository defines admin, ban and global switch operations.
type ModerationRepository interface {
	AddAdmin(ctx context.Context, senderID string) error
	RemoveAdmin(ctx context.Context, senderID string) error
	ListAdmins(ctx context.Context) ([]string, error)
	SaveBan(ctx context.Context, senderID, name string) error
	RemoveBan(ctx context.Context, senderID string) (bool, error)
	GetBan(ctx context.Context, senderID string) (*Ban, error)
	ListBans(ctx context.Context) ([]*Ban, error)
	CountBans(ctx context.Context) (int, error)
	SetBotEnabled(ctx context.Context, enabled bool) error
	BotEnabled(ctx context.Context) (bool, error)
}

// GameRepository defines leaderboard operations.
type GameRepository interface {
	SaveBestScore(ctx context.Context, in *GameScore) (*GameScore, error)
	FindScore(ctx context.Context, phone, game string) (*GameScore, error)
	FindScoreByPhone(ctx context.Context, phone string) (*GameScore, error)
	GetScore(ctx context.Context, id int64) (*GameScore, error)
	PhoneUsedByOther(ctx context.Context, phone string, id int64) (bool, error)
	ListScores(ctx context.Context) ([]*GameScore, error)
	ListScoresByGame(ctx context.Context, game string, descending bool) ([]*GameScore, error)
	ListScoresGrouped(ctx context.Context) ([]*GameScore, error)
	ListGames(ctx context.Context) ([]string, error)
	UpdateScore(ctx context.Context, id int64, patch *GameScorePatch) (*GameScore, error)
	DeleteScore(ctx context.Context, id int64) (bool, error)
	DeleteScoresByGame(ctx context.Context, game string) (int64, error)
	DeleteAllScores(ctx context.Context) (int64, error)
}

var (
	_ FontRepository       = (*DB)(nil)
	_ ResponseRepository   = (*DB)(nil)
	_ ModerationRepository = (*DB)(nil)
	_ GameRepository       = (*DB)(nil)
)
