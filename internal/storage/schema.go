package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	steps := []struct {
		name  string
		query string
	}{
		{"fonts", fontsTable},
		{"font children", fontChildTables},
		{"responses", responsesTable},
		{"moderation", moderationTables},
		{"settings", settingsTable},
		{"game_scores", gameScoresTable},
	}
	for _, s := range steps {
		if _, err := db.ExecContext(ctx, s.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", s.name, err)
		}
	}
	return nil
}

const fontsTable = `
CREATE TABLE IF NOT EXISTS fonts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	post_url TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
`

const fontChildTables = `
CREATE TABLE IF NOT EXISTS font_keys (
	font_id INTEGER NOT NULL REFERENCES fonts(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (font_id, position)
);
CREATE TABLE IF NOT EXISTS font_tags (
	font_id INTEGER NOT NULL REFERENCES fonts(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (font_id, position)
);
CREATE TABLE IF NOT EXISTS font_links (
	font_id INTEGER NOT NULL REFERENCES fonts(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (font_id, position)
);
CREATE TABLE IF NOT EXISTS font_images (
	font_id INTEGER NOT NULL REFERENCES fonts(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (font_id, position)
);
CREATE TABLE IF NOT EXISTS font_messages (
	font_id INTEGER NOT NULL REFERENCES fonts(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (font_id, position)
);
CREATE INDEX IF NOT EXISTS idx_font_tags_value ON font_tags(value);
`

const responsesTable = `
CREATE TABLE IF NOT EXISTS responses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	keys_json TEXT NOT NULL,
	messages_json TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`

const moderationTables = `
CREATE TABLE IF NOT EXISTS admins (
	sender_id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS bans (
	sender_id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
`

const settingsTable = `
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

const gameScoresTable = `
CREATE TABLE IF NOT EXISTS game_scores (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	player_name TEXT NOT NULL,
	game_name TEXT NOT NULL,
	score REAL NOT NULL,
	school TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_game_scores_phone_game ON game_scores(phone, game_name);
CREATE INDEX IF NOT EXISTS idx_game_scores_game_score ON game_scores(game_name, score);
`
