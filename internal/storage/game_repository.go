package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// GameScorePatch holds the optional fields of a score update.
type GameScorePatch struct {
	PlayerName *string  `json:"namePlayer"`
	GameName   *string  `json:"nameGame"`
	Score      *float64 `json:"score"`
	School     *string  `json:"school"`
	Phone      *string  `json:"phone"`
}

const gameScoreColumns = `id, player_name, game_name, score, school, phone, created_at, updated_at`

func scanGameScore(row rowScanner) (*GameScore, error) {
	var g GameScore
	var created, updated int64
	if err := row.Scan(&g.ID, &g.PlayerName, &g.GameName, &g.Score, &g.School, &g.Phone, &created, &updated); err != nil {
		return nil, err
	}
	g.CreatedAt = time.Unix(created, 0)
	g.UpdatedAt = time.Unix(updated, 0)
	return &g, nil
}

func (db *DB) queryOneScore(ctx context.Context, where string, args ...any) (*GameScore, error) {
	row := db.reader.QueryRowContext(ctx,
		`SELECT `+gameScoreColumns+` FROM game_scores WHERE `+where+` ORDER BY id LIMIT 1`, args...)
	g, err := scanGameScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query game score: %w", err)
	}
	return g, nil
}

func (db *DB) queryScores(ctx context.Context, query string, args ...any) ([]*GameScore, error) {
	rows, err := db.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query game scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	scores := make([]*GameScore, 0)
	for rows.Next() {
		g, err := scanGameScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game score: %w", err)
		}
		scores = append(scores, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game scores: %w", err)
	}
	return scores, nil
}

// SaveBestScore inserts a score, or raises the stored score for the same
// phone and game when the new one is higher. The resulting record is returned.
func (db *DB) SaveBestScore(ctx context.Context, in *GameScore) (*GameScore, error) {
	defer trackSlow(ctx, "SaveBestScore")()

	existing, err := db.FindScore(ctx, in.Phone, in.GameName)
	if err != nil {
		return nil, err
	}
	now := time.Now().Unix()

	if existing != nil {
		if in.Score <= existing.Score {
			return existing, nil
		}
		if _, err := db.writer.ExecContext(ctx,
			`UPDATE game_scores SET score = ?, updated_at = ? WHERE id = ?`,
			in.Score, now, existing.ID); err != nil {
			slog.ErrorContext(ctx, "failed to raise game score", "score_id", existing.ID, "error", err)
			return nil, fmt.Errorf("raise game score: %w", err)
		}
		return db.GetScore(ctx, existing.ID)
	}

	res, err := db.writer.ExecContext(ctx, `
		INSERT INTO game_scores (player_name, game_name, score, school, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.PlayerName, in.GameName, in.Score, in.School, in.Phone, now, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to insert game score", "game", in.GameName, "error", err)
		return nil, fmt.Errorf("insert game score: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("game score id: %w", err)
	}
	return db.GetScore(ctx, id)
}

// FindScore returns the score for phone and game, or nil.
func (db *DB) FindScore(ctx context.Context, phone, game string) (*GameScore, error) {
	return db.queryOneScore(ctx, `phone = ? AND game_name = ?`, phone, game)
}

// FindScoreByPhone returns the first score recorded for phone, or nil.
func (db *DB) FindScoreByPhone(ctx context.Context, phone string) (*GameScore, error) {
	return db.queryOneScore(ctx, `phone = ?`, phone)
}

// GetScore returns a score by id, or nil.
func (db *DB) GetScore(ctx context.Context, id int64) (*GameScore, error) {
	return db.queryOneScore(ctx, `id = ?`, id)
}

// PhoneUsedByOther reports whether a record other than id uses phone.
func (db *DB) PhoneUsedByOther(ctx context.Context, phone string, id int64) (bool, error) {
	var n int
	err := db.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_scores WHERE phone = ? AND id <> ?`, phone, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check phone: %w", err)
	}
	return n > 0, nil
}

// ListScores returns all scores ordered by id.
func (db *DB) ListScores(ctx context.Context) ([]*GameScore, error) {
	return db.queryScores(ctx, `SELECT `+gameScoreColumns+` FROM game_scores ORDER BY id`)
}

// ListScoresByGame returns scores for game ordered by score.
func (db *DB) ListScoresByGame(ctx context.Context, game string, descending bool) ([]*GameScore, error) {
	order := "ASC"
	if descending {
		order = "DESC"
	}
	return db.queryScores(ctx,
		`SELECT `+gameScoreColumns+` FROM game_scores WHERE game_name = ? ORDER BY score `+order+`, id`, game)
}

// ListScoresGrouped returns all scores ordered by game name then score ascending.
func (db *DB) ListScoresGrouped(ctx context.Context) ([]*GameScore, error) {
	return db.queryScores(ctx,
		`SELECT `+gameScoreColumns+` FROM game_scores ORDER BY game_name ASC, score ASC, id`)
}

// ListGames returns distinct game names in first-seen order.
func (db *DB) ListGames(ctx context.Context) ([]string, error) {
	rows, err := db.reader.QueryContext(ctx,
		`SELECT game_name FROM game_scores GROUP BY game_name ORDER BY MIN(id)`)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer func() { _ = rows.Close() }()

	games := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, name)
	}
	return games, rows.Err()
}

// UpdateScore applies patch to the record with id. Returns nil when absent.
func (db *DB) UpdateScore(ctx context.Context, id int64, patch *GameScorePatch) (*GameScore, error) {
	current, err := db.GetScore(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}
	if patch.PlayerName != nil {
		current.PlayerName = *patch.PlayerName
	}
	if patch.GameName != nil {
		current.GameName = *patch.GameName
	}
	if patch.Score != nil {
		current.Score = *patch.Score
	}
	if patch.School != nil {
		current.School = *patch.School
	}
	if patch.Phone != nil {
		current.Phone = *patch.Phone
	}

	_, err = db.writer.ExecContext(ctx, `
		UPDATE game_scores
		SET player_name = ?, game_name = ?, score = ?, school = ?, phone = ?, updated_at = ?
		WHERE id = ?`,
		current.PlayerName, current.GameName, current.Score, current.School, current.Phone, time.Now().Unix(), id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to update game score", "score_id", id, "error", err)
		return nil, fmt.Errorf("update game score: %w", err)
	}
	return db.GetScore(ctx, id)
}

// DeleteScore removes one record. Returns false when absent.
func (db *DB) DeleteScore(ctx context.Context, id int64) (bool, error) {
	res, err := db.writer.ExecContext(ctx, `DELETE FROM game_scores WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete game score: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete game score rows: %w", err)
	}
	return n > 0, nil
}

// DeleteScoresByGame removes every record of game and returns the count.
func (db *DB) DeleteScoresByGame(ctx context.Context, game string) (int64, error) {
	res, err := db.writer.ExecContext(ctx, `DELETE FROM game_scores WHERE game_name = ?`, game)
	if err != nil {
		return 0, fmt.Errorf("delete game scores: %w", err)
	}
	return res.RowsAffected()
}

// DeleteAllScores removes every record and returns the count.
func (db *DB) DeleteAllScores(ctx context.Context) (int64, error) {
	res, err := db.writer.ExecContext(ctx, `DELETE FROM game_scores`)
	if err != nil {
		return 0, fmt.Errorf("delete all game scores: %w", err)
	}
	return res.RowsAffected()
}
