package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// SettingBotEnabled is the settings key for the global on/off switch.
const SettingBotEnabled = "bot_enabled"

// AddAdmin records senderID as an admin. Idempotent.
func (db *DB) AddAdmin(ctx context.Context, senderID string) error {
	_, err := db.writer.ExecContext(ctx,
		`INSERT INTO admins (sender_id, created_at) VALUES (?, ?) ON CONFLICT(sender_id) DO NOTHING`,
		senderID, time.Now().Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to add admin", "target_id", senderID, "error", err)
		return fmt.Errorf("add admin: %w", err)
	}
	return nil
}

// RemoveAdmin deletes senderID from admins.
func (db *DB) RemoveAdmin(ctx context.Context, senderID string) error {
	if _, err := db.writer.ExecContext(ctx, `DELETE FROM admins WHERE sender_id = ?`, senderID); err != nil {
		slog.ErrorContext(ctx, "failed to remove admin", "target_id", senderID, "error", err)
		return fmt.Errorf("remove admin: %w", err)
	}
	return nil
}

// ListAdmins returns all admin sender ids.
func (db *DB) ListAdmins(ctx context.Context) ([]string, error) {
	rows, err := db.reader.QueryContext(ctx, `SELECT sender_id FROM admins ORDER BY created_at, sender_id`)
	if err != nil {
		return nil, fmt.Errorf("query admins: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveBan bans senderID, updating the stored display name on conflict.
func (db *DB) SaveBan(ctx context.Context, senderID, name string) error {
	_, err := db.writer.ExecContext(ctx, `
		INSERT INTO bans (sender_id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(sender_id) DO UPDATE SET name = excluded.name`,
		senderID, name, time.Now().Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to save ban", "target_id", senderID, "error", err)
		return fmt.Errorf("save ban: %w", err)
	}
	return nil
}

// RemoveBan lifts a ban. Returns false when senderID was not banned.
func (db *DB) RemoveBan(ctx context.Context, senderID string) (bool, error) {
	res, err := db.writer.ExecContext(ctx, `DELETE FROM bans WHERE sender_id = ?`, senderID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to remove ban", "target_id", senderID, "error", err)
		return false, fmt.Errorf("remove ban: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove ban rows: %w", err)
	}
	return n > 0, nil
}

// GetBan returns the ban for senderID, or nil when not banned.
func (db *DB) GetBan(ctx context.Context, senderID string) (*Ban, error) {
	var b Ban
	var created int64
	err := db.reader.QueryRowContext(ctx,
		`SELECT sender_id, name, created_at FROM bans WHERE sender_id = ?`, senderID).
		Scan(&b.SenderID, &b.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query ban: %w", err)
	}
	b.CreatedAt = time.Unix(created, 0)
	return &b, nil
}

// ListBans returns all bans, oldest first.
func (db *DB) ListBans(ctx context.Context) ([]*Ban, error) {
	rows, err := db.reader.QueryContext(ctx, `SELECT sender_id, name, created_at FROM bans ORDER BY created_at, sender_id`)
	if err != nil {
		return nil, fmt.Errorf("query bans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bans []*Ban
	for rows.Next() {
		var b Ban
		var created int64
		if err := rows.Scan(&b.SenderID, &b.Name, &created); err != nil {
			return nil, fmt.Errorf("scan ban: %w", err)
		}
		b.CreatedAt = time.Unix(created, 0)
		bans = append(bans, &b)
	}
	return bans, rows.Err()
}

// CountBans returns the number of banned senders.
func (db *DB) CountBans(ctx context.Context) (int, error) {
	var n int
	if err := db.reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM bans`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bans: %w", err)
	}
	return n, nil
}

// SetSetting upserts a settings value.
func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	_, err := db.writer.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// GetSetting returns the value for key and whether it exists.
func (db *DB) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := db.reader.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetBotEnabled persists the global on/off switch.
func (db *DB) SetBotEnabled(ctx context.Context, enabled bool) error {
	return db.SetSetting(ctx, SettingBotEnabled, strconv.FormatBool(enabled))
}

// BotEnabled reads the global switch. It defaults to true when unset.
func (db *DB) BotEnabled(ctx context.Context) (bool, error) {
	value, ok, err := db.GetSetting(ctx, SettingBotEnabled)
	if err != nil || !ok {
		return true, err
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return true, fmt.Errorf("parse %s: %w", SettingBotEnabled, err)
	}
	return enabled, nil
}
