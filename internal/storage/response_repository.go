package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// SaveResponse inserts a canned response group.
func (db *DB) SaveResponse(ctx context.Context, keys, messages []string) (*Response, error) {
	if len(keys) == 0 || len(messages) == 0 {
		return nil, fmt.Errorf("save response: keys and messages are required")
	}
	keysJSON, err := json.Marshal(keys)
	if err != nil {
		return nil, fmt.Errorf("marshal keys: %w", err)
	}
	messagesJSON, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("marshal messages: %w", err)
	}

	res, err := db.writer.ExecContext(ctx,
		`INSERT INTO responses (keys_json, messages_json, created_at) VALUES (?, ?, ?)`,
		string(keysJSON), string(messagesJSON), time.Now().Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to save response", "error", err)
		return nil, fmt.Errorf("save response: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("response id: %w", err)
	}
	return &Response{ID: id, Keys: keys, Messages: messages}, nil
}

// ListResponses returns all canned response groups ordered by id.
func (db *DB) ListResponses(ctx context.Context) ([]*Response, error) {
	rows, err := db.reader.QueryContext(ctx, `SELECT id, keys_json, messages_json FROM responses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Response
	for rows.Next() {
		var r Response
		var keysJSON, messagesJSON string
		if err := rows.Scan(&r.ID, &keysJSON, &messagesJSON); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		if err := json.Unmarshal([]byte(keysJSON), &r.Keys); err != nil {
			slog.WarnContext(ctx, "skipping response with corrupt keys", "response_id", r.ID, "error", err)
			continue
		}
		if err := json.Unmarshal([]byte(messagesJSON), &r.Messages); err != nil {
			slog.WarnContext(ctx, "skipping response with corrupt messages", "response_id", r.ID, "error", err)
			continue
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate responses: %w", err)
	}
	return out, nil
}

// DeleteResponse removes a response group. Returns false when absent.
func (db *DB) DeleteResponse(ctx context.Context, id int64) (bool, error) {
	res, err := db.writer.ExecContext(ctx, `DELETE FROM responses WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete response: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete response rows: %w", err)
	}
	return n > 0, nil
}
