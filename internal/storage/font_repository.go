package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// FontInput is the payload for creating a font.
type FontInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PostURL     string   `json:"urlPost"`
	Keys        []string `json:"keys"`
	Tags        []string `json:"tags"`
	Links       []string `json:"links"`
	Images      []string `json:"images"`
	Messages    []string `json:"messages"`
}

var fontChildren = []string{"font_keys", "font_tags", "font_links", "font_images", "font_messages"}

func (in *FontInput) children() [][]string {
	return [][]string{in.Keys, in.Tags, in.Links, in.Images, in.Messages}
}

func (f *Font) childSlot(table string) *[]string {
	switch table {
	case "font_keys":
		return &f.Keys
	case "font_tags":
		return &f.Tags
	case "font_links":
		return &f.Links
	case "font_images":
		return &f.Images
	default:
		return &f.Messages
	}
}

// CreateFont inserts a font with its child lists. When a font with the same
// name exists it is returned unchanged and created is false.
func (db *DB) CreateFont(ctx context.Context, in *FontInput) (font *Font, created bool, err error) {
	defer trackSlow(ctx, "CreateFont")()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, false, fmt.Errorf("create font: empty name")
	}

	existing, err := db.GetFontByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	now := time.Now().Unix()
	var id int64
	err = db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO fonts (name, description, post_url, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			name, in.Description, in.PostURL, now, now)
		if err != nil {
			return fmt.Errorf("insert font: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("font id: %w", err)
		}
		for i, values := range in.children() {
			if err := insertChildren(ctx, tx, fontChildren[i], id, values); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create font", "name", name, "error", err)
		return nil, false, fmt.Errorf("create font: %w", err)
	}

	font, err = db.GetFont(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return font, true, nil
}

func insertChildren(ctx context.Context, tx *sql.Tx, table string, fontID int64, values []string) error {
	if len(values) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+table+" (font_id, position, value) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare %s: %w", table, err)
	}
	defer func() { _ = stmt.Close() }()

	pos := 0
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, fontID, pos, v); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
		pos++
	}
	return nil
}

// GetFont returns the font with id, or nil when absent.
func (db *DB) GetFont(ctx context.Context, id int64) (*Font, error) {
	return db.getFontWhere(ctx, "id = ?", id)
}

// GetFontByName returns the font with the exact name, or nil when absent.
func (db *DB) GetFontByName(ctx context.Context, name string) (*Font, error) {
	return db.getFontWhere(ctx, "name = ?", name)
}

func (db *DB) getFontWhere(ctx context.Context, where string, arg any) (*Font, error) {
	row := db.reader.QueryRowContext(ctx,
		`SELECT id, name, description, post_url, created_at, updated_at FROM fonts WHERE `+where, arg)
	f, err := scanFont(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query font", "arg", arg, "error", err)
		return nil, fmt.Errorf("query font: %w", err)
	}

	byID := map[int64]*Font{f.ID: f}
	if err := db.loadChildren(ctx, byID, f.ID); err != nil {
		return nil, err
	}
	return f, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFont(row rowScanner) (*Font, error) {
	var f Font
	var created, updated int64
	if err := row.Scan(&f.ID, &f.Name, &f.Description, &f.PostURL, &created, &updated); err != nil {
		return nil, err
	}
	f.CreatedAt = time.Unix(created, 0)
	f.UpdatedAt = time.Unix(updated, 0)
	return &f, nil
}

// ListFonts returns all fonts ordered by id with their child lists.
func (db *DB) ListFonts(ctx context.Context) ([]*Font, error) {
	defer trackSlow(ctx, "ListFonts")()

	fonts, err := db.queryFonts(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*Font, len(fonts))
	for _, f := range fonts {
		byID[f.ID] = f
	}

	if err := db.loadChildren(ctx, byID, 0); err != nil {
		return nil, err
	}
	return fonts, nil
}

// queryFonts releases its connection before returning so that the
// single-connection in-memory database can serve the child queries.
func (db *DB) queryFonts(ctx context.Context) ([]*Font, error) {
	rows, err := db.reader.QueryContext(ctx,
		`SELECT id, name, description, post_url, created_at, updated_at FROM fonts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query fonts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var fonts []*Font
	for rows.Next() {
		f, err := scanFont(rows)
		if err != nil {
			return nil, fmt.Errorf("scan font: %w", err)
		}
		fonts = append(fonts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fonts: %w", err)
	}
	return fonts, nil
}

// loadChildren fills child lists for fonts in byID. A non-zero onlyID
// restricts the queries to that font.
func (db *DB) loadChildren(ctx context.Context, byID map[int64]*Font, onlyID int64) error {
	for _, table := range fontChildren {
		query := "SELECT font_id, value FROM " + table
		var args []any
		if onlyID != 0 {
			query += " WHERE font_id = ?"
			args = append(args, onlyID)
		}
		query += " ORDER BY font_id, position"

		if err := func() error {
			rows, err := db.reader.QueryContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("query %s: %w", table, err)
			}
			defer func() { _ = rows.Close() }()
			for rows.Next() {
				var id int64
				var value string
				if err := rows.Scan(&id, &value); err != nil {
					return fmt.Errorf("scan %s: %w", table, err)
				}
				if f, ok := byID[id]; ok {
					slot := f.childSlot(table)
					*slot = append(*slot, value)
				}
			}
			return rows.Err()
		}(); err != nil {
			return err
		}
	}
	return nil
}

// DeleteFont removes a font and its children. Returns false when absent.
func (db *DB) DeleteFont(ctx context.Context, id int64) (bool, error) {
	res, err := db.writer.ExecContext(ctx, `DELETE FROM fonts WHERE id = ?`, id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete font", "font_id", id, "error", err)
		return false, fmt.Errorf("delete font: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete font rows: %w", err)
	}
	return n > 0, nil
}

// DeleteAllFonts removes every font and resets the id sequence.
func (db *DB) DeleteAllFonts(ctx context.Context) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM fonts`); err != nil {
			return fmt.Errorf("delete fonts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'fonts'`); err != nil {
			return fmt.Errorf("reset font sequence: %w", err)
		}
		return nil
	})
}

// CountFonts returns the number of fonts.
func (db *DB) CountFonts(ctx context.Context) (int, error) {
	var n int
	if err := db.reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM fonts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count fonts: %w", err)
	}
	return n, nil
}
