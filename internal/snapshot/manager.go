// Package snapshot uploads compressed copies of the SQLite database to
// object storage and restores the newest one on demand.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nvnfont/nvnfont-bot-go/internal/r2client"
)

// ErrNotFound indicates no snapshot exists under the configured prefix.
var ErrNotFound = errors.New("snapshot: not found")

const (
	keySuffix   = ".db.zst"
	contentType = "application/zstd"
)

// Store is the object storage surface the manager needs.
type Store interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]r2client.Object, error)
	Delete(ctx context.Context, key string) error
}

// Source produces a consistent database copy at dest.
type Source interface {
	SnapshotTo(ctx context.Context, dest string) error
}

// Recorder receives upload outcomes.
type Recorder interface {
	RecordSnapshotUpload(status string, size int64)
}

// Config holds snapshot manager configuration.
type Config struct {
	Prefix  string // key prefix, e.g. "snapshots/"
	Retain  int    // newest uploads kept; older ones are pruned
	TempDir string
	Metrics Recorder
}

// Result describes a finished upload.
type Result struct {
	Key  string
	Size int64
	ETag string
}

// Manager handles SQLite snapshot upload and restore.
type Manager struct {
	store  Store
	config Config
	now    func() time.Time

	// mu serializes uploads so two ticks never race on pruning.
	mu sync.Mutex
}

// New creates a new snapshot manager.
func New(store Store, cfg Config) *Manager {
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.Retain < 1 {
		cfg.Retain = 1
	}
	return &Manager{store: store, config: cfg, now: time.Now}
}

// Upload snapshots src, compresses it, uploads it under a fresh key and
// prunes uploads beyond the retention count.
func (m *Manager) Upload(ctx context.Context, src Source) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.upload(ctx, src)
	if err != nil {
		m.record("error", 0)
		return Result{}, err
	}
	m.record("success", res.Size)

	if err := m.prune(ctx); err != nil {
		slog.WarnContext(ctx, "Snapshot prune failed", "error", err)
	}
	return res, nil
}

func (m *Manager) upload(ctx context.Context, src Source) (Result, error) {
	id := uuid.NewString()
	rawPath := filepath.Join(m.config.TempDir, "snapshot_"+id+".db")
	compressedPath := rawPath + ".zst"
	defer os.Remove(rawPath)
	defer os.Remove(compressedPath)

	if err := src.SnapshotTo(ctx, rawPath); err != nil {
		return Result{}, fmt.Errorf("create snapshot: %w", err)
	}

	size, err := r2client.CompressFile(rawPath, compressedPath)
	if err != nil {
		return Result{}, fmt.Errorf("compress snapshot: %w", err)
	}

	f, err := os.Open(compressedPath)
	if err != nil {
		return Result{}, fmt.Errorf("open compressed snapshot: %w", err)
	}
	defer f.Close()

	key := m.keyFor(id)
	etag, err := m.store.Upload(ctx, key, f, contentType)
	if err != nil {
		return Result{}, fmt.Errorf("upload snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot uploaded", "key", key, "size", size)
	return Result{Key: key, Size: size, ETag: etag}, nil
}

// keyFor builds a key that sorts chronologically.
func (m *Manager) keyFor(id string) string {
	stamp := m.now().UTC().Format("20060102T150405Z")
	return m.config.Prefix + stamp + "-" + id[:8] + keySuffix
}

// List returns uploaded snapshots, oldest first.
func (m *Manager) List(ctx context.Context) ([]r2client.Object, error) {
	objects, err := m.store.List(ctx, m.config.Prefix)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	snapshots := objects[:0]
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, keySuffix) {
			snapshots = append(snapshots, obj)
		}
	}
	return snapshots, nil
}

// Latest returns the newest snapshot or ErrNotFound.
func (m *Manager) Latest(ctx context.Context) (r2client.Object, error) {
	snapshots, err := m.List(ctx)
	if err != nil {
		return r2client.Object{}, err
	}
	if len(snapshots) == 0 {
		return r2client.Object{}, ErrNotFound
	}
	return snapshots[len(snapshots)-1], nil
}

// Restore downloads the newest snapshot and writes the decompressed
// database to destPath. destPath is replaced atomically.
func (m *Manager) Restore(ctx context.Context, destPath string) (string, error) {
	latest, err := m.Latest(ctx)
	if err != nil {
		return "", err
	}

	body, err := m.store.Download(ctx, latest.Key)
	if err != nil {
		if errors.Is(err, r2client.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("download snapshot: %w", err)
	}
	defer body.Close()

	tmpPath := destPath + ".restore"
	if err := r2client.DecompressStream(body, tmpPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("decompress snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("replace database: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot restored", "key", latest.Key, "path", destPath)
	return latest.Key, nil
}

func (m *Manager) prune(ctx context.Context) error {
	snapshots, err := m.List(ctx)
	if err != nil {
		return err
	}
	excess := len(snapshots) - m.config.Retain
	var errs []error
	for _, obj := range snapshots[:max(excess, 0)] {
		if err := m.store.Delete(ctx, obj.Key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) record(status string, size int64) {
	if m.config.Metrics != nil {
		m.config.Metrics.RecordSnapshotUpload(status, size)
	}
}
