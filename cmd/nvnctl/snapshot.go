package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nvnfont/nvnfont-bot-go/internal/config"
	"github.com/nvnfont/nvnfont-bot-go/internal/r2client"
	"github.com/nvnfont/nvnfont-bot-go/internal/snapshot"
)

var restoreForce bool

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage database snapshots in object storage",
}

var snapshotUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a compressed copy of the database now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, mgr, err := snapshotManager(cmd.Context())
		if err != nil {
			return err
		}
		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		res, err := mgr.Upload(cmd.Context(), db)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%d bytes)\n", res.Key, res.Size)
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, mgr, err := snapshotManager(cmd.Context())
		if err != nil {
			return err
		}
		objects, err := mgr.List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "KEY\tSIZE\tMODIFIED")
		for _, obj := range objects {
			_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", obj.Key, obj.Size, obj.LastModified.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the local database with the newest snapshot",
	Long:  "Replace the local database with the newest snapshot. Stop the server first; an existing database is only replaced with --force.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, mgr, err := snapshotManager(cmd.Context())
		if err != nil {
			return err
		}
		dbPath := cfg.SQLitePath()
		if _, err := os.Stat(dbPath); err == nil && !restoreForce {
			return fmt.Errorf("%s exists; pass --force to replace it", dbPath)
		}
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("data dir: %w", err)
		}

		key, err := mgr.Restore(cmd.Context(), dbPath)
		if errors.Is(err, snapshot.ErrNotFound) {
			return fmt.Errorf("no snapshot under %q", cfg.R2.SnapshotPrefix)
		}
		if err != nil {
			return err
		}
		// Stale WAL files belong to the replaced database.
		_ = os.Remove(dbPath + "-wal")
		_ = os.Remove(dbPath + "-shm")

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "restored %s to %s\n", key, dbPath)
		return nil
	},
}

func init() {
	snapshotRestoreCmd.Flags().BoolVar(&restoreForce, "force", false, "replace an existing database")
	snapshotCmd.AddCommand(snapshotUploadCmd, snapshotListCmd, snapshotRestoreCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func snapshotManager(ctx context.Context) (*config.Config, *snapshot.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.R2.Enabled {
		return nil, nil, fmt.Errorf("object storage is disabled; set %s=true", config.EnvR2Enabled)
	}
	client, err := r2client.New(ctx, r2client.Config{
		Endpoint:    cfg.R2.Endpoint,
		AccessKeyID: cfg.R2.AccessKeyID,
		SecretKey:   cfg.R2.SecretAccessKey,
		BucketName:  cfg.R2.BucketName,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, snapshot.New(client, snapshot.Config{
		Prefix:  cfg.R2.SnapshotPrefix,
		Retain:  cfg.R2.SnapshotRetain,
		TempDir: cfg.DataDir,
	}), nil
}
