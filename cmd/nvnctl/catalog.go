package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvnfont/nvnfont-bot-go/internal/storage"
)

// importFontsCmd seeds the font catalog from a JSON export.
var importFontsCmd = &cobra.Command{
	Use:   "import-fonts <file.json|->",
	Short: "Import fonts from a JSON array (existing names are skipped)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args[0], "fonts", func(ctx context.Context, db *storage.DB, r io.Reader) (ImportResult, error) {
			return importFonts(ctx, db, r)
		})
	},
}

// importResponsesCmd seeds canned keyword responses from a JSON export.
var importResponsesCmd = &cobra.Command{
	Use:   "import-responses <file.json|->",
	Short: "Import canned responses from a JSON array",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args[0], "responses", func(ctx context.Context, db *storage.DB, r io.Reader) (ImportResult, error) {
			return importResponses(ctx, db, r)
		})
	},
}

func init() {
	rootCmd.AddCommand(importFontsCmd, importResponsesCmd)
}

func runImport(cmd *cobra.Command, path, what string, fn func(context.Context, *storage.DB, io.Reader) (ImportResult, error)) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := fn(cmd.Context(), db, r)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d created, %d skipped, %d invalid\n", what, res.Created, res.Skipped, res.Invalid)
	return err
}
