package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvnfont/nvnfont-bot-go/internal/messenger"
)

// setupProfileCmd installs the get-started button, greeting and persistent menu.
var setupProfileCmd = &cobra.Command{
	Use:   "setup-profile",
	Short: "Install the Messenger greeting and persistent menu",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		client := messenger.New(cfg.PageAccessToken,
			messenger.WithBaseURL(cfg.GraphAPIURL),
			messenger.WithVersion(cfg.GraphAPIVersion),
			messenger.WithTimeout(cfg.Bot.MessengerTimeout),
		)
		if err := client.SetupProfile(cmd.Context(), messenger.SetupOptions{
			PageURL:  cfg.Bot.PageURL,
			GroupURL: cfg.Bot.GroupURL,
		}); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Messenger profile installed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupProfileCmd)
}
