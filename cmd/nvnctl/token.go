package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nvnfont/nvnfont-bot-go/internal/api"
)

var (
	tokenID    string
	tokenEmail string
	tokenTTL   time.Duration
)

// tokenCmd issues a bearer token for the REST API write routes.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the REST API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if tokenEmail == "" {
			return errors.New("--email is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		id := tokenID
		if id == "" {
			id = uuid.NewString()
		}
		token, err := api.IssueToken(cfg.JWTSecret, id, tokenEmail, tokenTTL)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenID, "id", "", "operator id claim (random when empty)")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "operator email claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime; 0 issues a token without expiry")
	rootCmd.AddCommand(tokenCmd)
}
