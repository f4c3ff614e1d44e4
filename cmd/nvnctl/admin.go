package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// adminCmd bootstraps the admin allow-list. Later changes can be made from
// Messenger with the .admin commands.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage bot administrators",
}

var adminAddCmd = &cobra.Command{
	Use:   "add <psid>",
	Short: "Grant admin rights to a Messenger sender",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.AddAdmin(cmd.Context(), args[0]); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin (running servers pick it up on the next reload)\n", args[0])
		return nil
	},
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List admin sender ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		ids, err := db.ListAdmins(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

func init() {
	adminCmd.AddCommand(adminAddCmd, adminListCmd)
	rootCmd.AddCommand(adminCmd)
}
