package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// migrate 只需要 PersistentPreRunE 里的 db.Init
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), "database schema is up to date")
		return nil
	},
}
