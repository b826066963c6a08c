package main

import (
	"fmt"

	"opinions/internal/db"
	"opinions/internal/services"

	"github.com/spf13/cobra"
)

var seedTopicsCmd = &cobra.Command{
	Use:   "seed-topics",
	Short: "Insert the default topics if they are missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := services.NewTopicService(db.DB).Seed(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d topics\n", n)
		return nil
	},
}
