package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/kova/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := database.Migrate(cmd.Context(), app.db); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "schema applied")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
