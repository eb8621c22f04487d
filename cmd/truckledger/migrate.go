package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, database, _, err := setup()
		if err != nil {
			return err
		}
		defer database.Close()
		return database.RunMigrations()
	},
}
