package main

import (
	"fmt"

	"github.com/benerin-indonesia/benerin/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// openDB is swapped for an in-memory database in tests.
var openDB = func() (*gorm.DB, error) {
	database.ConnectDB()
	return database.DB, nil
}

var rootCmd = &cobra.Command{
	Use:           "benerinctl",
	Short:         "Operator tools for the Benerin escrow ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func mustDB(cmd *cobra.Command) (*gorm.DB, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}
	return db.WithContext(cmd.Context()), nil
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := mustDB(cmd)
		if err != nil {
			return err
		}
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Database migration successful")
		return nil
	},
}
