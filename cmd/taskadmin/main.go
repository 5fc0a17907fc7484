// Command taskadmin runs migrations and bootstraps accounts and demo data.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"taskhub/config"
	"taskhub/database"
)

var rootCmd = &cobra.Command{
	Use:   "taskadmin",
	Short: "Administrative tasks for the taskhub server",
	Long: `taskadmin works directly against the configured database, using the
same .env and environment variables as the server.

Available subcommands:
  migrate     - Create or update the schema
  create-user - Create an account without an acting administrator
  seed        - Load the demo fixture (team "Compras")`,
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)
		return database.RunMigrations(db)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, createUserCmd, seedCmd)
}

// openDB loads configuration and connects. The schema is migrated so every
// subcommand can run against an empty database.
func openDB() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.ConfigureLogging()

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db); err != nil {
		closeDB(db)
		return nil, err
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.WithError(err).Warn("closing database")
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
