// Command commissionctl runs the commission batch jobs. It is the entry point for an
// external scheduler (cron, Cloud Scheduler) and for one-off admin runs.
package main

import (
	"fmt"
	"os"

	"brokerage-backend/internal/config"
	"brokerage-backend/internal/infrastructure/database"

	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.SetupLogging()

	root := newRootCmd(&cli{
		out: os.Stdout,
		openDB: func() (*gorm.DB, error) {
			if cfg.DatabaseURL == "" {
				return nil, fmt.Errorf("DATABASE_URL is not set")
			}
			return database.Open(cfg.DatabaseURL)
		},
	})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
