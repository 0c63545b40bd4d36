package main

import (
	"encoding/json"
	"fmt"
	"io"

	"brokerage-backend/internal/application/leads"
	"brokerage-backend/internal/application/recalculation"
	"brokerage-backend/internal/application/scheduling"
	"brokerage-backend/internal/infrastructure/database"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type cli struct {
	out    io.Writer
	openDB func() (*gorm.DB, error)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "commissionctl",
		Short:         "Commission batch jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(c.migrateCmd(), c.executeScheduledCmd(), c.recalculateCmd())
	return root
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema, including the active-lead index",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB()
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info().Msg("schema up to date")
			return nil
		},
	}
}

func (c *cli) executeScheduledCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "execute-scheduled",
		Short: "Apply every scheduled commission change that is due",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB()
			if err != nil {
				return err
			}
			svc := &scheduling.Service{DB: db}
			summary, err := svc.ExecutePending(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(summary)
		},
	}
}

func (c *cli) recalculateCmd() *cobra.Command {
	var mes, anio int
	cmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Recalculate lead commissions for one month (default: current month)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB()
			if err != nil {
				return err
			}
			svc := &recalculation.Service{
				DB:       db,
				Resolver: &leads.Service{DB: db, Counter: &leads.GormCounter{DB: db}},
			}
			summary, err := svc.Recalculate(cmd.Context(), mes, anio)
			if err != nil {
				return err
			}
			return c.print(summary)
		},
	}
	cmd.Flags().IntVar(&mes, "mes", 0, "month 1-12")
	cmd.Flags().IntVar(&anio, "anio", 0, "year 2000-2100")
	return cmd
}

func (c *cli) print(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
