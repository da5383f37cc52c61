package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	infradb "github.com/Miraines/MoonyAndStarry/account-service/internal/infra/db"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/migrate"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the accounts schema",
	}
	cmd.AddCommand(
		newMigrateStep("up", "Apply all pending migrations", migrate.Up),
		newMigrateStep("down", "Roll back all migrations", migrate.Down),
		newMigrateVersionCmd(),
	)
	return cmd
}

func newMigrateStep(use, short string, step func(context.Context, *sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd, func(db *sql.DB, log *zap.Logger) error {
				if err := step(cmd.Context(), db); err != nil {
					return fmt.Errorf("migrate %s: %w", use, err)
				}
				log.Info("migrations applied", zap.String("direction", use))
				return nil
			})
		},
	}
}

func newMigrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd, func(db *sql.DB, _ *zap.Logger) error {
				v, dirty, ok, err := migrate.Version(cmd.Context(), db)
				if err != nil {
					return err
				}
				if !ok {
					cmd.Println("no migrations applied")
					return nil
				}
				cmd.Printf("version %d (dirty: %t)\n", v, dirty)
				return nil
			})
		},
	}
}

func withDB(cmd *cobra.Command, fn func(db *sql.DB, log *zap.Logger) error) error {
	cfg, zapLog, err := bootstrap()
	if err != nil {
		return err
	}
	defer zapLog.Sync()

	db, err := infradb.Open(cmd.Context(), cfg.DatabaseURL, infradb.PoolConfig{MinConns: 1, MaxConns: 2}, zapLog)
	if err != nil {
		return err
	}
	conn, err := db.DB()
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn, zapLog)
}
