package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/stafflink/backoffice/pkg/configuration"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backoffice",
		Short: "Back-office administration tool",
	}
	cmd.AddCommand(newMigrateCmd(), newSeedCmd(), newSweepCmd())
	return cmd
}

func connectDB(ctx context.Context) (*pgxpool.Pool, error) {
	conf := configuration.Use()
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return pgxpool.New(connectCtx, conf.Database.Opts)
}

func main() {
	defer configuration.Use().Unload()
	_ = newRootCmd().Execute()
}
