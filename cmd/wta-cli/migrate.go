package main

import (
	"context"
	"fmt"
	"time"

	"wta/internal/platform/config"
	"wta/internal/platform/logger"
	"wta/internal/platform/store"
	"wta/internal/services/api/diff/repo"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var (
		dsn     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the comparison schema to Postgres",
		Long:  "Creates the comparisons table if it does not exist. The DSN defaults to SERVICE_PGSQL_DBURL.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				dsn = config.New().Prefix("SERVICE_PGSQL_").MayString("DBURL", "")
			}
			if dsn == "" {
				return fmt.Errorf("no database: pass --dsn or set SERVICE_PGSQL_DBURL")
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			st, err := store.Open(ctx, store.Config{
				AppName: "wta-cli",
				PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 1, ConnectRetries: 1},
			}, store.WithLogger(*logger.Get()))
			if err != nil {
				return err
			}
			defer func() { _ = st.Close(context.Background()) }()

			if err := repo.Migrate(ctx, st.PG); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "comparison schema applied")
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "Postgres connection string")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "give up after this long")
	return cmd
}
