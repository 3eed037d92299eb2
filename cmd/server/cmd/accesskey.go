package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/meridian-cal/server/internal/config"
	"github.com/meridian-cal/server/internal/domain/users"
	"github.com/meridian-cal/server/internal/storage/postgres"
)

var accessKeyCmd = &cobra.Command{
	Use:   "accesskey",
	Short: "Manage user access keys",
}

var accessKeyRotateCmd = &cobra.Command{
	Use:   "rotate <username>",
	Short: "Generate a new access key for a user",
	Long: `Generate a new access key for the named user, replacing the old one.

The new key is printed once and never stored in recoverable form elsewhere.
The old key stops working immediately.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		logger := config.NewLogger(cfg.Logging)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		repo, err := postgres.NewRepository(pool)
		if err != nil {
			return fmt.Errorf("repository init: %w", err)
		}

		service := users.NewService(repo.Users(), logger)
		key, err := service.RotateAccessKey(ctx, args[0])
		if err != nil {
			return fmt.Errorf("rotate access key: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "New access key for %s:\n%s\n", args[0], key)
		return nil
	},
}

func init() {
	accessKeyCmd.AddCommand(accessKeyRotateCmd)
}
