package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/database"
	"shareit/internal/worker"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, closer, err := loadConfigAndLogger("migrate")
			if err != nil {
				return err
			}
			defer closeQuietly(closer)

			// Open applies the schema.
			db, err := database.Open(cmdContext(cmd), cfg.Database, &logger)
			if err != nil {
				return err
			}
			defer db.Close()

			logger.Info().Str("driver", db.Driver()).Msg("schema is up to date")
			return nil
		},
	}
}

func newBackupCmd() *cobra.Command {
	var (
		cleanupOnly bool
		loop        bool
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up the SQLite database and prune old backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, closer, err := loadConfigAndLogger("backup")
			if err != nil {
				return err
			}
			defer closeQuietly(closer)

			db, err := database.Open(cmdContext(cmd), cfg.Database, &logger)
			if err != nil {
				return err
			}
			defer db.Close()

			backups := database.NewBackupService(db, cfg.Backup, &logger)
			if loop {
				if cfg.Backup.Interval <= 0 {
					return fmt.Errorf("backup.interval must be set to run in a loop")
				}
				ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
				defer stop()
				worker.NewBackupWorker(backups, cfg.Backup.Interval,
					worker.RetryPolicy{MaxRetries: 3, InitialDelay: 30 * time.Second, MaxDelay: 5 * time.Minute},
					&logger).Start(ctx)
				return nil
			}
			if cleanupOnly {
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d old backups\n", backups.CleanupOldBackups())
				return nil
			}

			path, err := backups.Run(cmdContext(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cleanupOnly, "cleanup-only", false, "only delete backups past the retention period")
	cmd.Flags().BoolVar(&loop, "loop", false, "keep running and take a backup every backup.interval")

	return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
