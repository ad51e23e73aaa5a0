package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// BackupRunner takes one backup and returns where it was written.
type BackupRunner interface {
	Run(ctx context.Context) (string, error)
}

// BackupWorker takes a backup every interval, retrying failed runs with backoff.
type BackupWorker struct {
	runner   BackupRunner
	interval time.Duration
	retry    RetryPolicy
	logger   *zerolog.Logger
}

func NewBackupWorker(runner BackupRunner, interval time.Duration, retry RetryPolicy, logger *zerolog.Logger) *BackupWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	return &BackupWorker{
		runner:   runner,
		interval: interval,
		retry:    retry,
		logger:   logger,
	}
}

// Start blocks until ctx is done.
func (w *BackupWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("interval", w.interval).Msg("backup worker started")
	defer w.logger.Info().Msg("backup worker stopped")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *BackupWorker) runOnce(ctx context.Context) bool {
	for attempt := 1; ; attempt++ {
		path, err := w.runner.Run(ctx)
		if err == nil {
			w.logger.Info().Str("path", path).Msg("scheduled backup complete")
			return true
		}
		if w.retry.Exhausted(attempt) {
			w.logger.Error().Err(err).Int("attempts", attempt).Msg("scheduled backup failed")
			return false
		}

		delay := w.retry.NextDelay(attempt)
		w.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("backup failed, retrying")
		if !sleepCtx(ctx, delay) {
			return false
		}
	}
}
