package database

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shareit/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupService(t *testing.T) {
	tempDir := t.TempDir()
	storagePath := filepath.Join(tempDir, "backups")

	logger := zerolog.New(io.Discard)
	db, err := NewDB(filepath.Join(tempDir, "source.db"), &logger)
	require.NoError(t, err)
	defer db.Close()
	seedUser(t, db, "alice")

	s := NewBackupService(db, config.BackupConfig{StoragePath: storagePath, RetentionDays: 1}, &logger)

	t.Run("PerformBackup", func(t *testing.T) {
		path, err := s.PerformBackup(context.Background())
		require.NoError(t, err)

		copyDB, err := NewDB(path, &logger)
		require.NoError(t, err)
		defer copyDB.Close()

		users, err := copyDB.ListUsers(context.Background())
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("CleanupOldBackups", func(t *testing.T) {
		oldFile := filepath.Join(storagePath, "shareit_old.db")
		require.NoError(t, os.WriteFile(oldFile, []byte("old"), 0o644))
		oldTime := time.Now().AddDate(0, 0, -2)
		require.NoError(t, os.Chtimes(oldFile, oldTime, oldTime))

		assert.Equal(t, 1, s.CleanupOldBackups())

		files, err := os.ReadDir(storagePath)
		require.NoError(t, err)
		assert.Len(t, files, 1)
		assert.NotEqual(t, "shareit_old.db", files[0].Name())
	})
}

func TestBackupService_InMemory(t *testing.T) {
	db := setupTestDB(t)
	logger := zerolog.Nop()
	s := NewBackupService(db, config.BackupConfig{StoragePath: t.TempDir()}, &logger)

	_, err := s.Run(context.Background())
	assert.Error(t, err)
}
