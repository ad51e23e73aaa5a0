package database

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentStatusUpdate(t *testing.T) {
	logger := zerolog.New(io.Discard)
	db, err := NewDB(filepath.Join(t.TempDir(), "concurrency.db"), &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	owner := seedUser(t, db, "owner")
	booker := seedUser(t, db, "booker")
	item := seedItem(t, db, owner.ID, "Kayak", true)
	start := time.Now().Add(24 * time.Hour)
	booking := seedBooking(t, db, item.ID, booker.ID, start, start.Add(time.Hour), models.StatusWaiting)

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(i int) {
			defer wg.Done()
			to := models.StatusApproved
			if i%2 == 1 {
				to = models.StatusRejected
			}
			results <- db.InTx(ctx, func(repo domain.Repository) error {
				return repo.UpdateBookingStatusFrom(ctx, booking.ID, models.StatusWaiting, to)
			})
		}(i)
	}

	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrConcurrentModification):
			conflicted++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, numGoroutines-1, conflicted)

	final, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.NotEqual(t, models.StatusWaiting, final.Status)
}
