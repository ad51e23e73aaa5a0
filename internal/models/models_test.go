package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingState(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		st, err := ParseBookingState("")
		require.NoError(t, err)
		assert.Equal(t, StateAll, st)
	})

	t.Run("Known", func(t *testing.T) {
		for _, raw := range []string{"ALL", "CURRENT", "FUTURE", "PAST", "WAITING", "REJECTED"} {
			st, err := ParseBookingState(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, BookingState(raw), st)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := ParseBookingState("UNSUPPORTED_STATUS")
		require.Error(t, err)
		assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", err.Error())

		_, err = ParseBookingState("approved")
		assert.Error(t, err)
	})
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Offset: 0, Limit: 10}, NewPage(0, 10))
	assert.Equal(t, Page{Offset: 10, Limit: 10}, NewPage(15, 10))
	assert.Equal(t, Page{Offset: 0, Limit: DefaultPageSize}, NewPage(-3, 0))
	assert.Equal(t, MaxPageSize, NewPage(0, 1000).Limit)
}

func TestPatches(t *testing.T) {
	name := "Drill"
	avail := false
	item := &Item{ID: 1, Name: "Old", Description: "keep", Available: true, OwnerID: 7}
	ItemPatch{Name: &name, Available: &avail}.Apply(item)
	assert.Equal(t, "Drill", item.Name)
	assert.Equal(t, "keep", item.Description)
	assert.False(t, item.Available)
	assert.Equal(t, int64(7), item.OwnerID)

	email := "new@example.com"
	user := &User{ID: 1, Name: "Ann", Email: "old@example.com"}
	UserPatch{Email: &email}.Apply(user)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, "new@example.com", user.Email)
}

func TestBookingIsActiveAt(t *testing.T) {
	now := time.Now()
	b := &Booking{Start: now.Add(-time.Minute), End: now.Add(time.Minute)}
	assert.True(t, b.IsActiveAt(now))
	assert.True(t, b.IsActiveAt(b.Start))
	assert.False(t, b.IsActiveAt(b.End))
}

func TestToItemRequestView(t *testing.T) {
	reqID := int64(3)
	r := &ItemRequest{ID: 3, Description: "need a ladder", Created: time.Now()}
	view := ToItemRequestView(r, []*Item{{ID: 9, Name: "Ladder", OwnerID: 2, RequestID: &reqID}})
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(2), view.Items[0].OwnerID)
	assert.Equal(t, &reqID, view.Items[0].RequestID)

	empty := ToItemRequestView(r, nil)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}
