package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name string `json:"name"`
}

func TestNew_NilClientIsNoop(t *testing.T) {
	c := New(nil)
	require.IsType(t, Noop{}, c)

	require.NoError(t, c.Set(context.Background(), "k", entry{Name: "a"}, time.Minute))

	var got entry
	assert.ErrorIs(t, c.Get(context.Background(), "k", &got), ErrMiss)
}

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "barbers:active", []entry{{Name: "Rafa"}}, time.Minute))

	var got []entry
	require.NoError(t, m.Get(ctx, "barbers:active", &got))
	assert.Equal(t, []entry{{Name: "Rafa"}}, got)

	require.NoError(t, m.Delete(ctx, "barbers:active"))
	assert.ErrorIs(t, m.Get(ctx, "barbers:active", &got), ErrMiss)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", entry{Name: "a"}, time.Minute))

	now = now.Add(2 * time.Minute)
	var got entry
	assert.ErrorIs(t, m.Get(ctx, "k", &got), ErrMiss)
	assert.Zero(t, m.Len())
}

func TestMemory_SweepsUnreadExpiredEntries(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "stale", entry{Name: "a"}, time.Minute))
	now = now.Add(time.Hour)

	for i := 1; i < sweepEvery; i++ {
		require.NoError(t, m.Set(ctx, "fresh", entry{Name: "b"}, time.Minute))
	}

	assert.Equal(t, 1, m.Len())
}
