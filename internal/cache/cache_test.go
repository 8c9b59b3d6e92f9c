package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	c := New()
	ctx := context.Background()
	calls := 0
	fetch := func(context.Context) (any, error) {
		calls++
		return []string{"a"}, nil
	}

	v, err := c.Load(ctx, "/dashboard/statuses", fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v)

	_, err = c.Load(ctx, "/dashboard/statuses", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second load is served from cache")

	c.Revalidate("/dashboard/statuses")
	_, err = c.Load(ctx, "/dashboard/statuses", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "revalidation forces a fetch")
	assert.Equal(t, 1, c.Revalidations("/dashboard/statuses"))
}

func TestLoadErrorNotCached(t *testing.T) {
	c := New()
	boom := errors.New("boom")
	_, err := c.Load(context.Background(), "/p", func(context.Context) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	_, ok := c.Get("/p")
	assert.False(t, ok)
}

func TestLoadDiscardsResultRevalidatedMidFetch(t *testing.T) {
	c := New()
	ctx := context.Background()
	path := "/dashboard/branches"

	v, err := c.Load(ctx, path, func(context.Context) (any, error) {
		// A write lands while the read is still in flight.
		c.Revalidate(path)
		return "old rows", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "old rows", v)
	_, cached := c.Get(path)
	assert.False(t, cached)

	v, err = c.Load(ctx, path, func(context.Context) (any, error) { return "new rows", nil })
	require.NoError(t, err)
	assert.Equal(t, "new rows", v)
	got, cached := c.Get(path)
	assert.True(t, cached)
	assert.Equal(t, "new rows", got)
}

func TestSubscribe(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := New(WithClock(func() time.Time { return at }))

	events, cancel := c.Subscribe(1)
	c.Revalidate("/dashboard/products")

	select {
	case ev := <-events:
		assert.Equal(t, Event{Path: "/dashboard/products", At: at}, ev)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	// A full buffer drops instead of blocking.
	c.Revalidate("/a")
	c.Revalidate("/b")

	cancel()
	cancel()
	_, open := <-events
	assert.True(t, open, "buffered event is still readable")
	_, open = <-events
	assert.False(t, open)
}
