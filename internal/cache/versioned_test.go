package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testView struct {
	Total   int     `json:"total"`
	WinRate float64 `json:"win_rate"`
}

func newTestCache(t *testing.T) (*VersionedCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewVersioned(client, 5*time.Minute), mr
}

func TestVersionedCache_MissThenHit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var got testView
	err := c.Get(ctx, 1, "overview", &got)
	assert.ErrorIs(t, err, ErrMiss)

	want := testView{Total: 42, WinRate: 0.57}
	require.NoError(t, c.Set(ctx, 1, "overview", want))

	require.NoError(t, c.Get(ctx, 1, "overview", &got))
	assert.Equal(t, want, got)
}

func TestVersionedCache_BumpInvalidates(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 7, "overview", testView{Total: 10}))

	var got testView
	require.NoError(t, c.Get(ctx, 7, "overview", &got))

	require.NoError(t, c.Bump(ctx, 7))

	err := c.Get(ctx, 7, "overview", &got)
	assert.ErrorIs(t, err, ErrMiss, "bumped version must orphan the old entry")

	// Writes after the bump land on the new version
	require.NoError(t, c.Set(ctx, 7, "overview", testView{Total: 11}))
	require.NoError(t, c.Get(ctx, 7, "overview", &got))
	assert.Equal(t, 11, got.Total)
}

func TestVersionedCache_VersionsAreIndependentPerUser(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 1, "overview", testView{Total: 1}))
	require.NoError(t, c.Set(ctx, 2, "overview", testView{Total: 2}))

	require.NoError(t, c.Bump(ctx, 1))

	var got testView
	assert.ErrorIs(t, c.Get(ctx, 1, "overview", &got), ErrMiss)
	require.NoError(t, c.Get(ctx, 2, "overview", &got))
	assert.Equal(t, 2, got.Total)
}

func TestVersionedCache_GetSurfacesRedisErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewVersioned(client, time.Minute)
	ctx := context.Background()

	wantErr := errors.New("connection reset")
	mock.ExpectGet(versionKey(9)).SetErr(wantErr)

	var got testView
	err := c.Get(ctx, 9, "overview", &got)
	assert.ErrorIs(t, err, wantErr, "transport errors must not be mistaken for a miss")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVersionedCache_EntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 3, "origins", testView{Total: 5}))

	mr.FastForward(6 * time.Minute)

	var got testView
	assert.ErrorIs(t, c.Get(ctx, 3, "origins", &got), ErrMiss)
}
