package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/gomind/testing/suite"
)

func TestRedisStore(t *testing.T) {
	ctx, st := suite.NewRedis(t)
	store := NewRedisStore(st.Storage, time.Minute)

	t.Run("missing snapshot", func(t *testing.T) {
		_, err := store.Get(ctx, "nope")
		require.ErrorIs(t, err, ErrSnapshotNotFound)
	})

	t.Run("save get delete", func(t *testing.T) {
		// Given: a snapshot of a running session
		snapshot := &Snapshot{
			SessionID: "abc",
			Phase:     "awaiting_human_move",
			Board:     "W.\n.B\n",
			Turns:     1,
			Moves:     2,
			UpdatedAt: time.Now().UTC().Truncate(time.Second),
		}

		// When: it is saved
		require.NoError(t, store.Save(ctx, snapshot))

		// Then: it can be read back and carries a TTL
		got, err := store.Get(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, snapshot.Board, got.Board)
		assert.Equal(t, snapshot.Turns, got.Turns)
		assert.True(t, snapshot.UpdatedAt.Equal(got.UpdatedAt))

		ttl, err := st.Storage.TTL(ctx, "session:abc").Result()
		require.NoError(t, err)
		assert.Positive(t, ttl)

		require.NoError(t, store.Delete(ctx, "abc"))
		_, err = store.Get(ctx, "abc")
		assert.ErrorIs(t, err, ErrSnapshotNotFound)
	})
}

func TestNoopStore(t *testing.T) {
	var store SnapshotStore = NoopStore{}
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Snapshot{SessionID: "x"}))
	_, err := store.Get(ctx, "x")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.NoError(t, store.Delete(ctx, "x"))
	assert.NoError(t, store.Close())
}
