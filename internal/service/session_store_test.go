package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	session, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, session)

	original := &PracticeSession{
		AttemptID:      "attempt-1",
		CurrentWorkout: 7,
		StartedAt:      time.Now(),
		Remaining:      []uint{1, 2, 3},
	}
	require.NoError(t, store.Save(ctx, 1, original))

	loaded, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, original.AttemptID, loaded.AttemptID)
	assert.Equal(t, original.Remaining, loaded.Remaining)

	// The store hands out copies; mutating one must not leak into another.
	loaded.Seen = append(loaded.Seen, 1)
	again, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, again.Seen)

	require.NoError(t, store.Clear(ctx, 1))
	gone, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestMemorySessionStoreIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	require.NoError(t, store.Save(ctx, 1, &PracticeSession{AttemptID: "a"}))
	require.NoError(t, store.Save(ctx, 2, &PracticeSession{AttemptID: "b"}))

	require.NoError(t, store.Clear(ctx, 1))
	remaining, err := store.Get(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, remaining)
	assert.Equal(t, "b", remaining.AttemptID)
}

func TestPracticeSessionHasSeen(t *testing.T) {
	session := &PracticeSession{Seen: []uint{2, 5}}
	assert.True(t, session.HasSeen(2))
	assert.True(t, session.HasSeen(5))
	assert.False(t, session.HasSeen(3))
}
