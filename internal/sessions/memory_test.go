package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escape-planner/internal/plans"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	sess := plans.Session{ID: "s-1", State: plans.StatePlanReady, Plan: &plans.GeneratedPlan{Text: "plan"}}
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, plans.StatePlanReady, got.State)
	assert.Equal(t, "plan", got.Plan.Text)

	require.NoError(t, store.Delete(ctx, "s-1"))
	_, err = store.Get(ctx, "s-1")
	assert.ErrorIs(t, err, plans.ErrSessionNotFound)
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, time.June, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, plans.Session{ID: "a"}))
	require.NoError(t, store.Save(ctx, plans.Session{ID: "b"}))

	now = now.Add(2 * time.Minute)
	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, plans.ErrSessionNotFound)
	assert.Equal(t, 1, store.Sweep())
}

func TestMemoryStoreHonoursContext(t *testing.T) {
	store := NewMemoryStore(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Save(ctx, plans.Session{ID: "x"}), context.Canceled)
}

func TestRunJanitorStopsOnCancel(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
