package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailstate/trailstate/pkg/state"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	// Start miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	redisURL := "redis://" + mr.Addr()

	store, err := NewRedisStore(redisURL, t.TempDir(), time.Hour, logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create redis store: %v", err)
	}

	return store, mr
}

func TestRedisStore_SaveAndLoadSession(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	doc := state.NewDocument("kestrel", "fen")
	doc, err := state.AppendLog(doc, "Set out from the White Sky camp.")
	require.NoError(t, err, "failed to build test document")

	require.NoError(t, store.SaveSession(ctx, "valley-run", doc))

	loaded, err := store.LoadSession(ctx, "valley-run")
	require.NoError(t, err)
	require.NotNil(t, loaded, "saved session should load back")
	assert.True(t, state.Equal(doc, loaded), "loaded session differs:\n%s", cmp.Diff(doc, loaded))
}

func TestRedisStore_LoadNonExistentSession(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	loaded, err := store.LoadSession(context.Background(), "never-saved")
	require.NoError(t, err, "a missing session is not an error")
	assert.Nil(t, loaded, "missing session should load as nil")
}

func TestRedisStore_DeleteSession(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, "short-lived", state.NewDocument()))
	require.NoError(t, store.DeleteSession(ctx, "short-lived"))

	loaded, err := store.LoadSession(ctx, "short-lived")
	require.NoError(t, err)
	assert.Nil(t, loaded, "session should be gone after delete")
}

func TestRedisStore_ListSessions(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	for _, id := range []string{"second", "first", "third"} {
		require.NoError(t, store.SaveSession(ctx, id, state.NewDocument()))
	}
	// An unrelated key must not show up as a session.
	require.NoError(t, mr.Set("catalogcache:weather", "{}"))

	ids, err := store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, ids, "ids should come back sorted")
}

func TestRedisStore_SessionTTL(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, "expiring", state.NewDocument()))
	assert.Equal(t, time.Hour, mr.TTL("session:expiring"))

	mr.FastForward(2 * time.Hour)
	loaded, err := store.LoadSession(ctx, "expiring")
	require.NoError(t, err)
	assert.Nil(t, loaded, "session should expire with its key")
}

func TestRedisStore_SaveInvalidArgs(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	assert.Error(t, store.SaveSession(ctx, "", state.NewDocument()), "empty session id")
	assert.Error(t, store.SaveSession(ctx, "no-doc", nil), "nil document")
}

func TestRedisStore_Ping(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()), "ping should fail after redis shutdown")
}
