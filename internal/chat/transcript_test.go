package chat

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTranscriptStore(t *testing.T) (*RedisTranscriptStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTranscriptStore(client), mr
}

func TestTranscriptAppendAndHistory(t *testing.T) {
	store, _ := newTranscriptStore(t)
	ctx := context.Background()
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, "conv-1", TurnRecord{Role: "visitor", Text: "Hi", At: at}))
	require.NoError(t, store.Append(ctx, "conv-1", TurnRecord{Role: "assistant", Text: "Hello!", At: at}))

	history, err := store.History(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "visitor", history[0].Role)
	assert.Equal(t, "Hi", history[0].Text)
	assert.Equal(t, "assistant", history[1].Role)
}

func TestTranscriptIsolatesConversations(t *testing.T) {
	store, _ := newTranscriptStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "conv-1", TurnRecord{Role: "visitor", Text: "Hi"}))

	history, err := store.History(ctx, "conv-2")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestTranscriptExpires(t *testing.T) {
	store, mr := newTranscriptStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "conv-1", TurnRecord{Role: "visitor", Text: "Hi"}))
	mr.FastForward(transcriptTTL + time.Minute)

	history, err := store.History(ctx, "conv-1")
	require.NoError(t, err)
	assert.Empty(t, history)
}
