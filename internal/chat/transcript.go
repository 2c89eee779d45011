package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TurnRecord is one utterance of a conversation, visitor or assistant.
type TurnRecord struct {
	Role string    `json:"role"` // "visitor" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// TranscriptStore persists conversation transcripts for support review. The
// engine treats it as best-effort: append failures are logged, never
// surfaced to the visitor.
type TranscriptStore interface {
	Append(ctx context.Context, conversationID string, rec TurnRecord) error
	History(ctx context.Context, conversationID string) ([]TurnRecord, error)
}

const transcriptTTL = 24 * time.Hour

// RedisTranscriptStore keeps transcripts in a Redis list per conversation,
// expiring a day after the last turn.
type RedisTranscriptStore struct {
	client *redis.Client
}

// NewRedisTranscriptStore creates a transcript store on the given client.
func NewRedisTranscriptStore(client *redis.Client) *RedisTranscriptStore {
	if client == nil {
		panic("chat: redis client required")
	}
	return &RedisTranscriptStore{client: client}
}

func transcriptKey(conversationID string) string {
	return "chat:transcript:" + conversationID
}

// Append pushes a turn onto the conversation's transcript and refreshes the
// retention window.
func (s *RedisTranscriptStore) Append(ctx context.Context, conversationID string, rec TurnRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("chat: marshal turn: %w", err)
	}
	key := transcriptKey(conversationID)
	if err := s.client.RPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("chat: append turn: %w", err)
	}
	if err := s.client.Expire(ctx, key, transcriptTTL).Err(); err != nil {
		return fmt.Errorf("chat: expire transcript: %w", err)
	}
	return nil
}

// History returns the full transcript, oldest first.
func (s *RedisTranscriptStore) History(ctx context.Context, conversationID string) ([]TurnRecord, error) {
	raw, err := s.client.LRange(ctx, transcriptKey(conversationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("chat: load transcript: %w", err)
	}
	out := make([]TurnRecord, 0, len(raw))
	for _, item := range raw {
		var rec TurnRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("chat: decode turn: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
