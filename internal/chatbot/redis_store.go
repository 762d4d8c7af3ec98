package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis as JSON under Prefix+conversationID.
// Expiry is enforced by key TTL; reads use GETEX so each access slides it.
//
// Messages for one conversation are serialized per process only. Two
// instances receiving messages for the same conversation may interleave.
type RedisStore struct {
	Client redis.Cmdable
	Prefix string
	TTL    time.Duration
}

// NewRedisStore returns a Redis-backed SessionStore.
func NewRedisStore(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, Prefix: prefix, TTL: ttl}
}

func (r *RedisStore) key(id string) string { return r.Prefix + id }

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.Client.GetEx(ctx, r.key(id), r.TTL).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Answers == nil {
		s.Answers = make(map[uint]Answer)
	}
	return &s, nil
}

func (r *RedisStore) Set(ctx context.Context, s *Session) error {
	if s == nil || s.ConversationID == "" {
		return errors.New("chatbot: session without conversation id")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.Client.Set(ctx, r.key(s.ConversationID), b, r.TTL).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.Client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

func (r *RedisStore) Touch(ctx context.Context, id string) error {
	ok, err := r.Client.Expire(ctx, r.key(id), r.TTL).Result()
	if err != nil {
		return fmt.Errorf("redis touch session: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}
