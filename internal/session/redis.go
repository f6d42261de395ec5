package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mind-engage/edueval/internal/exam"
)

// RedisRegistry stores JSON snapshots of sessions so a student can resume
// after a restart. Keys expire after ttl of inactivity.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRegistry(addr, password string, db int, ttl time.Duration) *RedisRegistry {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisRegistryFromClient(rdb, ttl)
}

func NewRedisRegistryFromClient(client *redis.Client, ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisRegistry{client: client, ttl: ttl}
}

func sessionKey(id string) string        { return fmt.Sprintf("edueval:session:%s", id) }
func studentKey(studentID string) string { return fmt.Sprintf("edueval:student:%s", studentID) }

func (r *RedisRegistry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRegistry) Put(ctx context.Context, s *Session) error {
	buf, err := json.Marshal(s)
	if err != nil {
		return err
	}
	prev, err := r.client.Get(ctx, studentKey(s.StudentID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	pipe := r.client.TxPipeline()
	if prev != "" && prev != s.ID {
		pipe.Del(ctx, sessionKey(prev))
	}
	pipe.Set(ctx, sessionKey(s.ID), buf, r.ttl)
	pipe.Set(ctx, studentKey(s.StudentID), s.ID, r.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisRegistry) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: session %q", exam.ErrNotFound, id)
		}
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisRegistry) ActiveFor(ctx context.Context, studentID string) (*Session, error) {
	id, err := r.client.Get(ctx, studentKey(studentID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: no session for %q", exam.ErrNotFound, studentID)
		}
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *RedisRegistry) Delete(ctx context.Context, id string) error {
	s, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	// only drop the student pointer if it still points at this session
	cur, err := r.client.Get(ctx, studentKey(s.StudentID)).Result()
	if err == nil && cur == id {
		pipe.Del(ctx, studentKey(s.StudentID))
	}
	_, err = pipe.Exec(ctx)
	return err
}
