// Package stage persists GenerationRequest stage transitions to Redis with
// a TTL, generalizing the session manager's Redis key-per-entity pattern
// (internal/pkg/session) so a poller surviving a process restart still
// observes monotonic stages — the teacher's own in-memory task-status map
// calls out "in production, use Redis" for exactly this.
package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dared22/mealplanner/internal/model"
	"github.com/redis/go-redis/v9"
)

// defaultTTL keeps a finished request's status around long enough for a
// slow poller to observe the terminal stage.
const defaultTTL = 1 * time.Hour

// Store persists and retrieves GenerationRequest records.
type Store interface {
	Put(ctx context.Context, req *model.GenerationRequest) error
	Get(ctx context.Context, requestID string) (*model.GenerationRequest, error)
	Delete(ctx context.Context, requestID string) error
}

type redisStore struct {
	client *redis.Client
}

func NewStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func key(requestID string) string {
	return fmt.Sprintf("genreq:%s", requestID)
}

func (s *redisStore) Put(ctx context.Context, req *model.GenerationRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal generation request: %w", err)
	}
	if err := s.client.Set(ctx, key(req.RequestID), data, defaultTTL).Err(); err != nil {
		return fmt.Errorf("failed to store generation request in Redis: %w", err)
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, requestID string) (*model.GenerationRequest, error) {
	data, err := s.client.Get(ctx, key(requestID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get generation request from Redis: %w", err)
	}

	var req model.GenerationRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal generation request: %w", err)
	}
	return &req, nil
}

func (s *redisStore) Delete(ctx context.Context, requestID string) error {
	if err := s.client.Del(ctx, key(requestID)).Err(); err != nil {
		return fmt.Errorf("failed to delete generation request from Redis: %w", err)
	}
	return nil
}
