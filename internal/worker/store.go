package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aescanero/dago-libs/pkg/domain/state"
	"github.com/aescanero/dago-libs/pkg/ports"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// ErrStateNotFound is returned when no state is stored for an execution
	ErrStateNotFound = errors.New("state not found")

	// ErrStateUnavailable is returned when the state store could not be reached
	ErrStateUnavailable = errors.New("state store unavailable")
)

var _ ports.StateStorage = (*RedisStateStore)(nil)

// RedisStateStore implements ports.StateStorage using Redis JSON
type RedisStateStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStateStore creates a new Redis state store. A positive ttl is
// applied to every saved state.
func NewRedisStateStore(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *RedisStateStore {
	return &RedisStateStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *RedisStateStore) key(executionID string) string {
	return s.prefix + executionID
}

// Save saves execution state
func (s *RedisStateStore) Save(ctx context.Context, executionID string, st state.State) error {
	// Marshal state to JSON
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Save to Redis
	if err := s.client.Set(ctx, s.key(executionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save state: %w: %v", ErrStateUnavailable, err)
	}

	return nil
}

// Load loads execution state
func (s *RedisStateStore) Load(ctx context.Context, executionID string) (state.State, error) {
	// Get state from Redis
	data, err := s.client.Get(ctx, s.key(executionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("%w for execution %s", ErrStateNotFound, executionID)
		}
		return nil, fmt.Errorf("failed to load state: %w: %v", ErrStateUnavailable, err)
	}

	// Unmarshal JSON to state.State (which is map[string]interface{})
	var st state.State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	s.logger.Debug("state loaded",
		zap.String("execution_id", executionID),
		zap.Int("fields", len(st)),
	)

	return st, nil
}

// Delete deletes execution state
func (s *RedisStateStore) Delete(ctx context.Context, executionID string) error {
	if err := s.client.Del(ctx, s.key(executionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}

	return nil
}

// Exists checks if state exists for an execution
func (s *RedisStateStore) Exists(ctx context.Context, executionID string) (bool, error) {
	result, err := s.client.Exists(ctx, s.key(executionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	return result > 0, nil
}

// SetTTL sets a time-to-live for state data
func (s *RedisStateStore) SetTTL(ctx context.Context, executionID string, ttl time.Duration) error {
	if err := s.client.Expire(ctx, s.key(executionID), ttl).Err(); err != nil {
		return fmt.Errorf("failed to set TTL: %w", err)
	}

	return nil
}

// List returns all execution IDs that have stored state
func (s *RedisStateStore) List(ctx context.Context) ([]string, error) {
	var executionIDs []string

	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if id := strings.TrimPrefix(iter.Val(), s.prefix); id != "" {
			executionIDs = append(executionIDs, id)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	return executionIDs, nil
}

// SaveState persists execution state (compatibility method)
func (s *RedisStateStore) SaveState(ctx context.Context, st interface{}) error {
	executionID, stateMap, err := executionOf(st)
	if err != nil {
		return err
	}

	return s.Save(ctx, executionID, state.State(stateMap))
}

// GetState retrieves execution state (compatibility method)
func (s *RedisStateStore) GetState(ctx context.Context, executionID string) (interface{}, error) {
	return s.Load(ctx, executionID)
}

// executionOf extracts the execution ID a state map belongs to
func executionOf(st interface{}) (string, map[string]interface{}, error) {
	stateMap, ok := st.(map[string]interface{})
	if !ok {
		return "", nil, fmt.Errorf("expected map[string]interface{}, got %T", st)
	}

	for _, field := range []string{"execution_id", "graph_id"} {
		if id, ok := stateMap[field].(string); ok && id != "" {
			return id, stateMap, nil
		}
	}

	return "", nil, fmt.Errorf("state missing execution_id or graph_id field")
}
