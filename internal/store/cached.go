// internal/store/cached.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dispatch-workers/internal/common/logger"
	"dispatch-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const historyKeyPrefix = "allocation:history:"

// CachedStore fronts another store with a Redis cache of work-history
// summaries. Cache failures are logged and fall through to the wrapped store.
type CachedStore struct {
	RecordStore
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

type cachedHistory struct {
	Limit   int                `json:"limit"`
	History models.WorkHistory `json:"history"`
}

func NewCachedStore(inner RecordStore, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		RecordStore: inner,
		redis:       rdb,
		ttl:         ttl,
		logger:      log.WithFields(map[string]interface{}{"component": "history-cache"}),
	}
}

func historyKey(employeeID string) string {
	return historyKeyPrefix + employeeID
}

func (s *CachedStore) WorkHistory(ctx context.Context, employeeID string, limit int) (models.WorkHistory, error) {
	key := historyKey(employeeID)

	raw, err := s.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var entry cachedHistory
		if jerr := json.Unmarshal(raw, &entry); jerr == nil && entry.Limit == limit {
			return entry.History, nil
		}
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("history cache read failed", map[string]interface{}{
			"employeeId": employeeID,
			"error":      err.Error(),
		})
	}

	history, err := summariseHistory(ctx, s.RecordStore, employeeID, limit)
	if err != nil {
		return models.WorkHistory{}, err
	}

	payload, err := json.Marshal(cachedHistory{Limit: limit, History: history})
	if err != nil {
		return history, nil
	}
	if err := s.redis.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("history cache write failed", map[string]interface{}{
			"employeeId": employeeID,
			"error":      err.Error(),
		})
	}
	return history, nil
}

func (s *CachedStore) InvalidateHistory(ctx context.Context, employeeIDs ...string) error {
	if len(employeeIDs) == 0 {
		return nil
	}
	keys := make([]string, len(employeeIDs))
	for i, id := range employeeIDs {
		keys[i] = historyKey(id)
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate history cache: %w", err)
	}
	return nil
}
