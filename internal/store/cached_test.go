package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"dispatch-workers/internal/common/logger"
	"dispatch-workers/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedStore_CachesUntilInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	inner := NewMemoryStore(fastTx())
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	inner.PutJob(completedJob("job-1", ptrTime(base), ptrFloat(5), "emp-1"))

	cached := NewCachedStore(inner, rdb, 10*time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	h, err := cached.WorkHistory(ctx, "emp-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, h.TotalJobs)
	assert.True(t, mr.Exists(historyKey("emp-1")))
	assert.Equal(t, 10*time.Minute, mr.TTL(historyKey("emp-1")))

	inner.PutJob(completedJob("job-2", ptrTime(base.Add(time.Hour)), nil, "emp-1"))

	h, err = cached.WorkHistory(ctx, "emp-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, h.TotalJobs, "second read is served from cache")

	h, err = cached.WorkHistory(ctx, "emp-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, h.TotalJobs, "different limit bypasses the cached entry")

	require.NoError(t, cached.InvalidateHistory(ctx, "emp-1", "emp-2"))
	assert.False(t, mr.Exists(historyKey("emp-1")))

	h, err = cached.WorkHistory(ctx, "emp-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, h.TotalJobs)
	require.NotNil(t, h.LastJobDate)
	assert.True(t, h.LastJobDate.Equal(base.Add(time.Hour)))
}

func TestCachedStore_DelegatesRecordOperations(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	inner := NewMemoryStore(fastTx())
	inner.PutJob(&models.Job{ID: "job-1"})
	cached := NewCachedStore(inner, rdb, time.Minute, logger.NewTestLogger(t))

	job, err := cached.Transact(context.Background(), "job-1", func(j *models.Job) error {
		j.Title = "via cache"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "via cache", job.Title)

	var _ HistoryStore = cached
}

func TestCachedStore_RedisFailuresFallThrough(t *testing.T) {
	db, mock := redismock.NewClientMock()

	inner := NewMemoryStore(fastTx())
	inner.PutJob(completedJob("job-1", nil, ptrFloat(3), "emp-1"))
	cached := NewCachedStore(inner, db, time.Minute, logger.NewTestLogger(t))

	expected := models.WorkHistory{TotalJobs: 1, AvgRating: ptrFloat(3)}
	payload, err := json.Marshal(cachedHistory{Limit: 10, History: expected})
	require.NoError(t, err)

	mock.ExpectGet(historyKey("emp-1")).SetErr(errors.New("redis down"))
	mock.ExpectSet(historyKey("emp-1"), payload, time.Minute).SetErr(errors.New("redis down"))

	h, err := cached.WorkHistory(context.Background(), "emp-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, h.TotalJobs)
	require.NotNil(t, h.AvgRating)
	assert.Equal(t, 3.0, *h.AvgRating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStore_InvalidateError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cached := NewCachedStore(NewMemoryStore(fastTx()), db, time.Minute, logger.NewTestLogger(t))

	mock.ExpectDel(historyKey("emp-1")).SetErr(errors.New("redis down"))

	err := cached.InvalidateHistory(context.Background(), "emp-1")
	assert.Error(t, err)
	assert.NoError(t, cached.InvalidateHistory(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
