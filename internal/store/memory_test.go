package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"dispatch-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastTx() TxOptions {
	return TxOptions{MaxRetries: 3, BaseDelay: time.Millisecond}
}

func completedJob(id string, completedAt *time.Time, rating *float64, employees ...string) *models.Job {
	job := &models.Job{ID: id, Status: models.JobStatusCompleted, CompletedAt: completedAt, ClientRating: rating}
	for _, e := range employees {
		job.AssignedEmployees = append(job.AssignedEmployees, models.AssignmentOffer{
			EmployeeID: e, EmployeeName: e, Status: models.OfferAccepted,
		})
	}
	return job
}

func ptrTime(t time.Time) *time.Time { return &t }
func ptrFloat(f float64) *float64    { return &f }

func TestMemoryStore_GetJob(t *testing.T) {
	s := NewMemoryStore(fastTx())
	s.PutJob(&models.Job{ID: "job-1", Title: "Flat"})

	job, err := s.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Flat", job.Title)
	assert.Equal(t, models.JobStatusPending, job.Status)

	job.Title = "mutated"
	again, _ := s.GetJob(context.Background(), "job-1")
	assert.Equal(t, "Flat", again.Title, "GetJob must return a copy")

	_, err = s.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestMemoryStore_Transact(t *testing.T) {
	ctx := context.Background()

	t.Run("commits and bumps version", func(t *testing.T) {
		s := NewMemoryStore(fastTx())
		s.PutJob(&models.Job{ID: "job-1"})

		job, err := s.Transact(ctx, "job-1", func(j *models.Job) error {
			j.Status = models.JobStatusSchedulePending
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), job.Version)

		stored, _ := s.GetJob(ctx, "job-1")
		assert.Equal(t, models.JobStatusSchedulePending, stored.Status)
		assert.Equal(t, int64(1), stored.Version)
	})

	t.Run("callback error aborts without write", func(t *testing.T) {
		s := NewMemoryStore(fastTx())
		s.PutJob(&models.Job{ID: "job-1"})
		boom := errors.New("boom")

		_, err := s.Transact(ctx, "job-1", func(j *models.Job) error {
			j.Title = "changed"
			return boom
		})
		assert.ErrorIs(t, err, boom)

		stored, _ := s.GetJob(ctx, "job-1")
		assert.Empty(t, stored.Title)
		assert.Equal(t, int64(0), stored.Version)
	})

	t.Run("retries after a concurrent write", func(t *testing.T) {
		s := NewMemoryStore(fastTx())
		s.PutJob(&models.Job{ID: "job-1"})

		calls := 0
		job, err := s.Transact(ctx, "job-1", func(j *models.Job) error {
			calls++
			if calls == 1 {
				s.PutJob(&models.Job{ID: "job-1", Title: "other writer"})
			}
			j.Status = models.JobStatusScheduled
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, "other writer", job.Title, "retry must see the concurrent write")
		assert.Equal(t, models.JobStatusScheduled, job.Status)
	})

	t.Run("gives up with ErrConflict", func(t *testing.T) {
		s := NewMemoryStore(TxOptions{MaxRetries: 2, BaseDelay: time.Millisecond})
		s.PutJob(&models.Job{ID: "job-1"})

		_, err := s.Transact(ctx, "job-1", func(j *models.Job) error {
			s.PutJob(&models.Job{ID: "job-1"})
			return nil
		})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("missing job", func(t *testing.T) {
		s := NewMemoryStore(fastTx())
		_, err := s.Transact(ctx, "nope", func(*models.Job) error { return nil })
		assert.ErrorIs(t, err, ErrJobNotFound)
	})
}

func TestMemoryStore_Transact_ConcurrentWritersAllLand(t *testing.T) {
	s := NewMemoryStore(TxOptions{MaxRetries: 1000, BaseDelay: time.Microsecond})
	s.PutJob(&models.Job{ID: "job-1"})

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Transact(context.Background(), "job-1", func(j *models.Job) error {
				j.Tasks = append(j.Tasks, models.Task{ID: fmt.Sprint(i)})
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	job, _ := s.GetJob(context.Background(), "job-1")
	assert.Len(t, job.Tasks, writers)
	assert.Equal(t, int64(writers), job.Version)
}

func TestMemoryStore_QueryEmployees(t *testing.T) {
	s := NewMemoryStore(fastTx())
	s.PutEmployee(models.Employee{ID: "b", Name: "Bea", Availability: models.Availability{Available: true}})
	s.PutEmployee(models.Employee{ID: "a", Name: "Ann", Skills: []string{"windows"}})
	s.PutEmployee(models.Employee{ID: "c", Name: "Cy", Availability: models.Availability{Available: true}})

	all, err := s.QueryEmployees(context.Background(), models.EmployeeFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, []string{models.DefaultSkill}, all[1].Skills)

	picked, _ := s.QueryEmployees(context.Background(), models.EmployeeFilter{IDs: []string{"c", "a"}})
	assert.Len(t, picked, 2)

	available, _ := s.QueryEmployees(context.Background(), models.EmployeeFilter{AvailableOnly: true})
	assert.Len(t, available, 2)

	none, _ := s.QueryEmployees(context.Background(), models.EmployeeFilter{IDs: []string{}})
	assert.Empty(t, none)
}

func TestMemoryStore_QueryCompletedJobs(t *testing.T) {
	s := NewMemoryStore(fastTx())
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.PutJob(completedJob("old", ptrTime(base), ptrFloat(4), "emp-1"))
	s.PutJob(completedJob("new", ptrTime(base.Add(48*time.Hour)), nil, "emp-1", "emp-2"))
	s.PutJob(completedJob("undated", nil, ptrFloat(2), "emp-1"))
	s.PutJob(completedJob("other", ptrTime(base), nil, "emp-2"))
	s.PutJob(&models.Job{ID: "open", Status: models.JobStatusScheduled, AssignedEmployees: []models.AssignmentOffer{{EmployeeID: "emp-1"}}})

	jobs, err := s.QueryCompletedJobs(context.Background(), "emp-1", 10)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "new", jobs[0].ID)
	assert.Equal(t, "old", jobs[1].ID)
	assert.Equal(t, "undated", jobs[2].ID)

	limited, _ := s.QueryCompletedJobs(context.Background(), "emp-1", 1)
	assert.Len(t, limited, 1)

	h, err := s.WorkHistory(context.Background(), "emp-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 3, h.TotalJobs)
	require.NotNil(t, h.AvgRating)
	assert.InDelta(t, 3.0, *h.AvgRating, 1e-9)
	require.NotNil(t, h.LastJobDate)
	assert.True(t, h.LastJobDate.Equal(base.Add(48*time.Hour)))
}
