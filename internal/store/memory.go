// internal/store/memory.go
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"dispatch-workers/internal/models"
)

// MemoryStore keeps records in process. It applies the same version check
// as PostgresStore and is used by tests and the memory store mode.
type MemoryStore struct {
	mu        sync.RWMutex
	jobs      map[string]*models.Job
	employees map[string]models.Employee
	opts      TxOptions
	now       func() time.Time
}

func NewMemoryStore(opts TxOptions) *MemoryStore {
	return &MemoryStore{
		jobs:      make(map[string]*models.Job),
		employees: make(map[string]models.Employee),
		opts:      opts,
		now:       time.Now,
	}
}

// PutJob inserts or replaces a job and bumps its version.
func (s *MemoryStore) PutJob(job *models.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := job.Clone()
	if prev, ok := s.jobs[c.ID]; ok && c.Version <= prev.Version {
		c.Version = prev.Version + 1
	}
	if c.Status == "" {
		c.Status = models.JobStatusPending
	}
	s.jobs[c.ID] = c
}

func (s *MemoryStore) PutEmployee(e models.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.Skills = append([]string(nil), e.Skills...)
	s.employees[e.ID] = e
}

func (s *MemoryStore) GetJob(_ context.Context, jobID string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return job.Clone(), nil
}

func (s *MemoryStore) Transact(ctx context.Context, jobID string, fn TxFunc) (*models.Job, error) {
	return retryOnConflict(ctx, s.opts, jobID, func() (*models.Job, bool, error) {
		job, err := s.GetJob(ctx, jobID)
		if err != nil {
			return nil, false, err
		}
		expected := job.Version
		if err := fn(job); err != nil {
			return nil, false, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		current, ok := s.jobs[jobID]
		if !ok {
			return nil, false, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}
		if current.Version != expected {
			return nil, false, nil
		}
		job.ID = jobID
		job.Version = expected + 1
		job.UpdatedAt = s.now()
		s.jobs[jobID] = job.Clone()
		return job, true, nil
	})
}

func (s *MemoryStore) QueryEmployees(_ context.Context, filter models.EmployeeFilter) ([]models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var want map[string]bool
	if filter.IDs != nil {
		want = make(map[string]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			want[id] = true
		}
	}

	out := make([]models.Employee, 0, len(s.employees))
	for id, e := range s.employees {
		if want != nil && !want[id] {
			continue
		}
		if filter.AvailableOnly && !e.Availability.Available {
			continue
		}
		e.Skills = append([]string(nil), e.Skills...)
		normaliseEmployee(&e)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) QueryCompletedJobs(_ context.Context, employeeID string, limit int) ([]models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Job
	for _, job := range s.jobs {
		if job.Status == models.JobStatusCompleted && job.FindOffer(employeeID) >= 0 {
			out = append(out, *job.Clone())
		}
	}
	// Newest first; jobs without a completion time sort last.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CompletedAt, out[j].CompletedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return out[i].ID < out[j].ID
		default:
			return a.After(*b)
		}
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) WorkHistory(ctx context.Context, employeeID string, limit int) (models.WorkHistory, error) {
	return summariseHistory(ctx, s, employeeID, limit)
}

// InvalidateHistory is a no-op; history is always derived on read.
func (s *MemoryStore) InvalidateHistory(context.Context, ...string) error {
	return nil
}
