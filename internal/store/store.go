// internal/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch-workers/internal/common/metrics"
	"dispatch-workers/internal/models"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrConflict    = errors.New("job modified concurrently")
	ErrUnavailable = errors.New("record store unavailable")
)

// TxFunc mutates a freshly read copy of the job. It may run more than once
// when the write loses a race, so it must derive everything from its
// argument. Returning an error aborts the transaction without a write.
type TxFunc func(job *models.Job) error

// RecordStore is the engine's view of the record store. Transact is a
// single-record read-modify-write; the committed job is returned.
type RecordStore interface {
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	Transact(ctx context.Context, jobID string, fn TxFunc) (*models.Job, error)
	QueryEmployees(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error)
	QueryCompletedJobs(ctx context.Context, employeeID string, limit int) ([]models.Job, error)
}

// HistoryStore adds the derived work-history lookups the scorer needs.
type HistoryStore interface {
	RecordStore
	WorkHistory(ctx context.Context, employeeID string, limit int) (models.WorkHistory, error)
	InvalidateHistory(ctx context.Context, employeeIDs ...string) error
}

type TxOptions struct {
	MaxRetries int
	BaseDelay  time.Duration
}

const maxTxDelay = 2 * time.Second

var DefaultTxOptions = TxOptions{MaxRetries: 5, BaseDelay: 50 * time.Millisecond}

func (o TxOptions) withDefaults() TxOptions {
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultTxOptions.MaxRetries
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultTxOptions.BaseDelay
	}
	return o
}

// retryOnConflict runs attempt until it commits, fails, or runs out of
// tries. attempt reports committed=false when it lost a version race.
func retryOnConflict(ctx context.Context, opts TxOptions, jobID string, attempt func() (*models.Job, bool, error)) (*models.Job, error) {
	opts = opts.withDefaults()
	delay := opts.BaseDelay

	for i := 1; ; i++ {
		job, committed, err := attempt()
		if err != nil {
			return nil, err
		}
		if committed {
			return job, nil
		}

		metrics.StoreConflicts.Inc()
		if i >= opts.MaxRetries {
			return nil, fmt.Errorf("%w: job %s after %d attempts", ErrConflict, jobID, i)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay = min(delay*2, maxTxDelay)
	}
}

func summariseHistory(ctx context.Context, s RecordStore, employeeID string, limit int) (models.WorkHistory, error) {
	jobs, err := s.QueryCompletedJobs(ctx, employeeID, limit)
	if err != nil {
		return models.WorkHistory{}, err
	}
	return models.SummariseHistory(jobs), nil
}

func normaliseEmployee(e *models.Employee) {
	if len(e.Skills) == 0 {
		e.Skills = []string{models.DefaultSkill}
	}
}
