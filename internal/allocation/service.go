// Package allocation runs the matching and allocation operations against
// the record store. The scoring, catalog, distribution and lifecycle
// packages stay pure; this package owns the reads, the transactions and the
// audit trail around them.
package allocation

import (
	"context"
	"time"

	"dispatch-workers/internal/allocation/catalog"
	"dispatch-workers/internal/allocation/distribute"
	"dispatch-workers/internal/allocation/lifecycle"
	"dispatch-workers/internal/allocation/scoring"
	"dispatch-workers/internal/audit"
	"dispatch-workers/internal/common/logger"
	"dispatch-workers/internal/common/metrics"
	"dispatch-workers/internal/models"
	"dispatch-workers/internal/store"
)

const (
	DefaultHistoryLimit = 10

	// Catalog tags used when a job carries none.
	DefaultJobType      = catalog.JobTypeRegular
	DefaultBuildingType = catalog.BuildingHouse
)

type Options struct {
	HistoryLimit int
	Clock        func() time.Time
}

type Service struct {
	store    store.HistoryStore
	recorder *audit.Recorder
	scorer   *scoring.Scorer
	logger   logger.Logger
	limit    int
	now      func() time.Time
}

func NewService(st store.HistoryStore, recorder *audit.Recorder, log logger.Logger, opts Options) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{
		store:    st,
		recorder: recorder,
		scorer:   scoring.NewScorer(scoring.WithClock(opts.Clock)),
		logger:   log.WithFields(map[string]interface{}{"component": "allocation"}),
		limit:    opts.HistoryLimit,
		now:      opts.Clock,
	}
}

// ==========================
// Ranking
// ==========================

type RankRequest struct {
	JobID         string
	AvailableOnly bool
}

type RankResult struct {
	JobID          string
	Candidates     []models.RankedCandidate
	RequiredSkills []string
	RankedAt       time.Time
}

// RankCandidates scores every employee against the job. When the job has no
// tasks yet the default checklist stands in for its skill requirements.
// Missing work history degrades to neutral defaults.
func (s *Service) RankCandidates(ctx context.Context, req RankRequest) (*RankResult, error) {
	job, err := s.store.GetJob(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	employees, err := s.store.QueryEmployees(ctx, models.EmployeeFilter{AvailableOnly: req.AvailableOnly})
	if err != nil {
		return nil, err
	}

	tasks := job.Tasks
	if len(tasks) == 0 {
		tasks = checklistFor(job, "", "")
	}

	for i := range employees {
		history, err := s.store.WorkHistory(ctx, employees[i].ID, s.limit)
		if err != nil {
			s.logger.Warn("work history unavailable, scoring with defaults", map[string]interface{}{
				"employeeId": employees[i].ID,
				"error":      err.Error(),
			})
			continue
		}
		history.Apply(&employees[i])
	}

	ranked := s.scorer.Rank(employees, job, tasks)
	metrics.CandidatesRanked.Add(float64(len(ranked)))

	return &RankResult{
		JobID:          job.ID,
		Candidates:     ranked,
		RequiredSkills: models.RequiredSkills(tasks),
		RankedAt:       s.now().UTC(),
	}, nil
}

// ==========================
// Checklist
// ==========================

type ChecklistRequest struct {
	JobID        string
	JobType      string
	BuildingType string
	Persist      bool
}

type ChecklistResult struct {
	Tasks         []models.Task
	TotalDuration int
	// Generated is false when the job already had tasks and they were kept.
	Generated bool
	Persisted bool
}

// GenerateChecklist returns the default task list. Without a job id it is a
// pure preview; with one, the job's tags fill in missing request tags and
// Persist writes the list onto the job when it has none.
func (s *Service) GenerateChecklist(ctx context.Context, req ChecklistRequest) (*ChecklistResult, error) {
	if req.JobID == "" {
		tasks := checklistFor(&models.Job{}, req.JobType, req.BuildingType)
		return &ChecklistResult{Tasks: tasks, TotalDuration: catalog.TotalDuration(tasks), Generated: true}, nil
	}

	if !req.Persist {
		job, err := s.store.GetJob(ctx, req.JobID)
		if err != nil {
			return nil, err
		}
		if len(job.Tasks) > 0 {
			return &ChecklistResult{Tasks: job.Tasks, TotalDuration: catalog.TotalDuration(job.Tasks)}, nil
		}
		tasks := checklistFor(job, req.JobType, req.BuildingType)
		return &ChecklistResult{Tasks: tasks, TotalDuration: catalog.TotalDuration(tasks), Generated: true}, nil
	}

	var generated bool
	job, err := s.store.Transact(ctx, req.JobID, func(job *models.Job) error {
		generated = false
		if len(job.Tasks) > 0 {
			return nil
		}
		job.Tasks = checklistFor(job, req.JobType, req.BuildingType)
		generated = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ChecklistResult{
		Tasks:         job.Tasks,
		TotalDuration: catalog.TotalDuration(job.Tasks),
		Generated:     generated,
		Persisted:     generated,
	}, nil
}

func checklistFor(job *models.Job, jobType, buildingType string) []models.Task {
	if jobType == "" {
		jobType = job.JobType
	}
	if jobType == "" {
		jobType = DefaultJobType
	}
	if buildingType == "" {
		buildingType = job.BuildingType
	}
	if buildingType == "" {
		buildingType = DefaultBuildingType
	}
	return catalog.Generate(jobType, buildingType)
}

// ==========================
// Allocation
// ==========================

type AllocateRequest struct {
	JobID       string
	EmployeeIDs []string
	AllocatedBy string
	Method      string
}

type AllocateResult struct {
	Job   *models.Job
	Event models.AllocationEvent
}

// Allocate distributes the job's tasks across the selected employees and
// writes a fresh offer batch in one transaction. The audit event follows
// the commit and never fails the allocation.
func (s *Service) Allocate(ctx context.Context, req AllocateRequest) (*AllocateResult, error) {
	ids := dedupe(req.EmployeeIDs)
	if len(ids) == 0 {
		return nil, ErrNoEmployeesSelected
	}

	found, err := s.store.QueryEmployees(ctx, models.EmployeeFilter{IDs: ids})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Employee, len(found))
	for _, e := range found {
		byID[e.ID] = e
	}
	selected := make([]models.Employee, 0, len(ids))
	var missing []string
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		selected = append(selected, e)
	}
	if len(missing) > 0 {
		return nil, &UnknownEmployeesError{IDs: missing}
	}

	job, err := s.store.Transact(ctx, req.JobID, func(job *models.Job) error {
		now := s.now().UTC()
		tasks := job.Tasks
		if len(tasks) == 0 {
			tasks = checklistFor(job, "", "")
		}
		return lifecycle.ApplyAllocation(job,
			distribute.Offers(selected, now),
			distribute.Tasks(tasks, selected, now))
	})
	if err != nil {
		return nil, err
	}

	metrics.OffersCreated.Add(float64(len(job.AssignedEmployees)))
	s.logger.Info("job allocated", map[string]interface{}{
		"jobId":     job.ID,
		"employees": len(job.AssignedEmployees),
		"tasks":     len(job.Tasks),
	})

	result := &AllocateResult{Job: job}
	if s.recorder != nil {
		result.Event = s.recorder.RecordAllocation(ctx, job.ID, job.AssignedEmployees, req.AllocatedBy, req.Method)
	}
	return result, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ==========================
// Responses
// ==========================

// Accept records the employee's acceptance. Changed is false when the offer
// was already accepted.
func (s *Service) Accept(ctx context.Context, jobID, employeeID string) (job *models.Job, changed bool, err error) {
	job, err = s.store.Transact(ctx, jobID, func(j *models.Job) error {
		var txErr error
		changed, txErr = lifecycle.Accept(j, employeeID)
		return txErr
	})
	if err != nil {
		return nil, false, err
	}
	if changed {
		metrics.OfferResponses.WithLabelValues(metrics.ResponseAccepted).Inc()
	}
	return job, changed, nil
}

func (s *Service) Decline(ctx context.Context, jobID, employeeID string) (*models.Job, error) {
	job, err := s.store.Transact(ctx, jobID, func(job *models.Job) error {
		return lifecycle.Decline(job, employeeID)
	})
	if err != nil {
		return nil, err
	}
	metrics.OfferResponses.WithLabelValues(metrics.ResponseDeclined).Inc()
	return job, nil
}

// ReassignTask points a task at an offered employee; an empty employeeID
// clears the assignment.
func (s *Service) ReassignTask(ctx context.Context, jobID, taskID, employeeID string) (*models.Job, error) {
	return s.store.Transact(ctx, jobID, func(job *models.Job) error {
		return lifecycle.Reassign(job, taskID, employeeID, s.now().UTC())
	})
}

// AdvanceStatus moves the job one execution step. Completing a job drops
// the cached work history of everyone offered on it.
func (s *Service) AdvanceStatus(ctx context.Context, jobID string, to models.JobStatus, rating *float64) (*models.Job, error) {
	job, err := s.store.Transact(ctx, jobID, func(job *models.Job) error {
		return lifecycle.Advance(job, to, rating, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}

	if job.Status == models.JobStatusCompleted {
		ids := make([]string, len(job.AssignedEmployees))
		for i, o := range job.AssignedEmployees {
			ids[i] = o.EmployeeID
		}
		if err := s.store.InvalidateHistory(ctx, ids...); err != nil {
			s.logger.Warn("work history invalidation failed", map[string]interface{}{
				"jobId": jobID,
				"error": err.Error(),
			})
		}
	}
	return job, nil
}
