// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dispatch-workers/internal/common/logger"
	"dispatch-workers/internal/models"

	"github.com/lib/pq"
)

const jobColumns = `id, title, latitude, longitude, job_type, building_type, tasks,
	assigned_employees, status, client_rating, completed_at, updated_at, version`

const (
	selectJobQuery = `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	updateJobQuery = `UPDATE jobs SET
		title = $3, tasks = $4, assigned_employees = $5,
		assigned_to = $6, assigned_to_name = $7,
		status = $8, progress = $9, client_rating = $10, completed_at = $11,
		updated_at = $12, version = $13
	WHERE id = $1 AND version = $2`

	selectEmployeesQuery = `SELECT id, name, skills, latitude, longitude, available, workload
		FROM employees
		WHERE ($1::text[] IS NULL OR id = ANY($1))
		  AND (NOT $2 OR available)
		ORDER BY id`

	selectCompletedJobsQuery = `SELECT ` + jobColumns + ` FROM jobs
		WHERE status = $1 AND assigned_employees @> $2::jsonb
		ORDER BY completed_at DESC NULLS LAST
		LIMIT $3`
)

// PostgresStore persists jobs as rows with JSONB task and offer columns.
// Writes are guarded by the version column.
type PostgresStore struct {
	db     *sql.DB
	opts   TxOptions
	logger logger.Logger
	now    func() time.Time
}

func NewPostgresStore(db *sql.DB, opts TxOptions, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		opts:   opts,
		logger: log.WithFields(map[string]interface{}{"component": "postgres-store"}),
		now:    time.Now,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	var (
		job                 models.Job
		lat, lng, rating    sql.NullFloat64
		completedAt         sql.NullTime
		tasksRaw, offersRaw []byte
		status              string
	)
	err := row.Scan(&job.ID, &job.Title, &lat, &lng, &job.JobType, &job.BuildingType,
		&tasksRaw, &offersRaw, &status, &rating, &completedAt, &job.UpdatedAt, &job.Version)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lng.Valid {
		job.Location = &models.Coordinates{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	if rating.Valid {
		r := rating.Float64
		job.ClientRating = &r
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	job.Status = models.JobStatus(status)

	if err := json.Unmarshal(nonEmptyJSON(tasksRaw), &job.Tasks); err != nil {
		return nil, fmt.Errorf("decode tasks of job %s: %w", job.ID, err)
	}
	if err := json.Unmarshal(nonEmptyJSON(offersRaw), &job.AssignedEmployees); err != nil {
		return nil, fmt.Errorf("decode assigned employees of job %s: %w", job.ID, err)
	}
	if job.Tasks == nil {
		job.Tasks = []models.Task{}
	}
	if job.AssignedEmployees == nil {
		job.AssignedEmployees = []models.AssignmentOffer{}
	}
	return &job, nil
}

func nonEmptyJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte("[]")
	}
	return raw
}

func (s *PostgresStore) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := scanJob(s.db.QueryRowContext(ctx, selectJobQuery, jobID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: select job %s: %w", ErrUnavailable, jobID, err)
	}
	return job, nil
}

func (s *PostgresStore) Transact(ctx context.Context, jobID string, fn TxFunc) (*models.Job, error) {
	return retryOnConflict(ctx, s.opts, jobID, func() (*models.Job, bool, error) {
		job, err := s.GetJob(ctx, jobID)
		if err != nil {
			return nil, false, err
		}
		expected := job.Version
		if err := fn(job); err != nil {
			return nil, false, err
		}
		job.ID = jobID
		job.Version = expected + 1
		job.UpdatedAt = s.now().UTC()

		committed, err := s.update(ctx, job, expected)
		if err != nil {
			return nil, false, err
		}
		if !committed {
			s.logger.Warn("version conflict, retrying", map[string]interface{}{
				"jobId":   jobID,
				"version": expected,
			})
		}
		return job, committed, nil
	})
}

func (s *PostgresStore) update(ctx context.Context, job *models.Job, expectedVersion int64) (bool, error) {
	tasks, err := json.Marshal(nonNilTasks(job.Tasks))
	if err != nil {
		return false, fmt.Errorf("encode tasks: %w", err)
	}
	offers, err := json.Marshal(nonNilOffers(job.AssignedEmployees))
	if err != nil {
		return false, fmt.Errorf("encode assigned employees: %w", err)
	}
	legacy := job.LegacyAssignee()

	res, err := s.db.ExecContext(ctx, updateJobQuery,
		job.ID, expectedVersion,
		job.Title, tasks, offers,
		nullString(legacy.AssignedTo), nullString(legacy.AssignedToName),
		string(job.Status), job.Status.Progress(),
		nullFloat(job.ClientRating), nullTime(job.CompletedAt),
		job.UpdatedAt, job.Version,
	)
	if err != nil {
		return false, fmt.Errorf("%w: update job %s: %w", ErrUnavailable, job.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: update job %s: %w", ErrUnavailable, job.ID, err)
	}
	return n == 1, nil
}

func (s *PostgresStore) QueryEmployees(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error) {
	var ids interface{}
	if filter.IDs != nil {
		ids = pq.Array(filter.IDs)
	}
	rows, err := s.db.QueryContext(ctx, selectEmployeesQuery, ids, filter.AvailableOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: query employees: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []models.Employee
	for rows.Next() {
		var (
			e        models.Employee
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &e.Name, pq.Array(&e.Skills), &lat, &lng, &e.Availability.Available, &e.Workload); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		if lat.Valid && lng.Valid {
			e.Location = &models.Coordinates{Latitude: lat.Float64, Longitude: lng.Float64}
		}
		normaliseEmployee(&e)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) QueryCompletedJobs(ctx context.Context, employeeID string, limit int) ([]models.Job, error) {
	member, err := json.Marshal([]map[string]string{{"id": employeeID}})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, selectCompletedJobsQuery, string(models.JobStatusCompleted), string(member), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query completed jobs for %s: %w", ErrUnavailable, employeeID, err)
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completed job: %w", err)
		}
		out = append(out, *job)
	}
	return out, rows.Err()
}

func (s *PostgresStore) WorkHistory(ctx context.Context, employeeID string, limit int) (models.WorkHistory, error) {
	return summariseHistory(ctx, s, employeeID, limit)
}

func (s *PostgresStore) InvalidateHistory(context.Context, ...string) error {
	return nil
}

func nonNilTasks(t []models.Task) []models.Task {
	if t == nil {
		return []models.Task{}
	}
	return t
}

func nonNilOffers(o []models.AssignmentOffer) []models.AssignmentOffer {
	if o == nil {
		return []models.AssignmentOffer{}
	}
	return o
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
