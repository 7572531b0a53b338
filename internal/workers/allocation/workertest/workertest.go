// Package workertest builds the fixtures the allocation worker tests share:
// an allocation service over the memory store and activated Zeebe jobs.
package workertest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"dispatch-workers/internal/allocation"
	"dispatch-workers/internal/audit"
	"dispatch-workers/internal/common/logger"
	"dispatch-workers/internal/models"
	"dispatch-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/require"
)

// Now is the fixed clock every fixture service runs on.
var Now = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// Env is a service wired to an in-process store.
type Env struct {
	Store   *store.MemoryStore
	Service *allocation.Service
	Logger  logger.Logger
}

func NewEnv(t *testing.T) *Env {
	t.Helper()
	st := store.NewMemoryStore(store.TxOptions{MaxRetries: 2, BaseDelay: time.Millisecond})
	log := logger.NewTestLogger(t)
	svc := allocation.NewService(st, audit.NewRecorder(nil, log), log, allocation.Options{
		Clock: func() time.Time { return Now },
	})
	return &Env{Store: st, Service: svc, Logger: log}
}

// Seed stores a small crew and a job at the given status with one
// cleaning task and one carpet task.
func (e *Env) Seed(jobID string, status models.JobStatus, offers ...models.AssignmentOffer) *Env {
	e.Store.PutEmployee(models.Employee{
		ID: "emp-1", Name: "Ann", Skills: []string{"cleaning"},
		Location:     &models.Coordinates{Latitude: 51.5, Longitude: -0.12},
		Availability: models.Availability{Available: true},
	})
	e.Store.PutEmployee(models.Employee{
		ID: "emp-2", Name: "Bob", Skills: []string{"carpet", "cleaning"},
		Location:     &models.Coordinates{Latitude: 51.6, Longitude: -0.2},
		Availability: models.Availability{Available: true},
		Workload:     60,
	})
	e.Store.PutEmployee(models.Employee{
		ID: "emp-3", Name: "Cat", Skills: []string{"windows"},
		Availability: models.Availability{Available: false},
	})
	e.Store.PutJob(&models.Job{
		ID:       jobID,
		Title:    "Office clean",
		Location: &models.Coordinates{Latitude: 51.5, Longitude: -0.12},
		Tasks: []models.Task{
			{ID: "task-1", Title: "Dust", RequiredSkills: []string{"cleaning"}, EstimatedDuration: 30},
			{ID: "task-2", Title: "Shampoo carpet", RequiredSkills: []string{"carpet"}, EstimatedDuration: 45},
		},
		AssignedEmployees: offers,
		Status:            status,
	})
	return e
}

// Job returns the stored copy of a job.
func (e *Env) Job(t *testing.T, id string) *models.Job {
	t.Helper()
	job, err := e.Store.GetJob(context.Background(), id)
	require.NoError(t, err)
	return job
}

// Offer is a pending or accepted offer at the fixture time.
func Offer(id, name string, status models.OfferStatus) models.AssignmentOffer {
	return models.AssignmentOffer{EmployeeID: id, EmployeeName: name, AssignedAt: Now, Status: status}
}

// MockJob activates a job of taskType carrying vars as its variables.
func MockJob(t *testing.T, taskType string, vars interface{}) entities.Job {
	t.Helper()
	raw, err := json.Marshal(vars)
	require.NoError(t, err)
	return RawJob(taskType, string(raw))
}

func RawJob(taskType, variables string) entities.Job {
	return entities.Job{
		ActivatedJob: &pb.ActivatedJob{
			Key:                12345,
			Type:               taskType,
			ProcessInstanceKey: 67890,
			BpmnProcessId:      "job-allocation",
			Retries:            3,
			Variables:          variables,
		},
	}
}
