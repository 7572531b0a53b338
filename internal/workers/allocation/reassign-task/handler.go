// internal/workers/allocation/reassign-task/handler.go
package reassigntask

import (
	"context"
	"fmt"

	"dispatch-workers/internal/allocation"
	"dispatch-workers/internal/workers/jobutil"
	"dispatch-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = registry.TaskReassignTask
)

type Handler struct {
	config  *Config
	service *allocation.Service
	schema  map[string]interface{}
	deps    jobutil.Deps
}

func NewHandler(config *Config, service *allocation.Service, schema map[string]interface{}, deps jobutil.Deps) *Handler {
	deps.Logger = deps.Logger.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		service: service,
		schema:  schema,
		deps:    deps,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	jobutil.Run(h.deps, TaskType, h.config.Timeout, client, job, func(ctx context.Context) (interface{}, error) {
		input, err := h.parseInput(job)
		if err != nil {
			return nil, err
		}
		return h.Execute(ctx, input)
	})
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	var input Input
	if err := jobutil.Decode(job, h.schema, &input); err != nil {
		return nil, err
	}
	return &input, nil
}

// Execute points the task at an offered employee, or clears it.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ref := allocation.Ref{JobID: input.JobID, EmployeeID: input.EmployeeID, TaskID: input.TaskID}

	job, err := h.service.ReassignTask(ctx, input.JobID, input.TaskID, input.EmployeeID)
	if err != nil {
		return nil, allocation.Classify(ref, err)
	}
	idx := job.FindTask(input.TaskID)
	if idx < 0 {
		return nil, allocation.Classify(ref, fmt.Errorf("%w: %s", allocation.ErrTaskNotFound, input.TaskID))
	}

	h.deps.Logger.Info("task reassigned", map[string]interface{}{
		"jobId":      input.JobID,
		"taskId":     input.TaskID,
		"employeeId": input.EmployeeID,
	})

	return &Output{
		JobID:   job.ID,
		TaskID:  input.TaskID,
		Task:    job.Tasks[idx],
		Cleared: input.EmployeeID == "",
		Status:  job.Status,
	}, nil
}
