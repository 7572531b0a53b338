// internal/workers/allocation/allocate-employees/handler.go
package allocateemployees

import (
	"context"

	"dispatch-workers/internal/allocation"
	"dispatch-workers/internal/workers/jobutil"
	"dispatch-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = registry.TaskAllocateEmployees
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
	if input.Method == "" {
		input.Method = h.config.DefaultMethod
	}
	if input.AllocatedBy == "" {
		input.AllocatedBy = h.config.DefaultAllocatedBy
	}
	return &input, nil
}

// Execute offers the job to the selected employees and spreads its tasks
// across them.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.service.Allocate(ctx, allocation.AllocateRequest{
		JobID:       input.JobID,
		EmployeeIDs: input.EmployeeIDs,
		AllocatedBy: input.AllocatedBy,
		Method:      input.Method,
	})
	if err != nil {
		stdErr := allocation.Classify(allocation.Ref{JobID: input.JobID}, err)
		h.deps.Logger.Warn("allocation rejected", map[string]interface{}{
			"jobId":     input.JobID,
			"errorCode": stdErr.Code,
		})
		return nil, stdErr
	}

	output := &Output{
		JobView:     jobutil.ViewOf(result.Job),
		Tasks:       result.Job.Tasks,
		EventID:     result.Event.EventID,
		AllocatedAt: result.Job.UpdatedAt,
		Method:      input.Method,
	}
	if !result.Event.AllocatedAt.IsZero() {
		output.AllocatedAt = result.Event.AllocatedAt
	}
	return output, nil
}
