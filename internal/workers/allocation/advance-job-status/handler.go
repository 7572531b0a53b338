// internal/workers/allocation/advance-job-status/handler.go
package advancejobstatus

import (
	"context"

	"dispatch-workers/internal/allocation"
	"dispatch-workers/internal/models"
	"dispatch-workers/internal/workers/jobutil"
	"dispatch-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = registry.TaskAdvanceJobStatus
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

// Execute moves a scheduled job into execution, or finishes one that is
// already running.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	job, err := h.service.AdvanceStatus(ctx, input.JobID, models.JobStatus(input.Status), input.ClientRating)
	if err != nil {
		return nil, allocation.Classify(allocation.Ref{JobID: input.JobID}, err)
	}

	h.deps.Logger.Info("job status advanced", map[string]interface{}{
		"jobId":  input.JobID,
		"status": job.Status,
	})

	return &Output{
		JobView:      jobutil.ViewOf(job),
		CompletedAt:  job.CompletedAt,
		ClientRating: job.ClientRating,
	}, nil
}
