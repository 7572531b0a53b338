// internal/workers/allocation/generate-task-checklist/handler.go
package generatetaskchecklist

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
	TaskType = registry.TaskGenerateTaskChecklist
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

// Execute previews the checklist, or with a job id returns the job's tasks
// and generates them when the job has none.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	persist := h.config.PersistByDefault
	if input.Persist != nil {
		persist = *input.Persist
	}

	result, err := h.service.GenerateChecklist(ctx, allocation.ChecklistRequest{
		JobID:        input.JobID,
		JobType:      input.JobType,
		BuildingType: input.BuildingType,
		Persist:      persist && input.JobID != "",
	})
	if err != nil {
		return nil, allocation.Classify(allocation.Ref{JobID: input.JobID}, err)
	}

	if result.Persisted {
		h.deps.Logger.Info("checklist written to job", map[string]interface{}{
			"jobId": input.JobID,
			"tasks": len(result.Tasks),
		})
	}

	return &Output{
		JobID:          input.JobID,
		Tasks:          result.Tasks,
		TaskCount:      len(result.Tasks),
		TotalDuration:  result.TotalDuration,
		RequiredSkills: models.RequiredSkills(result.Tasks),
		Generated:      result.Generated,
		Persisted:      result.Persisted,
	}, nil
}
