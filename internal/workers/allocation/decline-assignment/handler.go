// internal/workers/allocation/decline-assignment/handler.go
package declineassignment

import (
	"context"

	"dispatch-workers/internal/allocation"
	"dispatch-workers/internal/workers/jobutil"
	"dispatch-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = registry.TaskDeclineAssignment
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

// Execute withdraws the employee's offer and releases their tasks.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	job, err := h.service.Decline(ctx, input.JobID, input.EmployeeID)
	if err != nil {
		return nil, allocation.Classify(allocation.Ref{JobID: input.JobID, EmployeeID: input.EmployeeID}, err)
	}

	unassigned := make([]string, 0)
	for _, task := range job.Tasks {
		if task.AssignedTo == nil {
			unassigned = append(unassigned, task.ID)
		}
	}

	fields := map[string]interface{}{
		"jobId":           input.JobID,
		"employeeId":      input.EmployeeID,
		"remainingOffers": len(job.AssignedEmployees),
	}
	if input.Reason != "" {
		fields["reason"] = input.Reason
	}
	h.deps.Logger.Info("assignment declined", fields)

	return &Output{
		JobView:           jobutil.ViewOf(job),
		EmployeeID:        input.EmployeeID,
		RemainingOffers:   len(job.AssignedEmployees),
		UnassignedTasks:   unassigned,
		NeedsReallocation: len(job.AssignedEmployees) == 0 || len(unassigned) > 0,
	}, nil
}
