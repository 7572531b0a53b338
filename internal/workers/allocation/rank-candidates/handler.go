// internal/workers/allocation/rank-candidates/handler.go
package rankcandidates

import (
	"context"

	"dispatch-workers/internal/allocation"
	"dispatch-workers/internal/workers/jobutil"
	"dispatch-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = registry.TaskRankCandidates
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

// Execute ranks every employee for the job, best first.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	availableOnly := h.config.DefaultAvailableOnly
	if input.AvailableOnly != nil {
		availableOnly = *input.AvailableOnly
	}

	result, err := h.service.RankCandidates(ctx, allocation.RankRequest{
		JobID:         input.JobID,
		AvailableOnly: availableOnly,
	})
	if err != nil {
		return nil, allocation.Classify(allocation.Ref{JobID: input.JobID}, err)
	}

	candidates := result.Candidates
	total := len(candidates)
	if limit := h.limit(input.MaxCandidates); limit > 0 && limit < total {
		candidates = candidates[:limit]
	}

	output := &Output{
		JobID:          result.JobID,
		Candidates:     candidates,
		TotalEmployees: total,
		RequiredSkills: result.RequiredSkills,
		RankedAt:       result.RankedAt,
	}
	if len(candidates) > 0 {
		best := candidates[0].EmployeeID
		output.BestMatch = &best
	}

	h.deps.Logger.Info("candidates ranked", map[string]interface{}{
		"jobId":      input.JobID,
		"candidates": total,
		"returned":   len(candidates),
	})
	return output, nil
}

func (h *Handler) limit(requested int) int {
	switch {
	case requested <= 0:
		return h.config.MaxCandidates
	case h.config.MaxCandidates > 0 && h.config.MaxCandidates < requested:
		return h.config.MaxCandidates
	default:
		return requested
	}
}
