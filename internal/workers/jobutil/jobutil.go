// Package jobutil holds the activation loop every allocation worker shares:
// metrics, tracing, timeout, completion and error reporting.
package jobutil

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "dispatch-workers/internal/common/errors"
	"dispatch-workers/internal/common/logger"
	"dispatch-workers/internal/common/metrics"
	"dispatch-workers/internal/common/observability"
	"dispatch-workers/internal/common/validation"
	"dispatch-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Deps are the collaborators every handler needs.
type Deps struct {
	Logger        logger.Logger
	Observability *observability.Observability
	Errors        *apperrors.ErrorHandler
}

// Run processes one activated job. process returns the variables to
// complete the job with, or an error that is reported through the
// ErrorHandler.
func Run(d Deps, taskType string, timeout time.Duration, client worker.JobClient, job entities.Job,
	process func(ctx context.Context) (interface{}, error)) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ctx, span := d.startSpan(ctx, taskType, job)
	defer span.End()

	d.Logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	status := "success"
	output, err := process(ctx)
	switch {
	case err != nil:
		status = "failed"
		stdErr, ok := apperrors.AsStandardError(err)
		if !ok {
			stdErr = apperrors.NewInternalError(err)
		}
		span.RecordError(stdErr)
		span.SetStatus(codes.Error, string(stdErr.Code))
		metrics.WorkerJobsFailed.WithLabelValues(taskType, string(stdErr.Code)).Inc()
		d.Errors.HandleJobError(ctx, client, job, stdErr)
	default:
		if err := Complete(ctx, client, job, output); err != nil {
			status = "failed"
			span.RecordError(err)
			d.Logger.Error("failed to complete job", map[string]interface{}{
				"jobKey": job.Key,
				"error":  err.Error(),
			})
			break
		}
		metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
	}

	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
	if d.Observability != nil {
		d.Observability.RecordJobProcessed(ctx, taskType, status)
		d.Observability.RecordJobDuration(ctx, taskType, elapsed, status)
	}
}

func (d Deps) startSpan(ctx context.Context, taskType string, job entities.Job) (context.Context, trace.Span) {
	if d.Observability == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, taskType)
	}
	return d.Observability.StartSpan(ctx, taskType,
		attribute.Int64("zeebe.job.key", job.Key),
		attribute.Int64("zeebe.process_instance.key", job.ProcessInstanceKey),
		attribute.String("zeebe.bpmn_process_id", job.BpmnProcessId),
	)
}

// Complete sends the complete command with output as the job variables.
func Complete(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}

// Decode validates the job variables against schema and unmarshals them
// into input.
func Decode(job entities.Job, schema map[string]interface{}, input interface{}) error {
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return apperrors.NewParseError(err)
	}
	if err := validation.Validate(vars, schema); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(job.Variables), input); err != nil {
		return apperrors.NewParseError(err)
	}
	return nil
}

// JobView is the job snapshot most allocation workers return. It carries
// the legacy single-assignee fields derived from the first offer.
type JobView struct {
	JobID             string                   `json:"jobId"`
	Status            models.JobStatus         `json:"status"`
	Progress          int                      `json:"progress"`
	AssignedEmployees []models.AssignmentOffer `json:"assignedEmployees"`
	models.LegacyAssignee
}

func ViewOf(job *models.Job) JobView {
	offers := job.AssignedEmployees
	if offers == nil {
		offers = []models.AssignmentOffer{}
	}
	return JobView{
		JobID:             job.ID,
		Status:            job.Status,
		Progress:          job.Status.Progress(),
		AssignedEmployees: offers,
		LegacyAssignee:    job.LegacyAssignee(),
	}
}
