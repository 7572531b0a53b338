// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler turns a worker error into either a failed job with retries
// or a thrown BPMN error.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Resolve normalizes err and decides how the job should end. retry is true
// when the job should be failed with the returned retry count.
func (h *ErrorHandler) Resolve(job entities.Job, err error) (stdErr *StandardError, bpmnErr *BPMNError, retry bool) {
	stdErr, ok := AsStandardError(err)
	if !ok {
		stdErr = NewInternalError(err)
	}
	bpmnErr = ConvertToBPMNError(stdErr)

	if bpmnErr.Retries > 0 && job.Retries > 1 {
		if remaining := int(job.Retries) - 1; remaining < bpmnErr.Retries {
			bpmnErr.Retries = remaining
		}
		return stdErr, bpmnErr, true
	}
	return stdErr, bpmnErr, false
}

// HandleJobError reports err for job back to the broker.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr, bpmnErr, retry := h.Resolve(job, err)
	h.logError(job, stdErr, bpmnErr, retry)

	if retry {
		h.failJob(ctx, client, job, bpmnErr)
		return
	}
	h.throwError(ctx, client, job, bpmnErr)
}

func (h *ErrorHandler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(bpmnErr.Retries)).
		ErrorMessage("[" + bpmnErr.Code + "] " + bpmnErr.Message)

	withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err != nil {
		if _, sendErr := cmd.Send(ctx); sendErr != nil {
			h.logSendFailure(job, "fail", sendErr)
		}
		return
	}
	if _, err := withVars.Send(ctx); err != nil {
		h.logSendFailure(job, "fail", err)
	}
}

func (h *ErrorHandler) throwError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	vars, err := json.Marshal(bpmnErr.ToErrorVariables())
	if err != nil {
		if _, sendErr := cmd.Send(ctx); sendErr != nil {
			h.logSendFailure(job, "throw", sendErr)
		}
		return
	}
	withVars, err := cmd.VariablesFromString(string(vars))
	if err != nil {
		if _, sendErr := cmd.Send(ctx); sendErr != nil {
			h.logSendFailure(job, "throw", sendErr)
		}
		return
	}
	if _, err := withVars.Send(ctx); err != nil {
		h.logSendFailure(job, "throw", err)
	}
}

func (h *ErrorHandler) logSendFailure(job entities.Job, command string, err error) {
	h.logger.Error("failed to send job command", map[string]interface{}{
		"jobKey":  job.Key,
		"command": command,
		"error":   err.Error(),
	})
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError, retry bool) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    bpmnErr.Code,
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"retry":            retry,
		"retries":          bpmnErr.Retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
