// Package errors provides the structured error type shared by the engine and
// the workers, and its conversion into Zeebe BPMN errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

type ErrorCode string

// Allocation domain errors. Business codes are thrown as BPMN errors;
// store codes are retried by failing the job.
const (
	ErrCodeJobNotFound         ErrorCode = "JOB_NOT_FOUND"
	ErrCodeEmployeeNotFound    ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeTaskNotFound        ErrorCode = "TASK_NOT_FOUND"
	ErrCodeNoEmployeesSelected ErrorCode = "NO_EMPLOYEES_SELECTED"
	ErrCodeNotOffered          ErrorCode = "NOT_OFFERED"
	ErrCodeInvalidTransition   ErrorCode = "INVALID_TRANSITION"

	ErrCodeStoreConflict    ErrorCode = "STORE_CONFLICT"
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"
	ErrCodeParseError            ErrorCode = "PARSE_ERROR"

	ErrCodeAuditWriteFailed ErrorCode = "AUDIT_WRITE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the error the StandardError was built from, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError finds a StandardError anywhere in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 2. BPMN Error Integration
// ==========================

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns the variables attached to a failed or thrown job.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewJobNotFoundError(jobID string, cause error) *StandardError {
	return newError(ErrCodeJobNotFound, "Job not found", fmt.Sprintf("jobId: %s", jobID), false, cause)
}

func NewEmployeeNotFoundError(employeeIDs []string, cause error) *StandardError {
	return newError(ErrCodeEmployeeNotFound, "Employee not found",
		fmt.Sprintf("employeeIds: %s", strings.Join(employeeIDs, ",")), false, cause)
}

func NewTaskNotFoundError(jobID, taskID string, cause error) *StandardError {
	return newError(ErrCodeTaskNotFound, "Task not found on job",
		fmt.Sprintf("jobId: %s, taskId: %s", jobID, taskID), false, cause)
}

// NewNoEmployeesSelectedError reports an allocation that was skipped because
// nobody was selected. Nothing was written.
func NewNoEmployeesSelectedError(jobID string, cause error) *StandardError {
	return newError(ErrCodeNoEmployeesSelected, "No employees selected for allocation",
		fmt.Sprintf("jobId: %s", jobID), false, cause)
}

func NewNotOfferedError(jobID, employeeID string, cause error) *StandardError {
	return newError(ErrCodeNotOffered, "Employee has no offer on this job",
		fmt.Sprintf("jobId: %s, employeeId: %s", jobID, employeeID), false, cause)
}

func NewInvalidTransitionError(details string, cause error) *StandardError {
	return newError(ErrCodeInvalidTransition, "Job status does not allow this operation", details, false, cause)
}

func NewStoreConflictError(jobID string, cause error) *StandardError {
	return newError(ErrCodeStoreConflict, "Job was modified concurrently",
		fmt.Sprintf("jobId: %s", jobID), true, cause)
}

func NewStoreUnavailableError(cause error) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return newError(ErrCodeStoreUnavailable, "Record store unavailable", details, true, cause)
}

func NewInputValidationError(details string) *StandardError {
	return newError(ErrCodeInputValidationFailed, "Job variables failed validation", details, false, nil)
}

func NewParseError(cause error) *StandardError {
	return newError(ErrCodeParseError, "Job variables could not be parsed", cause.Error(), false, cause)
}

// NewAuditWriteFailedError is logged, never returned to a caller.
func NewAuditWriteFailedError(sink string, cause error) *StandardError {
	return newError(ErrCodeAuditWriteFailed, fmt.Sprintf("Audit sink '%s' write failed", sink),
		cause.Error(), true, cause)
}

func NewInternalError(cause error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", cause.Error(), false, cause)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping lists the codes BPMN boundary events catch. Codes are
// passed through unchanged.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeJobNotFound:           "JOB_NOT_FOUND",
	ErrCodeEmployeeNotFound:      "EMPLOYEE_NOT_FOUND",
	ErrCodeTaskNotFound:          "TASK_NOT_FOUND",
	ErrCodeNoEmployeesSelected:   "NO_EMPLOYEES_SELECTED",
	ErrCodeNotOffered:            "NOT_OFFERED",
	ErrCodeInvalidTransition:     "INVALID_TRANSITION",
	ErrCodeStoreConflict:         "STORE_CONFLICT",
	ErrCodeStoreUnavailable:      "STORE_UNAVAILABLE",
	ErrCodeInputValidationFailed: "INPUT_VALIDATION_FAILED",
	ErrCodeParseError:            "PARSE_ERROR",
}

// GetRetryCount returns how many job retries a code deserves.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStoreUnavailable:
		return 3
	case ErrCodeStoreConflict:
		return 2 // the store already retried the transaction
	case ErrCodeAuditWriteFailed:
		return 1
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, ok := BPMNErrorMapping[stdErr.Code]
	if !ok {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for logging and dashboards.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeJobNotFound, ErrCodeEmployeeNotFound, ErrCodeTaskNotFound:
		return "NOT_FOUND"
	case ErrCodeNoEmployeesSelected, ErrCodeNotOffered, ErrCodeInvalidTransition:
		return "PRECONDITION"
	case ErrCodeStoreConflict, ErrCodeStoreUnavailable:
		return "STORE"
	case ErrCodeAuditWriteFailed:
		return "AUDIT"
	case ErrCodeInputValidationFailed, ErrCodeParseError:
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
