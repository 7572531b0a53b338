// internal/allocation/errors.go
package allocation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dispatch-workers/internal/allocation/lifecycle"
	apperrors "dispatch-workers/internal/common/errors"
	"dispatch-workers/internal/store"
)

var (
	ErrNotOffered          = lifecycle.ErrNotOffered
	ErrInvalidTransition   = lifecycle.ErrInvalidTransition
	ErrTaskNotFound        = lifecycle.ErrTaskNotFound
	ErrInvalidRating       = lifecycle.ErrInvalidRating
	ErrNoEmployeesSelected = errors.New("no employees selected")
	ErrEmployeeNotFound    = errors.New("employee not found")
)

// UnknownEmployeesError lists selected ids that are not employees.
type UnknownEmployeesError struct {
	IDs []string
}

func (e *UnknownEmployeesError) Error() string {
	return fmt.Sprintf("%v: %s", ErrEmployeeNotFound, strings.Join(e.IDs, ", "))
}

func (e *UnknownEmployeesError) Is(target error) bool {
	return target == ErrEmployeeNotFound
}

// Ref names the records an operation touched, for error reporting.
type Ref struct {
	JobID      string
	EmployeeID string
	TaskID     string
}

// Classify maps an engine or store error onto the worker error codes.
func Classify(ref Ref, err error) *apperrors.StandardError {
	if err == nil {
		return nil
	}
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return stdErr
	}

	var unknown *UnknownEmployeesError
	switch {
	case errors.As(err, &unknown):
		return apperrors.NewEmployeeNotFoundError(unknown.IDs, err)
	case errors.Is(err, ErrNoEmployeesSelected):
		return apperrors.NewNoEmployeesSelectedError(ref.JobID, err)
	case errors.Is(err, store.ErrJobNotFound):
		return apperrors.NewJobNotFoundError(ref.JobID, err)
	case errors.Is(err, ErrTaskNotFound):
		return apperrors.NewTaskNotFoundError(ref.JobID, ref.TaskID, err)
	case errors.Is(err, ErrNotOffered):
		return apperrors.NewNotOfferedError(ref.JobID, ref.EmployeeID, err)
	case errors.Is(err, ErrInvalidTransition):
		return apperrors.NewInvalidTransitionError(err.Error(), err)
	case errors.Is(err, ErrInvalidRating):
		return apperrors.NewInputValidationError(err.Error())
	case errors.Is(err, store.ErrConflict):
		return apperrors.NewStoreConflictError(ref.JobID, err)
	case errors.Is(err, store.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewStoreUnavailableError(err)
	default:
		return apperrors.NewInternalError(err)
	}
}
