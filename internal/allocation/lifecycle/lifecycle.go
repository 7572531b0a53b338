// Package lifecycle holds the assignment state machine for a job's offers.
//
// Every function mutates the job it is handed and nothing else; callers run
// them inside a store transaction on a private copy of the record.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"dispatch-workers/internal/models"
)

var (
	ErrNotOffered        = errors.New("employee has no offer on this job")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidRating     = errors.New("client rating must be between 0 and 5")
)

const maxClientRating = 5.0

// DeriveStatus is Scheduled exactly when the offer list is non-empty and
// every offer is accepted, and Schedule-Pending otherwise.
func DeriveStatus(offers []models.AssignmentOffer) models.JobStatus {
	if len(offers) == 0 {
		return models.JobStatusSchedulePending
	}
	for _, o := range offers {
		if o.Status != models.OfferAccepted {
			return models.JobStatusSchedulePending
		}
	}
	return models.JobStatusScheduled
}

// ApplyAllocation replaces the offer list and task list wholesale. It is the
// only operation that creates offers, and it always lands in Schedule-Pending.
func ApplyAllocation(job *models.Job, offers []models.AssignmentOffer, tasks []models.Task) error {
	if job.Status.Executing() {
		return fmt.Errorf("%w: cannot allocate a job that is %s", ErrInvalidTransition, job.Status)
	}
	job.AssignedEmployees = offers
	job.Tasks = tasks
	job.Status = models.JobStatusSchedulePending
	return nil
}

// Accept marks the employee's own offer accepted and re-derives the job
// status. Accepting twice is a no-op; changed reports whether the offer moved.
func Accept(job *models.Job, employeeID string) (changed bool, err error) {
	idx, err := respondable(job, employeeID)
	if err != nil {
		return false, err
	}
	if job.AssignedEmployees[idx].Status != models.OfferAccepted {
		job.AssignedEmployees[idx].Status = models.OfferAccepted
		changed = true
	}
	job.Status = DeriveStatus(job.AssignedEmployees)
	return changed, nil
}

// Decline removes the employee's offer and clears every task assigned to
// them. The job stays Schedule-Pending even when no offers remain.
func Decline(job *models.Job, employeeID string) error {
	idx, err := respondable(job, employeeID)
	if err != nil {
		return err
	}

	remaining := make([]models.AssignmentOffer, 0, len(job.AssignedEmployees)-1)
	remaining = append(remaining, job.AssignedEmployees[:idx]...)
	remaining = append(remaining, job.AssignedEmployees[idx+1:]...)
	job.AssignedEmployees = remaining

	for i := range job.Tasks {
		if job.Tasks[i].IsAssignedTo(employeeID) {
			job.Tasks[i].Unassign()
		}
	}
	job.Status = models.JobStatusSchedulePending
	return nil
}

func respondable(job *models.Job, employeeID string) (int, error) {
	if job.Status.Executing() {
		return -1, fmt.Errorf("%w: job is already %s", ErrInvalidTransition, job.Status)
	}
	idx := job.FindOffer(employeeID)
	if idx < 0 {
		return -1, fmt.Errorf("%w: employee %s, job %s", ErrNotOffered, employeeID, job.ID)
	}
	return idx, nil
}

// Reassign points a task at another offered employee, or clears it when
// employeeID is empty.
func Reassign(job *models.Job, taskID, employeeID string, now time.Time) error {
	if job.Status == models.JobStatusCompleted {
		return fmt.Errorf("%w: job is already %s", ErrInvalidTransition, job.Status)
	}
	t := job.FindTask(taskID)
	if t < 0 {
		return fmt.Errorf("%w: task %s, job %s", ErrTaskNotFound, taskID, job.ID)
	}
	if employeeID == "" {
		job.Tasks[t].Unassign()
		return nil
	}
	o := job.FindOffer(employeeID)
	if o < 0 {
		return fmt.Errorf("%w: employee %s, job %s", ErrNotOffered, employeeID, job.ID)
	}
	job.Tasks[t].Assign(employeeID, job.AssignedEmployees[o].EmployeeName, now)
	return nil
}

var executionSteps = map[models.JobStatus]models.JobStatus{
	models.JobStatusScheduled:  models.JobStatusInProgress,
	models.JobStatusInProgress: models.JobStatusCompleted,
}

// Advance moves a job one step along Scheduled -> In Progress -> Completed.
// Completion stamps completedAt and, when given, the client rating.
func Advance(job *models.Job, to models.JobStatus, rating *float64, now time.Time) error {
	if next, ok := executionSteps[job.Status]; !ok || next != to {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, to)
	}
	if rating != nil && (*rating < 0 || *rating > maxClientRating) {
		return fmt.Errorf("%w: got %v", ErrInvalidRating, *rating)
	}

	job.Status = to
	if to == models.JobStatusCompleted {
		at := now
		job.CompletedAt = &at
		if rating != nil {
			r := *rating
			job.ClientRating = &r
		}
	}
	return nil
}
