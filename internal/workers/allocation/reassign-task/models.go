// internal/workers/allocation/reassign-task/models.go
package reassigntask

import "dispatch-workers/internal/models"

type Input struct {
	JobID  string `json:"jobId"`
	TaskID string `json:"taskId"`
	// EmployeeID empty clears the task's assignee.
	EmployeeID string `json:"employeeId,omitempty"`
}

type Output struct {
	JobID   string           `json:"jobId"`
	TaskID  string           `json:"taskId"`
	Task    models.Task      `json:"task"`
	Cleared bool             `json:"cleared"`
	Status  models.JobStatus `json:"status"`
}
