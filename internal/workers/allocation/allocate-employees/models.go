// internal/workers/allocation/allocate-employees/models.go
package allocateemployees

import (
	"time"

	"dispatch-workers/internal/models"
	"dispatch-workers/internal/workers/jobutil"
)

type Input struct {
	JobID       string   `json:"jobId"`
	EmployeeIDs []string `json:"employeeIds"`
	AllocatedBy string   `json:"allocatedBy,omitempty"`
	Method      string   `json:"method,omitempty"`
}

type Output struct {
	jobutil.JobView
	Tasks       []models.Task `json:"tasks"`
	EventID     string        `json:"allocationEventId,omitempty"`
	AllocatedAt time.Time     `json:"allocatedAt"`
	Method      string        `json:"allocationMethod"`
}
