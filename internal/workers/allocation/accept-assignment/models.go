// internal/workers/allocation/accept-assignment/models.go
package acceptassignment

import "dispatch-workers/internal/workers/jobutil"

type Input struct {
	JobID      string `json:"jobId"`
	EmployeeID string `json:"employeeId"`
}

type Output struct {
	jobutil.JobView
	EmployeeID      string `json:"employeeId"`
	AlreadyAccepted bool   `json:"alreadyAccepted"`
	// AllAccepted is true once every offered employee has accepted.
	AllAccepted bool `json:"allAccepted"`
}
