// internal/workers/allocation/decline-assignment/models.go
package declineassignment

import "dispatch-workers/internal/workers/jobutil"

type Input struct {
	JobID      string `json:"jobId"`
	EmployeeID string `json:"employeeId"`
	Reason     string `json:"reason,omitempty"`
}

type Output struct {
	jobutil.JobView
	EmployeeID      string   `json:"employeeId"`
	RemainingOffers int      `json:"remainingOffers"`
	UnassignedTasks []string `json:"unassignedTasks"`
	// NeedsReallocation is set when the decline left the job without offers
	// or with tasks nobody holds.
	NeedsReallocation bool `json:"needsReallocation"`
}
