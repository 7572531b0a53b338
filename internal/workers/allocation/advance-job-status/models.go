// internal/workers/allocation/advance-job-status/models.go
package advancejobstatus

import (
	"time"

	"dispatch-workers/internal/workers/jobutil"
)

type Input struct {
	JobID        string   `json:"jobId"`
	Status       string   `json:"status"`
	ClientRating *float64 `json:"clientRating,omitempty"`
}

type Output struct {
	jobutil.JobView
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	ClientRating *float64   `json:"clientRating,omitempty"`
}
