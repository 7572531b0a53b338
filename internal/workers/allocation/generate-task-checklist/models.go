// internal/workers/allocation/generate-task-checklist/models.go
package generatetaskchecklist

import "dispatch-workers/internal/models"

type Input struct {
	JobID        string `json:"jobId,omitempty"`
	JobType      string `json:"jobType,omitempty"`
	BuildingType string `json:"buildingType,omitempty"`
	Persist      *bool  `json:"persist,omitempty"`
}

type Output struct {
	JobID          string        `json:"jobId,omitempty"`
	Tasks          []models.Task `json:"tasks"`
	TaskCount      int           `json:"taskCount"`
	TotalDuration  int           `json:"totalDuration"`
	RequiredSkills []string      `json:"requiredSkills"`
	Generated      bool          `json:"generated"`
	Persisted      bool          `json:"persisted"`
}
