// internal/workers/allocation/rank-candidates/models.go
package rankcandidates

import (
	"time"

	"dispatch-workers/internal/models"
)

type Input struct {
	JobID         string `json:"jobId"`
	AvailableOnly *bool  `json:"availableOnly,omitempty"`
	MaxCandidates int    `json:"maxCandidates,omitempty"`
}

type Output struct {
	JobID          string                   `json:"jobId"`
	Candidates     []models.RankedCandidate `json:"candidates"`
	TotalEmployees int                      `json:"totalEmployees"`
	RequiredSkills []string                 `json:"requiredSkills"`
	BestMatch      *string                  `json:"bestMatch"`
	RankedAt       time.Time                `json:"rankedAt"`
}
