// internal/models/score.go
package models

type ScoreBreakdown struct {
	Distance     float64 `json:"distance"`
	Availability float64 `json:"availability"`
	Experience   float64 `json:"experience"`
	Feedback     float64 `json:"feedback"`
	Workload     float64 `json:"workload"`
	Recency      float64 `json:"recency"`
}

type ScoreResult struct {
	TotalScore int            `json:"totalScore"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
}

type MatchLevel string

const (
	MatchIdeal    MatchLevel = "Ideal"
	MatchGood     MatchLevel = "Good"
	MatchPossible MatchLevel = "Possible"
	MatchPoor     MatchLevel = "Poor"
)

// RankedCandidate is one row of a candidate ranking.
type RankedCandidate struct {
	EmployeeID   string         `json:"employeeId"`
	EmployeeName string         `json:"employeeName"`
	Score        int            `json:"score"`
	Breakdown    ScoreBreakdown `json:"breakdown"`
	MatchLevel   MatchLevel     `json:"matchLevel"`
}
