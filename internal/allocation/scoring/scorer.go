// Package scoring computes how suitable an employee is for a job.
//
// Six sub-scores, each normalised to 0-100, are combined by fixed weights
// into a single 0-100 suitability score. Missing inputs never fail: they
// resolve to neutral defaults so the scorer is total over its inputs.
package scoring

import (
	"math"
	"sort"
	"time"

	"dispatch-workers/internal/allocation/geo"
	"dispatch-workers/internal/models"
)

// Weights are percentages and sum to 100.
type Weights struct {
	Distance     float64
	Availability float64
	Experience   float64
	Feedback     float64
	Workload     float64
	Recency      float64
}

var DefaultWeights = Weights{
	Distance:     25,
	Availability: 20,
	Experience:   20,
	Feedback:     15,
	Workload:     10,
	Recency:      10,
}

const (
	neutralScore = 50.0

	// distancePenaltyPerKm floors the distance score at 50 km.
	distancePenaltyPerKm  = 2.0
	pointsPerCompletedJob = 5.0
	maxRating             = 5.0

	recencyNewEmployee = 90.0
	recencySameDay     = 70.0
	recencyThisWeek    = 85.0
	recencyIdle        = 100.0
)

type Scorer struct {
	weights Weights
	now     func() time.Time
}

type Option func(*Scorer)

// WithClock overrides the time source used for recency.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

func WithWeights(w Weights) Option {
	return func(s *Scorer) { s.weights = w }
}

func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{weights: DefaultWeights, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score rates one employee against a job and the job's current task list.
func (s *Scorer) Score(employee *models.Employee, job *models.Job, tasks []models.Task) models.ScoreResult {
	b := models.ScoreBreakdown{
		Distance:     distanceScore(employee, job),
		Availability: availabilityScore(employee),
		Experience:   experienceScore(employee, tasks),
		Feedback:     feedbackScore(employee),
		Workload:     workloadScore(employee),
		Recency:      recencyScore(employee, s.now()),
	}

	w := s.weights
	weighted := (b.Distance*w.Distance +
		b.Availability*w.Availability +
		b.Experience*w.Experience +
		b.Feedback*w.Feedback +
		b.Workload*w.Workload +
		b.Recency*w.Recency) / 100

	return models.ScoreResult{
		TotalScore: int(clamp(RoundHalfUp(weighted))),
		Breakdown:  b,
	}
}

// Rank scores every employee and returns a new slice ordered by descending
// score. Equal scores keep their input order.
func (s *Scorer) Rank(employees []models.Employee, job *models.Job, tasks []models.Task) []models.RankedCandidate {
	ranked := make([]models.RankedCandidate, 0, len(employees))
	for i := range employees {
		res := s.Score(&employees[i], job, tasks)
		ranked = append(ranked, models.RankedCandidate{
			EmployeeID:   employees[i].ID,
			EmployeeName: employees[i].Name,
			Score:        res.TotalScore,
			Breakdown:    res.Breakdown,
			MatchLevel:   MatchLevelFor(res.TotalScore),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// MatchLevelFor maps a score to its display label.
func MatchLevelFor(score int) models.MatchLevel {
	switch {
	case score >= 85:
		return models.MatchIdeal
	case score >= 70:
		return models.MatchGood
	case score >= 50:
		return models.MatchPossible
	default:
		return models.MatchPoor
	}
}

// RoundHalfUp rounds .5 away from zero for non-negative values, matching
// the behaviour clients already display (71.5 -> 72).
func RoundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func distanceScore(e *models.Employee, j *models.Job) float64 {
	if e.Location == nil || j == nil || j.Location == nil {
		return neutralScore
	}
	km := geo.Between(*j.Location, *e.Location)
	return clamp(100 - distancePenaltyPerKm*km)
}

func availabilityScore(e *models.Employee) float64 {
	if e.Availability.Available {
		return 100
	}
	return 0
}

func experienceScore(e *models.Employee, tasks []models.Task) float64 {
	skills := neutralScore
	if required := models.RequiredSkills(tasks); len(required) > 0 {
		have := make(map[string]bool, len(e.Skills))
		for _, s := range e.Skills {
			have[s] = true
		}
		covered := 0
		for _, r := range required {
			if have[r] {
				covered++
			}
		}
		skills = float64(covered) / float64(len(required)) * 100
	}
	jobs := math.Min(100, float64(max(e.TotalJobs, 0))*pointsPerCompletedJob)
	return (skills + jobs) / 2
}

// feedbackScore scores a zero average as unrated, the same as a missing one.
func feedbackScore(e *models.Employee) float64 {
	if e.AvgRating == nil || *e.AvgRating == 0 {
		return neutralScore
	}
	return clamp(*e.AvgRating / maxRating * 100)
}

func workloadScore(e *models.Employee) float64 {
	return clamp(100 - e.Workload)
}

func recencyScore(e *models.Employee, now time.Time) float64 {
	if e.LastJobDate == nil {
		return recencyNewEmployee
	}
	days := now.Sub(*e.LastJobDate).Hours() / 24
	switch {
	case days < 1:
		return recencySameDay
	case days > 7:
		return recencyIdle
	default:
		return recencyThisWeek
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
