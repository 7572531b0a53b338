// internal/models/employee.go
package models

import "time"

// DefaultSkill is assumed for employee records that carry no skill tags.
const DefaultSkill = "cleaning"

type Availability struct {
	Available bool `json:"available"`
}

type Employee struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Skills       []string     `json:"skills"`
	Location     *Coordinates `json:"location,omitempty"`
	Availability Availability `json:"availability"`
	Workload     float64      `json:"workload"`
	AvgRating    *float64     `json:"avgRating,omitempty"`
	TotalJobs    int          `json:"totalJobs"`
	LastJobDate  *time.Time   `json:"lastJobDate,omitempty"`
}

// HasAnySkill reports whether the employee holds at least one of the skills.
func (e *Employee) HasAnySkill(skills []string) bool {
	for _, want := range skills {
		for _, have := range e.Skills {
			if have == want {
				return true
			}
		}
	}
	return false
}

// WorkHistory summarises an employee's recent completed jobs.
type WorkHistory struct {
	TotalJobs   int        `json:"totalJobs"`
	AvgRating   *float64   `json:"avgRating,omitempty"`
	LastJobDate *time.Time `json:"lastJobDate,omitempty"`
}

// Apply copies the history onto the employee's scoring fields.
func (h WorkHistory) Apply(e *Employee) {
	e.TotalJobs = h.TotalJobs
	e.AvgRating = h.AvgRating
	e.LastJobDate = h.LastJobDate
}

// SummariseHistory derives a WorkHistory from completed jobs ordered newest first.
func SummariseHistory(jobs []Job) WorkHistory {
	h := WorkHistory{TotalJobs: len(jobs)}
	var total float64
	var rated int
	for i := range jobs {
		if r := jobs[i].ClientRating; r != nil {
			total += *r
			rated++
		}
		if h.LastJobDate == nil && jobs[i].CompletedAt != nil {
			t := *jobs[i].CompletedAt
			h.LastJobDate = &t
		}
	}
	if rated > 0 {
		avg := total / float64(rated)
		h.AvgRating = &avg
	}
	return h
}

// EmployeeFilter narrows QueryEmployees. Zero values match everything.
type EmployeeFilter struct {
	IDs           []string `json:"ids,omitempty"`
	AvailableOnly bool     `json:"availableOnly,omitempty"`
}
