// internal/models/job.go
package models

import "time"

// JobStatus is the aggregate, job-level status.
type JobStatus string

const (
	JobStatusPending         JobStatus = "Pending"
	JobStatusAccepted        JobStatus = "Accepted"
	JobStatusSchedulePending JobStatus = "Schedule-Pending"
	JobStatusScheduled       JobStatus = "Scheduled"
	JobStatusInProgress      JobStatus = "In Progress"
	JobStatusCompleted       JobStatus = "Completed"
	JobStatusDeclined        JobStatus = "Declined"
)

var jobStatusProgress = map[JobStatus]int{
	JobStatusPending:         0,
	JobStatusAccepted:        10,
	JobStatusSchedulePending: 15,
	JobStatusScheduled:       25,
	JobStatusInProgress:      50,
	JobStatusCompleted:       100,
	JobStatusDeclined:        0,
}

// Valid reports whether s is one of the known statuses.
func (s JobStatus) Valid() bool {
	_, ok := jobStatusProgress[s]
	return ok
}

// Progress is the percentage shown against a job in each status.
func (s JobStatus) Progress() int {
	return jobStatusProgress[s]
}

// Executing reports whether field work on the job has begun.
func (s JobStatus) Executing() bool {
	return s == JobStatusInProgress || s == JobStatusCompleted
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Job struct {
	ID                string            `json:"id"`
	Title             string            `json:"title,omitempty"`
	Location          *Coordinates      `json:"location,omitempty"`
	JobType           string            `json:"jobType,omitempty"`
	BuildingType      string            `json:"buildingType,omitempty"`
	Tasks             []Task            `json:"tasks"`
	AssignedEmployees []AssignmentOffer `json:"assignedEmployees"`
	Status            JobStatus         `json:"status"`
	ClientRating      *float64          `json:"clientRating,omitempty"`
	CompletedAt       *time.Time        `json:"completedAt,omitempty"`
	UpdatedAt         time.Time         `json:"updatedAt"`
	Version           int64             `json:"version"`
}

// LegacyAssignee is the single-assignee view older clients still read.
// It is derived from the first offer and never stored on the model.
type LegacyAssignee struct {
	AssignedTo     *string `json:"assignedTo"`
	AssignedToName *string `json:"assignedToName"`
}

func (j *Job) LegacyAssignee() LegacyAssignee {
	if len(j.AssignedEmployees) == 0 {
		return LegacyAssignee{}
	}
	first := j.AssignedEmployees[0]
	id, name := first.EmployeeID, first.EmployeeName
	return LegacyAssignee{AssignedTo: &id, AssignedToName: &name}
}

// FindOffer returns the index of the employee's offer, or -1.
func (j *Job) FindOffer(employeeID string) int {
	for i, offer := range j.AssignedEmployees {
		if offer.EmployeeID == employeeID {
			return i
		}
	}
	return -1
}

// FindTask returns the index of the task with the given id, or -1.
func (j *Job) FindTask(taskID string) int {
	for i, task := range j.Tasks {
		if task.ID == taskID {
			return i
		}
	}
	return -1
}

// RequiredSkills is the union of every task's required skills, in first-seen order.
func (j *Job) RequiredSkills() []string {
	return RequiredSkills(j.Tasks)
}

// Clone returns a deep copy so transactional callbacks never alias stored state.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	out := *j
	if j.Location != nil {
		loc := *j.Location
		out.Location = &loc
	}
	if j.ClientRating != nil {
		r := *j.ClientRating
		out.ClientRating = &r
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	if j.Tasks != nil {
		out.Tasks = make([]Task, len(j.Tasks))
		for i, t := range j.Tasks {
			out.Tasks[i] = t.Clone()
		}
	}
	if j.AssignedEmployees != nil {
		out.AssignedEmployees = make([]AssignmentOffer, len(j.AssignedEmployees))
		copy(out.AssignedEmployees, j.AssignedEmployees)
	}
	return &out
}
