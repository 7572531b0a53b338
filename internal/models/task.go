// internal/models/task.go
package models

import "time"

type Task struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Instructions      string     `json:"instructions,omitempty"`
	RequiredSkills    []string   `json:"requiredSkills"`
	EstimatedDuration int        `json:"estimatedDuration"`
	Equipment         []string   `json:"equipment"`
	Priority          string     `json:"priority"`
	AssignedTo        *string    `json:"assignedTo"`
	AssignedToName    *string    `json:"assignedToName,omitempty"`
	AssignedAt        *time.Time `json:"assignedAt,omitempty"`
}

// Assign points the task at an employee; reference, name and timestamp move together.
func (t *Task) Assign(employeeID, employeeName string, at time.Time) {
	id, name, ts := employeeID, employeeName, at
	t.AssignedTo = &id
	t.AssignedToName = &name
	t.AssignedAt = &ts
}

// Unassign clears the reference, name and timestamp together.
func (t *Task) Unassign() {
	t.AssignedTo = nil
	t.AssignedToName = nil
	t.AssignedAt = nil
}

func (t *Task) IsAssignedTo(employeeID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == employeeID
}

func (t Task) Clone() Task {
	out := t
	out.RequiredSkills = cloneStrings(t.RequiredSkills)
	out.Equipment = cloneStrings(t.Equipment)
	if t.AssignedTo != nil {
		v := *t.AssignedTo
		out.AssignedTo = &v
	}
	if t.AssignedToName != nil {
		v := *t.AssignedToName
		out.AssignedToName = &v
	}
	if t.AssignedAt != nil {
		v := *t.AssignedAt
		out.AssignedAt = &v
	}
	return out
}

// cloneStrings keeps nil and empty distinct so JSON round-trips unchanged.
func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// RequiredSkills returns the union of the tasks' required skills.
func RequiredSkills(tasks []Task) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tasks {
		for _, s := range t.RequiredSkills {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
