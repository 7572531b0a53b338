// Package distribute spreads a job's tasks across the selected employees.
package distribute

import (
	"time"

	"dispatch-workers/internal/models"
)

// Tasks assigns every task to one of the selected employees and returns a
// new slice; the input is not modified.
//
// For task i the candidates are the selected employees holding at least one
// of the task's required skills, and the assignee is candidates[i mod n].
// When no one qualifies the whole selection is used the same way, so every
// task ends up assigned whenever selected is non-empty. An empty selection
// returns the tasks unchanged.
func Tasks(tasks []models.Task, selected []models.Employee, now time.Time) []models.Task {
	out := make([]models.Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	if len(selected) == 0 {
		return out
	}

	for i := range out {
		pool := qualified(selected, out[i].RequiredSkills)
		if len(pool) == 0 {
			pool = selected
		}
		assignee := pool[i%len(pool)]
		out[i].Assign(assignee.ID, assignee.Name, now)
	}
	return out
}

func qualified(employees []models.Employee, skills []string) []models.Employee {
	if len(skills) == 0 {
		return nil
	}
	var pool []models.Employee
	for i := range employees {
		if employees[i].HasAnySkill(skills) {
			pool = append(pool, employees[i])
		}
	}
	return pool
}

// Offers builds one pending offer per selected employee, in selection order.
func Offers(selected []models.Employee, now time.Time) []models.AssignmentOffer {
	offers := make([]models.AssignmentOffer, 0, len(selected))
	for _, e := range selected {
		offers = append(offers, models.AssignmentOffer{
			EmployeeID:   e.ID,
			EmployeeName: e.Name,
			AssignedAt:   now,
			Status:       models.OfferPending,
		})
	}
	return offers
}
