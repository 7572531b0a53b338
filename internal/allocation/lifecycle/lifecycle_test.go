package lifecycle

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"dispatch-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func offer(id string, status models.OfferStatus) models.AssignmentOffer {
	return models.AssignmentOffer{EmployeeID: id, EmployeeName: "Name " + id, AssignedAt: now, Status: status}
}

func assignedTask(id, employeeID string) models.Task {
	t := models.Task{ID: id, Title: "Task " + id}
	if employeeID != "" {
		t.Assign(employeeID, "Name "+employeeID, now)
	}
	return t
}

func offeredJob(offers ...models.AssignmentOffer) *models.Job {
	return &models.Job{
		ID:                "job-1",
		Status:            models.JobStatusSchedulePending,
		AssignedEmployees: offers,
		Tasks: []models.Task{
			assignedTask("1", "A"),
			assignedTask("2", "B"),
			assignedTask("3", "A"),
		},
	}
}

// ==========================
// DeriveStatus
// ==========================

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		offers   []models.AssignmentOffer
		expected models.JobStatus
	}{
		{"empty", nil, models.JobStatusSchedulePending},
		{"one pending", []models.AssignmentOffer{offer("A", models.OfferPending)}, models.JobStatusSchedulePending},
		{"one accepted", []models.AssignmentOffer{offer("A", models.OfferAccepted)}, models.JobStatusScheduled},
		{"mixed", []models.AssignmentOffer{offer("A", models.OfferAccepted), offer("B", models.OfferPending)}, models.JobStatusSchedulePending},
		{"all accepted", []models.AssignmentOffer{offer("A", models.OfferAccepted), offer("B", models.OfferAccepted)}, models.JobStatusScheduled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveStatus(tt.offers))
		})
	}
}

// ==========================
// ApplyAllocation
// ==========================

func TestApplyAllocation_ReplacesListAndSetsSchedulePending(t *testing.T) {
	job := offeredJob(offer("A", models.OfferAccepted))
	job.Status = models.JobStatusScheduled
	tasks := []models.Task{assignedTask("9", "C")}

	err := ApplyAllocation(job, []models.AssignmentOffer{offer("C", models.OfferPending)}, tasks)

	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSchedulePending, job.Status)
	require.Len(t, job.AssignedEmployees, 1)
	assert.Equal(t, "C", job.AssignedEmployees[0].EmployeeID)
	assert.Equal(t, tasks, job.Tasks)
}

func TestApplyAllocation_RejectsExecutingJob(t *testing.T) {
	job := offeredJob(offer("A", models.OfferAccepted))
	job.Status = models.JobStatusInProgress

	err := ApplyAllocation(job, nil, nil)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, job.AssignedEmployees, 1)
}

// ==========================
// Accept
// ==========================

func TestAccept(t *testing.T) {
	job := offeredJob(offer("A", models.OfferPending), offer("B", models.OfferPending))

	changed, err := Accept(job, "A")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.JobStatusSchedulePending, job.Status)
	assert.Equal(t, models.OfferAccepted, job.AssignedEmployees[0].Status)
	assert.Equal(t, models.OfferPending, job.AssignedEmployees[1].Status)

	changed, err = Accept(job, "B")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.JobStatusScheduled, job.Status)
}

func TestAccept_Idempotent(t *testing.T) {
	job := offeredJob(offer("A", models.OfferAccepted))
	job.Status = models.JobStatusSchedulePending

	changed, err := Accept(job, "A")

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.JobStatusScheduled, job.Status)
	assert.Len(t, job.AssignedEmployees, 1)
}

func TestAccept_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     models.JobStatus
		employeeID string
		expected   error
	}{
		{"not offered", models.JobStatusSchedulePending, "Z", ErrNotOffered},
		{"in progress", models.JobStatusInProgress, "A", ErrInvalidTransition},
		{"completed", models.JobStatusCompleted, "A", ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := offeredJob(offer("A", models.OfferPending))
			job.Status = tt.status

			_, err := Accept(job, tt.employeeID)

			assert.ErrorIs(t, err, tt.expected)
			assert.Equal(t, tt.status, job.Status)
			assert.Equal(t, models.OfferPending, job.AssignedEmployees[0].Status)
		})
	}
}

// ==========================
// Decline
// ==========================

func TestDecline_RemovesOfferAndUnassignsTasks(t *testing.T) {
	job := offeredJob(offer("A", models.OfferPending), offer("B", models.OfferAccepted))

	require.NoError(t, Decline(job, "A"))

	require.Len(t, job.AssignedEmployees, 1)
	assert.Equal(t, "B", job.AssignedEmployees[0].EmployeeID)
	assert.Equal(t, models.JobStatusSchedulePending, job.Status)

	legacy := job.LegacyAssignee()
	require.NotNil(t, legacy.AssignedTo)
	assert.Equal(t, "B", *legacy.AssignedTo)
	assert.Equal(t, "Name B", *legacy.AssignedToName)

	assert.Nil(t, job.Tasks[0].AssignedTo)
	assert.Nil(t, job.Tasks[0].AssignedToName)
	assert.Nil(t, job.Tasks[0].AssignedAt)
	assert.True(t, job.Tasks[1].IsAssignedTo("B"))
	assert.Nil(t, job.Tasks[2].AssignedTo)
}

func TestDecline_LastOfferLeavesEmptyListSchedulePending(t *testing.T) {
	job := offeredJob(offer("A", models.OfferAccepted))
	job.Status = models.JobStatusScheduled

	require.NoError(t, Decline(job, "A"))

	assert.NotNil(t, job.AssignedEmployees)
	assert.Empty(t, job.AssignedEmployees)
	assert.Equal(t, models.JobStatusSchedulePending, job.Status)
	assert.Equal(t, models.LegacyAssignee{}, job.LegacyAssignee())
}

func TestDecline_Errors(t *testing.T) {
	job := offeredJob(offer("A", models.OfferPending))
	assert.ErrorIs(t, Decline(job, "B"), ErrNotOffered)

	require.NoError(t, Decline(job, "A"))
	assert.ErrorIs(t, Decline(job, "A"), ErrNotOffered)

	job = offeredJob(offer("A", models.OfferAccepted))
	job.Status = models.JobStatusCompleted
	assert.ErrorIs(t, Decline(job, "A"), ErrInvalidTransition)
}

// ==========================
// Property: Scheduled iff non-empty and all accepted
// ==========================

func TestLifecycle_ScheduledIffAllAccepted(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for round := 0; round < 300; round++ {
		n := 1 + rng.Intn(5)
		offers := make([]models.AssignmentOffer, n)
		for i := range offers {
			offers[i] = offer(fmt.Sprintf("e%d", i), models.OfferPending)
		}
		job := &models.Job{ID: "job"}
		require.NoError(t, ApplyAllocation(job, offers, nil))
		require.Equal(t, models.JobStatusSchedulePending, job.Status)

		for step := 0; step < 10; step++ {
			id := fmt.Sprintf("e%d", rng.Intn(n+1))
			var err error
			if rng.Intn(3) == 0 {
				err = Decline(job, id)
			} else {
				_, err = Accept(job, id)
			}
			if err != nil {
				require.ErrorIs(t, err, ErrNotOffered)
			}

			allAccepted := len(job.AssignedEmployees) > 0
			for _, o := range job.AssignedEmployees {
				allAccepted = allAccepted && o.Status == models.OfferAccepted
			}
			if err == nil {
				require.Equal(t, allAccepted, job.Status == models.JobStatusScheduled,
					"round %d step %d offers %+v status %s", round, step, job.AssignedEmployees, job.Status)
			}
		}
	}
}

// ==========================
// Reassign
// ==========================

func TestReassign(t *testing.T) {
	later := now.Add(time.Hour)

	job := offeredJob(offer("A", models.OfferAccepted), offer("B", models.OfferPending))
	require.NoError(t, Reassign(job, "1", "B", later))
	assert.True(t, job.Tasks[0].IsAssignedTo("B"))
	assert.Equal(t, "Name B", *job.Tasks[0].AssignedToName)
	assert.Equal(t, later, *job.Tasks[0].AssignedAt)

	require.NoError(t, Reassign(job, "2", "", later))
	assert.Nil(t, job.Tasks[1].AssignedTo)
	assert.Nil(t, job.Tasks[1].AssignedAt)

	assert.ErrorIs(t, Reassign(job, "42", "A", later), ErrTaskNotFound)
	assert.ErrorIs(t, Reassign(job, "1", "Z", later), ErrNotOffered)

	job.Status = models.JobStatusCompleted
	assert.ErrorIs(t, Reassign(job, "1", "A", later), ErrInvalidTransition)
}

// ==========================
// Advance
// ==========================

func TestAdvance(t *testing.T) {
	rating := 4.5
	job := offeredJob(offer("A", models.OfferAccepted))
	job.Status = models.JobStatusScheduled

	require.NoError(t, Advance(job, models.JobStatusInProgress, nil, now))
	assert.Equal(t, models.JobStatusInProgress, job.Status)
	assert.Nil(t, job.CompletedAt)

	require.NoError(t, Advance(job, models.JobStatusCompleted, &rating, now))
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)
	assert.Equal(t, now, *job.CompletedAt)
	assert.Equal(t, 4.5, *job.ClientRating)
}

func TestAdvance_Errors(t *testing.T) {
	bad := 6.0
	tests := []struct {
		name     string
		from     models.JobStatus
		to       models.JobStatus
		rating   *float64
		expected error
	}{
		{"skip to completed", models.JobStatusScheduled, models.JobStatusCompleted, nil, ErrInvalidTransition},
		{"start before scheduled", models.JobStatusSchedulePending, models.JobStatusInProgress, nil, ErrInvalidTransition},
		{"backwards", models.JobStatusCompleted, models.JobStatusInProgress, nil, ErrInvalidTransition},
		{"rating out of range", models.JobStatusInProgress, models.JobStatusCompleted, &bad, ErrInvalidRating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &models.Job{ID: "job", Status: tt.from}
			err := Advance(job, tt.to, tt.rating, now)
			assert.ErrorIs(t, err, tt.expected)
			assert.Equal(t, tt.from, job.Status)
		})
	}
}
