// internal/workers/allocation/advance-job-status/handler_test.go
package advancejobstatus

import (
	"context"
	"testing"

	"dispatch-workers/internal/common/config"
	apperrors "dispatch-workers/internal/common/errors"
	"dispatch-workers/internal/models"
	"dispatch-workers/internal/workers/allocation/workertest"
	"dispatch-workers/internal/workers/jobutil"
	"dispatch-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T, status models.JobStatus) (*Handler, *workertest.Env) {
	env := workertest.NewEnv(t).Seed("job-1", status,
		workertest.Offer("emp-1", "Ann", models.OfferAccepted),
		workertest.Offer("emp-2", "Bob", models.OfferAccepted),
	)
	h := NewHandler(LoadConfig(config.WorkerConfig{}), env.Service, registry.Default().InputSchema(TaskType), jobutil.Deps{Logger: env.Logger})
	return h, env
}

func rating(v float64) *float64 { return &v }

// ==========================
// Execute
// ==========================

func TestExecute_ScheduledToCompleted(t *testing.T) {
	h, env := createTestHandler(t, models.JobStatusScheduled)
	ctx := context.Background()

	out, err := h.Execute(ctx, &Input{JobID: "job-1", Status: string(models.JobStatusInProgress)})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusInProgress, out.Status)
	assert.Equal(t, 50, out.Progress)
	assert.Nil(t, out.CompletedAt)

	out, err = h.Execute(ctx, &Input{JobID: "job-1", Status: string(models.JobStatusCompleted), ClientRating: rating(4.5)})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, out.Status)
	assert.Equal(t, 100, out.Progress)
	require.NotNil(t, out.CompletedAt)
	assert.Equal(t, workertest.Now, *out.CompletedAt)
	require.NotNil(t, out.ClientRating)
	assert.Equal(t, 4.5, *out.ClientRating)

	history, err := env.Store.WorkHistory(ctx, "emp-2", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, history.TotalJobs)
	require.NotNil(t, history.AvgRating)
	assert.Equal(t, 4.5, *history.AvgRating)
}

func TestExecute_CompletedWithoutRating(t *testing.T) {
	h, _ := createTestHandler(t, models.JobStatusInProgress)

	out, err := h.Execute(context.Background(), &Input{JobID: "job-1", Status: string(models.JobStatusCompleted)})

	require.NoError(t, err)
	assert.Nil(t, out.ClientRating)
	assert.NotNil(t, out.CompletedAt)
}

func TestExecute_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		status models.JobStatus
		input  *Input
		code   apperrors.ErrorCode
	}{
		{"skip a step", models.JobStatusScheduled,
			&Input{JobID: "job-1", Status: "Completed"}, apperrors.ErrCodeInvalidTransition},
		{"not yet scheduled", models.JobStatusSchedulePending,
			&Input{JobID: "job-1", Status: "In Progress"}, apperrors.ErrCodeInvalidTransition},
		{"already completed", models.JobStatusCompleted,
			&Input{JobID: "job-1", Status: "Completed"}, apperrors.ErrCodeInvalidTransition},
		{"rating out of range", models.JobStatusInProgress,
			&Input{JobID: "job-1", Status: "Completed", ClientRating: rating(7)}, apperrors.ErrCodeInputValidationFailed},
		{"missing job", models.JobStatusScheduled,
			&Input{JobID: "missing", Status: "In Progress"}, apperrors.ErrCodeJobNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, env := createTestHandler(t, tt.status)
			before := env.Job(t, "job-1")

			_, err := h.Execute(context.Background(), tt.input)

			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Equal(t, before, env.Job(t, "job-1"))
		})
	}
}

// ==========================
// Input parsing
// ==========================

func TestParseInput_Invalid(t *testing.T) {
	h, _ := createTestHandler(t, models.JobStatusScheduled)

	tests := []struct {
		name string
		vars string
	}{
		{"unknown status", `{"jobId":"job-1","status":"Scheduled"}`},
		{"rating too high", `{"jobId":"job-1","status":"Completed","clientRating":5.5}`},
		{"negative rating", `{"jobId":"job-1","status":"Completed","clientRating":-1}`},
		{"missing status", `{"jobId":"job-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.parseInput(workertest.RawJob(TaskType, tt.vars))
			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeInputValidationFailed, stdErr.Code)
		})
	}

	input, err := h.parseInput(workertest.RawJob(TaskType, `{"jobId":"job-1","status":"Completed","clientRating":5}`))
	require.NoError(t, err)
	assert.Equal(t, 5.0, *input.ClientRating)
}
