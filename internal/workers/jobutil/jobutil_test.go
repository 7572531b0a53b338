package jobutil

import (
	"encoding/json"
	"testing"

	apperrors "dispatch-workers/internal/common/errors"
	"dispatch-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockJob(vars string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Type: "test", Retries: 3, Variables: vars}}
}

var schema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"jobId"},
	"properties": map[string]interface{}{
		"jobId": map[string]interface{}{"type": "string", "minLength": 1},
	},
}

type input struct {
	JobID string `json:"jobId"`
	Extra int    `json:"extra"`
}

func TestDecode(t *testing.T) {
	var in input
	require.NoError(t, Decode(mockJob(`{"jobId":"job-1","extra":3}`), schema, &in))
	assert.Equal(t, input{JobID: "job-1", Extra: 3}, in)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		vars string
		code apperrors.ErrorCode
	}{
		{"malformed json", `{"jobId":`, apperrors.ErrCodeParseError},
		{"schema violation", `{"jobId":""}`, apperrors.ErrCodeInputValidationFailed},
		{"wrong field type", `{"jobId":"j","extra":"three"}`, apperrors.ErrCodeParseError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in input
			err := Decode(mockJob(tt.vars), schema, &in)
			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.code, stdErr.Code)
		})
	}
}

func TestViewOf(t *testing.T) {
	job := &models.Job{
		ID:     "job-1",
		Status: models.JobStatusSchedulePending,
		AssignedEmployees: []models.AssignmentOffer{
			{EmployeeID: "emp-1", EmployeeName: "Ann", Status: models.OfferPending},
		},
	}
	raw, err := json.Marshal(ViewOf(job))
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "job-1", got["jobId"])
	assert.Equal(t, float64(15), got["progress"])
	assert.Equal(t, "emp-1", got["assignedTo"])
	assert.Equal(t, "Ann", got["assignedToName"])

	raw, _ = json.Marshal(ViewOf(&models.Job{ID: "job-2", Status: models.JobStatusSchedulePending}))
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Nil(t, got["assignedTo"])
	assert.Equal(t, []interface{}{}, got["assignedEmployees"])
}
