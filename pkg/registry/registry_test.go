package registry

import (
	"path/filepath"
	"strings"
	"testing"

	"dispatch-workers/internal/common/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	reg := Default()
	assert.Empty(t, reg.Validate())
	assert.Len(t, reg.Activities, len(TaskTypes))
	for _, a := range reg.Activities {
		assert.Equal(t, StatusCompleted, a.ImplementationStatus, a.ID)
		assert.Equal(t, []string{WorkflowJobAllocation}, a.Workflows, a.ID)
		assert.NotEmpty(t, a.OutputSchema, a.ID)
	}

	for _, tt := range TaskTypes {
		a, ok := reg.Find(tt)
		require.True(t, ok, tt)
		assert.NotEmpty(t, a.InputSchema, tt)
		assert.Equal(t, "allocation", a.Category)
	}
}

func TestDefault_InputSchemas(t *testing.T) {
	reg := Default()

	tests := []struct {
		taskType string
		input    map[string]interface{}
		valid    bool
	}{
		{TaskAcceptAssignment, map[string]interface{}{"jobId": "j", "employeeId": "e"}, true},
		{TaskAcceptAssignment, map[string]interface{}{"jobId": "j"}, false},
		{TaskAllocateEmployees, map[string]interface{}{"jobId": "j", "employeeIds": []interface{}{}}, true},
		{TaskAllocateEmployees, map[string]interface{}{"jobId": "j", "employeeIds": []interface{}{"a"}, "method": "random"}, false},
		{TaskAdvanceJobStatus, map[string]interface{}{"jobId": "j", "status": "Completed", "clientRating": 4.5}, true},
		{TaskAdvanceJobStatus, map[string]interface{}{"jobId": "j", "status": "Scheduled"}, false},
		{TaskAdvanceJobStatus, map[string]interface{}{"jobId": "j", "status": "Completed", "clientRating": 6.0}, false},
		{TaskGenerateTaskChecklist, map[string]interface{}{}, true},
		{TaskReassignTask, map[string]interface{}{"jobId": "j", "taskId": "1", "employeeId": ""}, true},
		{TaskRankCandidates, map[string]interface{}{"jobId": "j", "maxCandidates": -1.0}, false},
	}

	for _, tt := range tests {
		result, err := validation.ValidateInput(tt.input, reg.InputSchema(tt.taskType))
		require.NoError(t, err)
		assert.Equal(t, tt.valid, result.Valid, "%s %v: %v", tt.taskType, tt.input, result.GetErrorMessages())
	}
}

func TestValidate_ReportsProblems(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{
		{ID: "a", DisplayName: "A", TaskType: "Bad_Type", InputSchema: map[string]interface{}{"type": "object"}},
		{ID: "a", DisplayName: "", TaskType: TaskRankCandidates, Timeout: "soon", ImplementationStatus: "shipped"},
	}}

	problems := reg.Validate()
	var messages []string
	for _, p := range problems {
		messages = append(messages, p.Error())
	}
	joined := strings.Join(messages, "\n")

	assert.Contains(t, joined, "lower-kebab-case")
	assert.Contains(t, joined, "duplicate activity ID: a")
	assert.Contains(t, joined, "missing required field: DisplayName")
	assert.Contains(t, joined, "missing input schema")
	assert.Contains(t, joined, `invalid timeout "soon"`)
	assert.Contains(t, joined, `unknown implementation status "shipped"`)
	assert.Contains(t, joined, "built-in task type accept-assignment is not registered")

	assert.Len(t, (&ActivityRegistry{}).Validate(), 1)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.json")

	require.NoError(t, Default().Save(path))
	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.NotEmpty(t, loaded.LastUpdated)
	assert.Empty(t, loaded.Validate())

	fallback, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Len(t, fallback.Activities, len(TaskTypes))
}
