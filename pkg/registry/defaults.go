// pkg/registry/defaults.go
package registry

const (
	TaskRankCandidates        = "rank-candidates"
	TaskGenerateTaskChecklist = "generate-task-checklist"
	TaskAllocateEmployees     = "allocate-employees"
	TaskAcceptAssignment      = "accept-assignment"
	TaskDeclineAssignment     = "decline-assignment"
	TaskReassignTask          = "reassign-task"
	TaskAdvanceJobStatus      = "advance-job-status"
)

// TaskTypes lists every task type the worker manager serves.
var TaskTypes = []string{
	TaskRankCandidates,
	TaskGenerateTaskChecklist,
	TaskAllocateEmployees,
	TaskAcceptAssignment,
	TaskDeclineAssignment,
	TaskReassignTask,
	TaskAdvanceJobStatus,
}

type obj = map[string]interface{}

func str(minLength int) obj {
	s := obj{"type": "string"}
	if minLength > 0 {
		s["minLength"] = minLength
	}
	return s
}

func object(required []string, props obj) obj {
	o := obj{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": true,
	}
	if len(required) > 0 {
		req := make([]interface{}, len(required))
		for i, r := range required {
			req[i] = r
		}
		o["required"] = req
	}
	return o
}

var (
	jobID      = str(1)
	employeeID = str(1)
	jobView    = object([]string{"jobId", "status", "progress"}, obj{
		"jobId":             str(1),
		"status":            str(1),
		"progress":          obj{"type": "integer"},
		"assignedEmployees": obj{"type": "array"},
		"assignedTo":        obj{"type": []interface{}{"string", "null"}},
		"assignedToName":    obj{"type": []interface{}{"string", "null"}},
	})
)

// Default is the built-in registry. It is the fallback when no registry
// file is configured and the source for the registry-updater export.
func Default() *ActivityRegistry {
	reg := &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{
			{
				ID:          "allocation.candidates.rank",
				DisplayName: "Rank Candidates",
				Description: "Scores every employee against a job and returns them best first",
				TaskType:    TaskRankCandidates,
				InputSchema: object([]string{"jobId"}, obj{
					"jobId":         jobID,
					"availableOnly": obj{"type": "boolean"},
					"maxCandidates": obj{"type": "integer", "minimum": 0},
				}),
				OutputSchema: object([]string{"jobId", "candidates"}, obj{
					"jobId":      str(1),
					"candidates": obj{"type": "array"},
				}),
				ErrorCodes: []string{"JOB_NOT_FOUND", "STORE_UNAVAILABLE"},
				Timeout:    "30s",
			},
			{
				ID:          "allocation.checklist.generate",
				DisplayName: "Generate Task Checklist",
				Description: "Builds the default task checklist for a job type and building type",
				TaskType:    TaskGenerateTaskChecklist,
				InputSchema: object(nil, obj{
					"jobId":        str(0),
					"jobType":      str(0),
					"buildingType": str(0),
					"persist":      obj{"type": "boolean"},
				}),
				OutputSchema: object([]string{"tasks"}, obj{
					"tasks":         obj{"type": "array"},
					"totalDuration": obj{"type": "integer"},
				}),
				ErrorCodes: []string{"JOB_NOT_FOUND", "STORE_CONFLICT", "STORE_UNAVAILABLE"},
				Timeout:    "10s",
			},
			{
				ID:          "allocation.employees.allocate",
				DisplayName: "Allocate Employees",
				Description: "Distributes a job's tasks across the selected employees and offers them the job",
				TaskType:    TaskAllocateEmployees,
				InputSchema: object([]string{"jobId", "employeeIds"}, obj{
					"jobId":       jobID,
					"employeeIds": obj{"type": "array", "items": str(0)},
					"allocatedBy": str(0),
					"method":      obj{"type": "string", "enum": []interface{}{"auto", "manual"}},
				}),
				OutputSchema: jobView,
				ErrorCodes: []string{
					"JOB_NOT_FOUND", "EMPLOYEE_NOT_FOUND", "NO_EMPLOYEES_SELECTED",
					"INVALID_TRANSITION", "STORE_CONFLICT", "STORE_UNAVAILABLE",
				},
				Timeout: "30s",
				Retries: 3,
			},
			{
				ID:          "allocation.assignment.accept",
				DisplayName: "Accept Assignment",
				Description: "Records an employee accepting their offer on a job",
				TaskType:    TaskAcceptAssignment,
				InputSchema: object([]string{"jobId", "employeeId"}, obj{
					"jobId":      jobID,
					"employeeId": employeeID,
				}),
				OutputSchema: jobView,
				ErrorCodes:   []string{"JOB_NOT_FOUND", "NOT_OFFERED", "INVALID_TRANSITION", "STORE_CONFLICT", "STORE_UNAVAILABLE"},
				Timeout:      "10s",
				Retries:      3,
			},
			{
				ID:          "allocation.assignment.decline",
				DisplayName: "Decline Assignment",
				Description: "Removes an employee's offer and releases their tasks",
				TaskType:    TaskDeclineAssignment,
				InputSchema: object([]string{"jobId", "employeeId"}, obj{
					"jobId":      jobID,
					"employeeId": employeeID,
				}),
				OutputSchema: jobView,
				ErrorCodes:   []string{"JOB_NOT_FOUND", "NOT_OFFERED", "INVALID_TRANSITION", "STORE_CONFLICT", "STORE_UNAVAILABLE"},
				Timeout:      "10s",
				Retries:      3,
			},
			{
				ID:          "allocation.task.reassign",
				DisplayName: "Reassign Task",
				Description: "Points a task at another offered employee or clears its assignee",
				TaskType:    TaskReassignTask,
				InputSchema: object([]string{"jobId", "taskId"}, obj{
					"jobId":      jobID,
					"taskId":     str(1),
					"employeeId": str(0),
				}),
				OutputSchema: object([]string{"jobId", "taskId"}, obj{
					"jobId":  str(1),
					"taskId": str(1),
				}),
				ErrorCodes: []string{"JOB_NOT_FOUND", "TASK_NOT_FOUND", "NOT_OFFERED", "INVALID_TRANSITION", "STORE_CONFLICT"},
				Timeout:    "10s",
				Retries:    3,
			},
			{
				ID:          "allocation.job.advance",
				DisplayName: "Advance Job Status",
				Description: "Moves a scheduled job to In Progress and then to Completed",
				TaskType:    TaskAdvanceJobStatus,
				InputSchema: object([]string{"jobId", "status"}, obj{
					"jobId":        jobID,
					"status":       obj{"type": "string", "enum": []interface{}{"In Progress", "Completed"}},
					"clientRating": obj{"type": "number", "minimum": 0, "maximum": 5},
				}),
				OutputSchema: jobView,
				ErrorCodes:   []string{"JOB_NOT_FOUND", "INVALID_TRANSITION", "INPUT_VALIDATION_FAILED", "STORE_CONFLICT"},
				Timeout:      "10s",
				Retries:      3,
			},
		},
	}
	for i := range reg.Activities {
		a := &reg.Activities[i]
		a.Category = "allocation"
		a.Version = "1.0.0"
		a.ImplementationStatus = StatusCompleted
		a.Workflows = []string{WorkflowJobAllocation}
		a.Tags = []string{"allocation"}
	}
	return reg
}
