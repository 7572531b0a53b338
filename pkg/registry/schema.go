// pkg/registry/schema.go
package registry

// Implementation states an activity moves through.
const (
	StatusPlanned    = "planned"
	StatusCompleted  = "completed"
	StatusVerified   = "verified"
	StatusDeprecated = "deprecated"
)

// WorkflowJobAllocation is the BPMN process every allocation activity
// belongs to.
const WorkflowJobAllocation = "job-allocation"

var implementationStatuses = map[string]bool{
	StatusPlanned:    true,
	StatusCompleted:  true,
	StatusVerified:   true,
	StatusDeprecated: true,
}

// ActivityRegistry is the document the worker manager loads to learn which
// task types exist and how their variables are shaped.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated,omitempty"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one BPMN service task. InputSchema gates job variables
// before a worker runs; OutputSchema documents what the worker completes
// the job with.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description,omitempty"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema,omitempty"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows,omitempty"`
	Tags                 []string               `json:"tags,omitempty"`
}
