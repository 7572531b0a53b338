// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dispatch-workers/internal/common/validation"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// LoadOrDefault reads the registry file and falls back to the built-in
// registry when the file does not exist.
func LoadOrDefault(path string) (*ActivityRegistry, error) {
	reg, err := LoadRegistry(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return reg, err
}

// Save writes the registry as indented JSON, creating parent directories.
func (r *ActivityRegistry) Save(path string) error {
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Find returns the activity bound to taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// InputSchema returns the input schema for taskType, or nil when the task
// type is not registered.
func (r *ActivityRegistry) InputSchema(taskType string) map[string]interface{} {
	if a, ok := r.Find(taskType); ok {
		return a.InputSchema
	}
	return nil
}

// Validate checks structural rules and that every built-in task type is
// registered. It returns one error per problem found.
func (r *ActivityRegistry) Validate() []error {
	var problems []error
	if len(r.Activities) == 0 {
		return []error{fmt.Errorf("registry contains no activities")}
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, a := range r.Activities {
		switch {
		case a.ID == "":
			problems = append(problems, fmt.Errorf("activity missing required field: ID"))
			continue
		case ids[a.ID]:
			problems = append(problems, fmt.Errorf("duplicate activity ID: %s", a.ID))
		}
		ids[a.ID] = true

		if a.DisplayName == "" {
			problems = append(problems, fmt.Errorf("activity %s missing required field: DisplayName", a.ID))
		}
		if a.TaskType == "" {
			problems = append(problems, fmt.Errorf("activity %s missing required field: TaskType", a.ID))
		} else if err := validation.ValidateTaskTypeNaming(a.TaskType); err != nil {
			problems = append(problems, fmt.Errorf("activity %s: %w", a.ID, err))
		}
		taskTypes[a.TaskType] = true

		if len(a.InputSchema) == 0 {
			problems = append(problems, fmt.Errorf("activity %s missing input schema", a.ID))
		} else if err := validation.CompileSchema(a.InputSchema); err != nil {
			problems = append(problems, fmt.Errorf("activity %s: %w", a.ID, err))
		}
		if a.ImplementationStatus != "" && !implementationStatuses[a.ImplementationStatus] {
			problems = append(problems, fmt.Errorf("activity %s: unknown implementation status %q", a.ID, a.ImplementationStatus))
		}
		if len(a.OutputSchema) > 0 {
			if err := validation.CompileSchema(a.OutputSchema); err != nil {
				problems = append(problems, fmt.Errorf("activity %s output schema: %w", a.ID, err))
			}
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				problems = append(problems, fmt.Errorf("activity %s: invalid timeout %q", a.ID, a.Timeout))
			}
		}
	}

	for _, tt := range TaskTypes {
		if !taskTypes[tt] {
			problems = append(problems, fmt.Errorf("built-in task type %s is not registered", tt))
		}
	}
	return problems
}
