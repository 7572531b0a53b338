// internal/audit/postgres.go
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"dispatch-workers/internal/models"
)

const (
	eventTypeJobAllocated = "job_allocated"
	resourceTypeJob       = "job"
)

// PostgresSink appends events to the audit_log table.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) Write(ctx context.Context, event models.AllocationEvent) error {
	details, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		eventTypeJobAllocated,
		resourceTypeJob,
		event.JobID,
		details,
		event.AllocatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit_log: %w", err)
	}
	return nil
}
