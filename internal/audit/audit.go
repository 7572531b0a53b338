// internal/audit/audit.go
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch-workers/internal/common/logger"
	"dispatch-workers/internal/common/metrics"
	"dispatch-workers/internal/models"

	"github.com/google/uuid"
)

// Sink receives allocation events. Writes are append-only.
type Sink interface {
	Name() string
	Write(ctx context.Context, event models.AllocationEvent) error
}

// WriteError ties a failed write to the sink that produced it.
type WriteError struct {
	Sink string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("audit sink %s: %v", e.Sink, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// MultiSink writes every event to each sink in turn. One sink failing does
// not stop the others; the failures are joined.
type MultiSink []Sink

func (m MultiSink) Name() string {
	return "multi"
}

func (m MultiSink) Write(ctx context.Context, event models.AllocationEvent) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, event); err != nil {
			errs = append(errs, &WriteError{Sink: s.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}

// DefaultWriteTimeout bounds one fan-out to the sinks.
const DefaultWriteTimeout = 3 * time.Second

// Recorder is the best-effort front to the sinks. It never returns an
// error: failures are logged and counted.
type Recorder struct {
	sink    Sink
	logger  logger.Logger
	timeout time.Duration
	now     func() time.Time
	newID   func() string
}

type RecorderOption func(*Recorder)

// WithWriteTimeout overrides DefaultWriteTimeout. Non-positive values are
// ignored.
func WithWriteTimeout(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func NewRecorder(sink Sink, log logger.Logger, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		sink:    sink,
		logger:  log.WithFields(map[string]interface{}{"component": "audit"}),
		timeout: DefaultWriteTimeout,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecordAllocation builds the event for a committed allocation and hands it
// to the sink. The event is returned so callers can surface its id.
//
// The write runs on a context detached from ctx's cancellation and bounded
// by the recorder's own timeout, so a slow sink cannot consume the caller's
// deadline.
func (r *Recorder) RecordAllocation(ctx context.Context, jobID string, offers []models.AssignmentOffer, allocatedBy, method string) models.AllocationEvent {
	if method == "" {
		method = models.AllocationMethodAuto
	}
	event := models.AllocationEvent{
		EventID:           r.newID(),
		JobID:             jobID,
		AssignedEmployees: append([]models.AssignmentOffer(nil), offers...),
		AllocatedBy:       allocatedBy,
		AllocatedAt:       r.now().UTC(),
		Method:            method,
	}
	if r.sink == nil {
		return event
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if err := r.sink.Write(writeCtx, event); err != nil {
		for _, failed := range splitErrors(err) {
			sink := r.sink.Name()
			var we *WriteError
			if errors.As(failed, &we) {
				sink = we.Sink
			}
			metrics.AuditFailures.WithLabelValues(sink).Inc()
			r.logger.Warn("audit write failed", map[string]interface{}{
				"jobId":     jobID,
				"eventId":   event.EventID,
				"sink":      sink,
				"errorCode": "AUDIT_WRITE_FAILED",
				"error":     failed.Error(),
			})
		}
	}
	return event
}

func splitErrors(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
