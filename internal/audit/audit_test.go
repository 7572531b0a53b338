package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"dispatch-workers/internal/common/aws"
	"dispatch-workers/internal/common/logger"
	"dispatch-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Helpers
// ==========================

func sampleEvent() models.AllocationEvent {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return models.AllocationEvent{
		EventID: "evt-1",
		JobID:   "job-1",
		AssignedEmployees: []models.AssignmentOffer{
			{EmployeeID: "emp-1", EmployeeName: "Ann", AssignedAt: at, Status: models.OfferPending},
		},
		AllocatedBy: "admin-1",
		AllocatedAt: at,
		Method:      models.AllocationMethodManual,
	}
}

type fakeSink struct {
	name   string
	err    error
	events []models.AllocationEvent
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Write(_ context.Context, e models.AllocationEvent) error {
	f.events = append(f.events, e)
	return f.err
}

// ==========================
// Recorder & MultiSink
// ==========================

func TestRecorder_RecordAllocation(t *testing.T) {
	sink := &fakeSink{name: "fake"}
	r := NewRecorder(sink, logger.NewTestLogger(t))
	r.newID = func() string { return "evt-42" }
	r.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	offers := []models.AssignmentOffer{{EmployeeID: "emp-1", Status: models.OfferPending}}
	event := r.RecordAllocation(context.Background(), "job-1", offers, "admin-1", "")

	assert.Equal(t, "evt-42", event.EventID)
	assert.Equal(t, models.AllocationMethodAuto, event.Method)
	require.Len(t, sink.events, 1)
	assert.Equal(t, event, sink.events[0])

	offers[0].EmployeeID = "changed"
	assert.Equal(t, "emp-1", sink.events[0].AssignedEmployees[0].EmployeeID)
}

func TestRecorder_SwallowsSinkFailures(t *testing.T) {
	ok := &fakeSink{name: "ok"}
	bad := &fakeSink{name: "bad", err: errors.New("unreachable")}
	worse := &fakeSink{name: "worse", err: errors.New("denied")}

	r := NewRecorder(MultiSink{bad, ok, worse}, logger.NewTestLogger(t))
	event := r.RecordAllocation(context.Background(), "job-1", nil, "admin-1", models.AllocationMethodAuto)

	assert.NotEmpty(t, event.EventID)
	assert.Len(t, ok.events, 1, "a failing sink must not block the others")
	assert.Len(t, worse.events, 1)
}

type ctxSink struct {
	ctxErr      error
	hasDeadline bool
}

func (c *ctxSink) Name() string { return "ctx" }

func (c *ctxSink) Write(ctx context.Context, _ models.AllocationEvent) error {
	c.ctxErr = ctx.Err()
	_, c.hasDeadline = ctx.Deadline()
	return nil
}

func TestRecorder_WriteDetachedFromCallerCancellation(t *testing.T) {
	sink := &ctxSink{}
	r := NewRecorder(sink, logger.NewTestLogger(t), WithWriteTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.RecordAllocation(ctx, "job-1", nil, "admin-1", models.AllocationMethodAuto)

	assert.NoError(t, sink.ctxErr)
	assert.True(t, sink.hasDeadline)
}

func TestRecorder_WriteTimeout(t *testing.T) {
	tests := []struct {
		name     string
		opt      time.Duration
		expected time.Duration
	}{
		{"default", 0, DefaultWriteTimeout},
		{"override", 250 * time.Millisecond, 250 * time.Millisecond},
		{"negative ignored", -time.Second, DefaultWriteTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecorder(nil, logger.NewTestLogger(t), WithWriteTimeout(tt.opt))
			assert.Equal(t, tt.expected, r.timeout)
		})
	}
}

func TestRecorder_NilSink(t *testing.T) {
	r := NewRecorder(nil, logger.NewTestLogger(t))
	event := r.RecordAllocation(context.Background(), "job-1", nil, "admin-1", models.AllocationMethodManual)
	assert.Equal(t, "job-1", event.JobID)
}

func TestMultiSink_JoinsErrors(t *testing.T) {
	bad := &fakeSink{name: "bad", err: errors.New("boom")}
	err := MultiSink{&fakeSink{name: "ok"}, bad}.Write(context.Background(), sampleEvent())

	require.Error(t, err)
	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "bad", we.Sink)
	assert.Len(t, splitErrors(err), 1)

	assert.NoError(t, MultiSink{&fakeSink{name: "ok"}}.Write(context.Background(), sampleEvent()))
}

// ==========================
// Postgres
// ==========================

func TestPostgresSink_Write(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	event := sampleEvent()
	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs("job_allocated", "job", "job-1", sqlmock.AnyArg(), event.AllocatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, NewPostgresSink(db).Write(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSink_WriteError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO audit_log").WillReturnError(errors.New("disk full"))

	err = NewPostgresSink(db).Write(context.Background(), sampleEvent())
	assert.ErrorContains(t, err, "disk full")
}

// ==========================
// Elasticsearch
// ==========================

type esTransport struct {
	status int
	req    *http.Request
	body   string
}

func (f *esTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.req = req
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		f.body = string(b)
	}
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: f.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(`{"result":"created"}`)),
		Request:    req,
	}, nil
}

func newESSink(t *testing.T, status int) (*ElasticsearchSink, *esTransport) {
	transport := &esTransport{status: status}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://es.local:9200"},
		Transport: transport,
	})
	require.NoError(t, err)
	return NewElasticsearchSink(client, "job-allocations"), transport
}

func TestElasticsearchSink_Write(t *testing.T) {
	sink, transport := newESSink(t, http.StatusCreated)

	require.NoError(t, sink.Write(context.Background(), sampleEvent()))
	require.NotNil(t, transport.req)
	assert.Equal(t, http.MethodPut, transport.req.Method)
	assert.Equal(t, "/job-allocations/_doc/evt-1", transport.req.URL.Path)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(transport.body), &doc))
	assert.Equal(t, "job-1", doc["jobId"])
	assert.Equal(t, "manual", doc["method"])
}

func TestElasticsearchSink_WriteRejected(t *testing.T) {
	sink, _ := newESSink(t, http.StatusBadRequest)
	assert.Error(t, sink.Write(context.Background(), sampleEvent()))
}

func TestIndexMapping_IsValidJSON(t *testing.T) {
	var m map[string]interface{}
	assert.NoError(t, json.Unmarshal([]byte(IndexMapping), &m))
}

// ==========================
// SNS
// ==========================

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

func TestSNSSink_Write(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return awssdk.ToString(in.TopicArn) == "arn:topic" &&
			awssdk.ToString(in.MessageAttributes["jobId"].StringValue) == "job-1" &&
			strings.Contains(awssdk.ToString(in.Message), `"eventId":"evt-1"`)
	})).Return(&sns.PublishOutput{MessageId: awssdk.String("m-1")}, nil)

	sink := NewSNSSink(aws.NewSNSClientFrom(pub), "arn:topic")
	require.NoError(t, sink.Write(context.Background(), sampleEvent()))
	pub.AssertExpectations(t)
}
