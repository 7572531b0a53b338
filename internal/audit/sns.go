// internal/audit/sns.go
package audit

import (
	"context"

	"dispatch-workers/internal/common/aws"
	"dispatch-workers/internal/models"
)

// SNSSink publishes each event to a topic so downstream notifiers can fan it
// out to the offered employees.
type SNSSink struct {
	client   *aws.SNSClient
	topicARN string
}

func NewSNSSink(client *aws.SNSClient, topicARN string) *SNSSink {
	return &SNSSink{client: client, topicARN: topicARN}
}

func (s *SNSSink) Name() string { return "sns" }

func (s *SNSSink) Write(ctx context.Context, event models.AllocationEvent) error {
	_, err := s.client.PublishJSON(ctx, s.topicARN, "job allocated", event, map[string]string{
		"eventType": eventTypeJobAllocated,
		"jobId":     event.JobID,
		"method":    event.Method,
	})
	return err
}
