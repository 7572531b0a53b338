// internal/audit/elasticsearch.go
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"dispatch-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// IndexMapping is the mapping EnsureIndex applies to the allocation index.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "eventId":     {"type": "keyword"},
      "jobId":       {"type": "keyword"},
      "allocatedBy": {"type": "keyword"},
      "allocatedAt": {"type": "date"},
      "method":      {"type": "keyword"},
      "assignedEmployees": {
        "properties": {
          "id":         {"type": "keyword"},
          "name":       {"type": "text"},
          "assignedAt": {"type": "date"},
          "status":     {"type": "keyword"}
        }
      }
    }
  }
}`

// ElasticsearchSink indexes each event under its event id.
type ElasticsearchSink struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchSink(client *elasticsearch.Client, index string) *ElasticsearchSink {
	return &ElasticsearchSink{client: client, index: index}
}

func (s *ElasticsearchSink) Name() string { return "elasticsearch" }

func (s *ElasticsearchSink) Write(ctx context.Context, event models.AllocationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: event.EventID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index audit document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index audit document: %s", res.Status())
	}
	return nil
}
