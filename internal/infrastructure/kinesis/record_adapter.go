package kinesis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/example/gamestore-fulfillment/internal/infrastructure/store"
)

// EventFromKinesisRecord converts a Kinesis record carrying a DynamoDB
// stream payload into a store event. The DynamoDB Kinesis integration ships
// records in DynamoDB Streams format; only INSERTs represent new events, so
// anything else yields (nil, nil).
func EventFromKinesisRecord(record events.KinesisEventRecord) (*store.Event, error) {
	var streamRecord events.DynamoDBEventRecord
	if err := json.Unmarshal(record.Kinesis.Data, &streamRecord); err != nil {
		return nil, fmt.Errorf("failed to unmarshal DynamoDB record: %w", err)
	}

	return EventFromStreamRecord(streamRecord)
}

// EventFromStreamRecord converts a DynamoDB stream record into a store event
func EventFromStreamRecord(record events.DynamoDBEventRecord) (*store.Event, error) {
	if record.EventName != "INSERT" {
		return nil, nil
	}
	return eventFromImage(record.Change.NewImage)
}

func eventFromImage(image map[string]events.DynamoDBAttributeValue) (*store.Event, error) {
	if image == nil {
		return nil, fmt.Errorf("DynamoDB image is nil")
	}

	event := &store.Event{}

	if v, ok := image["id"]; ok {
		event.ID = v.String()
	}
	if v, ok := image["aggregate_id"]; ok {
		event.AggregateID = v.String()
	}
	if v, ok := image["aggregate_type"]; ok {
		event.AggregateType = v.String()
	}
	if v, ok := image["event_type"]; ok {
		event.EventType = v.String()
	}
	if v, ok := image["data"]; ok {
		event.Data = json.RawMessage(v.String())
	}
	if v, ok := image["created_at"]; ok {
		t, err := time.Parse(time.RFC3339Nano, v.String())
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		event.Timestamp = t
	}
	if v, ok := image["version"]; ok {
		version, err := v.Integer()
		if err != nil {
			return nil, fmt.Errorf("failed to parse version: %w", err)
		}
		event.Version = int(version)
	}

	if event.ID == "" || event.AggregateID == "" || event.EventType == "" {
		return nil, fmt.Errorf("missing required fields: id=%s, aggregate_id=%s, event_type=%s",
			event.ID, event.AggregateID, event.EventType)
	}

	return event, nil
}
