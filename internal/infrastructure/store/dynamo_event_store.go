package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// allEventsPartition is the GSI partition key shared by every event so the
// full stream can be read back in insertion order for replay.
const allEventsPartition = "EVENT"

// DynamoEventStore stores events in DynamoDB. New items are streamed to
// Kinesis via the table's Kinesis integration, so no publisher is needed.
type DynamoEventStore struct {
	client        *dynamodb.Client
	eventTable    string
	snapshotTable string
}

type dynamoEventItem struct {
	AggregateID   string `dynamodbav:"aggregate_id"`
	Version       int    `dynamodbav:"version"`
	ID            string `dynamodbav:"id"`
	AggregateType string `dynamodbav:"aggregate_type"`
	EventType     string `dynamodbav:"event_type"`
	Data          string `dynamodbav:"data"`
	CreatedAt     string `dynamodbav:"created_at"`
	GSI1PK        string `dynamodbav:"gsi1pk"`
}

type dynamoSnapshotItem struct {
	AggregateID   string `dynamodbav:"aggregate_id"`
	AggregateType string `dynamodbav:"aggregate_type"`
	Version       int    `dynamodbav:"version"`
	State         string `dynamodbav:"state"`
	CreatedAt     string `dynamodbav:"created_at"`
}

func NewDynamoEventStore(client *dynamodb.Client, eventTable, snapshotTable string) *DynamoEventStore {
	return &DynamoEventStore{
		client:        client,
		eventTable:    eventTable,
		snapshotTable: snapshotTable,
	}
}

// Append stores an event in DynamoDB
func (es *DynamoEventStore) Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	version, err := es.nextVersion(ctx, aggregateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get next version: %w", err)
	}

	event := Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Timestamp:     time.Now(),
		Version:       version,
	}

	item, err := attributevalue.MarshalMap(dynamoEventItem{
		AggregateID:   event.AggregateID,
		Version:       event.Version,
		ID:            event.ID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Data:          string(event.Data),
		CreatedAt:     event.Timestamp.Format(time.RFC3339Nano),
		GSI1PK:        allEventsPartition,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event item: %w", err)
	}

	_, err = es.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(es.eventTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(aggregate_id) AND attribute_not_exists(version)"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put event: %w", err)
	}

	return &event, nil
}

func (es *DynamoEventStore) nextVersion(ctx context.Context, aggregateID string) (int, error) {
	out, err := es.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(es.eventTable),
		KeyConditionExpression: aws.String("aggregate_id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: aggregateID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, err
	}
	if len(out.Items) == 0 {
		return 1, nil
	}

	var latest dynamoEventItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &latest); err != nil {
		return 0, err
	}
	return latest.Version + 1, nil
}

// GetEvents returns all events for an aggregate in version order
func (es *DynamoEventStore) GetEvents(aggregateID string) []Event {
	return es.queryAggregate(context.Background(), aggregateID, 0)
}

// GetEventsFromVersion returns events for an aggregate after the given version
func (es *DynamoEventStore) GetEventsFromVersion(ctx context.Context, aggregateID string, version int) []Event {
	return es.queryAggregate(ctx, aggregateID, version)
}

func (es *DynamoEventStore) queryAggregate(ctx context.Context, aggregateID string, afterVersion int) []Event {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(es.eventTable),
		KeyConditionExpression: aws.String("aggregate_id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: aggregateID},
		},
	}
	if afterVersion > 0 {
		input.KeyConditionExpression = aws.String("aggregate_id = :id AND version > :v")
		input.ExpressionAttributeValues[":v"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", afterVersion)}
	}

	out, err := es.client.Query(ctx, input)
	if err != nil {
		log.Printf("[DynamoEventStore] Query failed for %s: %v", aggregateID, err)
		return nil
	}
	return es.unmarshalItems(out.Items)
}

// GetAllEvents returns every event in insertion order via the GSI
func (es *DynamoEventStore) GetAllEvents() []Event {
	out, err := es.client.Query(context.Background(), &dynamodb.QueryInput{
		TableName:              aws.String(es.eventTable),
		IndexName:              aws.String("gsi1"),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: allEventsPartition},
		},
	})
	if err != nil {
		log.Printf("[DynamoEventStore] Query failed for all events: %v", err)
		return nil
	}
	return es.unmarshalItems(out.Items)
}

func (es *DynamoEventStore) unmarshalItems(items []map[string]types.AttributeValue) []Event {
	var events []Event
	for _, raw := range items {
		var item dynamoEventItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			log.Printf("[DynamoEventStore] Failed to unmarshal item: %v", err)
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
		if err != nil {
			log.Printf("[DynamoEventStore] Bad created_at on %s: %v", item.ID, err)
			continue
		}
		events = append(events, Event{
			ID:            item.ID,
			AggregateID:   item.AggregateID,
			AggregateType: item.AggregateType,
			EventType:     item.EventType,
			Data:          json.RawMessage(item.Data),
			Timestamp:     ts,
			Version:       item.Version,
		})
	}
	return events
}

// GetSnapshot returns the latest snapshot for an aggregate, or nil
func (es *DynamoEventStore) GetSnapshot(ctx context.Context, aggregateID string) (*Snapshot, error) {
	out, err := es.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(es.snapshotTable),
		Key: map[string]types.AttributeValue{
			"aggregate_id": &types.AttributeValueMemberS{Value: aggregateID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item dynamoSnapshotItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot created_at: %w", err)
	}

	return &Snapshot{
		AggregateID:   item.AggregateID,
		AggregateType: item.AggregateType,
		Version:       item.Version,
		State:         json.RawMessage(item.State),
		CreatedAt:     ts,
	}, nil
}

// SaveSnapshot upserts the snapshot for an aggregate
func (es *DynamoEventStore) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	item, err := attributevalue.MarshalMap(dynamoSnapshotItem{
		AggregateID:   snapshot.AggregateID,
		AggregateType: snapshot.AggregateType,
		Version:       snapshot.Version,
		State:         string(snapshot.State),
		CreatedAt:     snapshot.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = es.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(es.snapshotTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put snapshot: %w", err)
	}
	return nil
}
