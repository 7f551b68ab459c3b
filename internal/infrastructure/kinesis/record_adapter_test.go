package kinesis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validImage() map[string]events.DynamoDBAttributeValue {
	return map[string]events.DynamoDBAttributeValue{
		"id":             events.NewStringAttribute("event-123"),
		"aggregate_id":   events.NewStringAttribute("order-456"),
		"aggregate_type": events.NewStringAttribute("Order"),
		"event_type":     events.NewStringAttribute("OrderCreated"),
		"data":           events.NewStringAttribute(`{"order_id":"order-456"}`),
		"created_at":     events.NewStringAttribute("2026-01-15T10:30:00.123456789Z"),
		"version":        events.NewNumberAttribute("1"),
	}
}

func TestEventFromImage(t *testing.T) {
	tests := []struct {
		name    string
		image   map[string]events.DynamoDBAttributeValue
		wantErr bool
	}{
		{
			name:    "valid event",
			image:   validImage(),
			wantErr: false,
		},
		{
			name:    "nil image",
			image:   nil,
			wantErr: true,
		},
		{
			name: "missing required fields",
			image: map[string]events.DynamoDBAttributeValue{
				"id": events.NewStringAttribute("event-123"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := eventFromImage(tt.image)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, event)
			assert.Equal(t, "event-123", event.ID)
			assert.Equal(t, "order-456", event.AggregateID)
			assert.Equal(t, "Order", event.AggregateType)
			assert.Equal(t, "OrderCreated", event.EventType)
			assert.Equal(t, 1, event.Version)
			assert.Equal(t, json.RawMessage(`{"order_id":"order-456"}`), event.Data)
		})
	}
}

func TestEventFromStreamRecord(t *testing.T) {
	t.Run("INSERT converts successfully", func(t *testing.T) {
		record := events.DynamoDBEventRecord{
			EventName: "INSERT",
			Change: events.DynamoDBStreamRecord{
				NewImage: validImage(),
			},
		}

		event, err := EventFromStreamRecord(record)
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, "event-123", event.ID)
	})

	t.Run("MODIFY returns nil", func(t *testing.T) {
		event, err := EventFromStreamRecord(events.DynamoDBEventRecord{EventName: "MODIFY"})
		require.NoError(t, err)
		assert.Nil(t, event)
	})

	t.Run("REMOVE returns nil", func(t *testing.T) {
		event, err := EventFromStreamRecord(events.DynamoDBEventRecord{EventName: "REMOVE"})
		require.NoError(t, err)
		assert.Nil(t, event)
	})
}

func TestEventFromKinesisRecord(t *testing.T) {
	t.Run("valid Kinesis record", func(t *testing.T) {
		streamRecord := events.DynamoDBEventRecord{
			EventName: "INSERT",
			Change: events.DynamoDBStreamRecord{
				NewImage: map[string]events.DynamoDBAttributeValue{
					"id":             events.NewStringAttribute("event-123"),
					"aggregate_id":   events.NewStringAttribute("order-456"),
					"aggregate_type": events.NewStringAttribute("Order"),
					"event_type":     events.NewStringAttribute("OrderCreated"),
					"data":           events.NewStringAttribute(`{}`),
					"created_at":     events.NewStringAttribute(time.Now().Format(time.RFC3339Nano)),
					"version":        events.NewNumberAttribute("1"),
				},
			},
		}
		streamRecordJSON, err := json.Marshal(streamRecord)
		require.NoError(t, err)

		kinesisRecord := events.KinesisEventRecord{
			EventID: "kinesis-event-1",
			Kinesis: events.KinesisRecord{
				Data: streamRecordJSON,
			},
		}

		event, err := EventFromKinesisRecord(kinesisRecord)
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, "event-123", event.ID)
	})

	t.Run("invalid payload", func(t *testing.T) {
		kinesisRecord := events.KinesisEventRecord{
			Kinesis: events.KinesisRecord{Data: []byte("not json")},
		}

		event, err := EventFromKinesisRecord(kinesisRecord)
		assert.Error(t, err)
		assert.Nil(t, event)
	})
}
