package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event
type Event struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
}

// MarshalJSON returns the JSON encoding of the event
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	return json.Marshal(&struct{ Alias }{Alias: Alias(e)})
}

// EventPublisher publishes appended events to the event bus
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// EventStore is an in-memory event store with snapshot support
type EventStore struct {
	mu        sync.RWMutex
	events    map[string][]Event // aggregateID -> events
	snapshots map[string]*Snapshot
	publisher EventPublisher
}

func NewEventStore(publisher EventPublisher) *EventStore {
	return &EventStore{
		events:    make(map[string][]Event),
		snapshots: make(map[string]*Snapshot),
		publisher: publisher,
	}
}

// Append stores an event and publishes it to the event bus
func (es *EventStore) Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	es.mu.Lock()
	version := len(es.events[aggregateID]) + 1
	event := Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Timestamp:     time.Now(),
		Version:       version,
	}
	es.events[aggregateID] = append(es.events[aggregateID], event)
	es.mu.Unlock()

	if es.publisher != nil {
		if err := es.publisher.Publish(ctx, aggregateID, event); err != nil {
			return nil, err
		}
	}

	return &event, nil
}

// GetEvents returns all events for an aggregate
func (es *EventStore) GetEvents(aggregateID string) []Event {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return es.events[aggregateID]
}

// GetEventsFromVersion returns events for an aggregate after the given version
func (es *EventStore) GetEventsFromVersion(ctx context.Context, aggregateID string, version int) []Event {
	es.mu.RLock()
	defer es.mu.RUnlock()

	var events []Event
	for _, e := range es.events[aggregateID] {
		if e.Version > version {
			events = append(events, e)
		}
	}
	return events
}

// GetAllEvents returns every event in insertion order, used for replay
func (es *EventStore) GetAllEvents() []Event {
	es.mu.RLock()
	defer es.mu.RUnlock()

	var all []Event
	for _, events := range es.events {
		all = append(all, events...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	return all
}

// GetSnapshot returns the latest snapshot for an aggregate, or nil
func (es *EventStore) GetSnapshot(ctx context.Context, aggregateID string) (*Snapshot, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return es.snapshots[aggregateID], nil
}

// SaveSnapshot stores a snapshot, replacing any previous one
func (es *EventStore) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.snapshots[snapshot.AggregateID] = snapshot
	return nil
}
