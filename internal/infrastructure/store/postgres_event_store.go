package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresEventStore stores events in PostgreSQL
type PostgresEventStore struct {
	db        *sql.DB
	publisher EventPublisher
}

func NewPostgresEventStore(db *sql.DB, publisher EventPublisher) *PostgresEventStore {
	return &PostgresEventStore{
		db:        db,
		publisher: publisher,
	}
}

// Append stores an event in PostgreSQL and publishes it to the event bus
func (es *PostgresEventStore) Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var currentVersion int
	err = es.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM fulfillment_events WHERE aggregate_id = $1",
		aggregateID,
	).Scan(&currentVersion)
	if err != nil {
		return nil, err
	}

	event := Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Timestamp:     time.Now(),
		Version:       currentVersion + 1,
	}

	_, err = es.db.ExecContext(ctx,
		`INSERT INTO fulfillment_events (id, aggregate_id, aggregate_type, event_type, data, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID,
		event.AggregateID,
		event.AggregateType,
		event.EventType,
		event.Data,
		event.Version,
		event.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	if es.publisher != nil {
		if err := es.publisher.Publish(ctx, aggregateID, event); err != nil {
			return nil, err
		}
	}

	return &event, nil
}

// GetEvents returns all events for an aggregate in version order
func (es *PostgresEventStore) GetEvents(aggregateID string) []Event {
	return es.queryEvents(context.Background(),
		`SELECT id, aggregate_id, aggregate_type, event_type, data, version, created_at
		 FROM fulfillment_events
		 WHERE aggregate_id = $1
		 ORDER BY version ASC`,
		aggregateID,
	)
}

// GetEventsFromVersion returns events for an aggregate after the given version
func (es *PostgresEventStore) GetEventsFromVersion(ctx context.Context, aggregateID string, version int) []Event {
	return es.queryEvents(ctx,
		`SELECT id, aggregate_id, aggregate_type, event_type, data, version, created_at
		 FROM fulfillment_events
		 WHERE aggregate_id = $1 AND version > $2
		 ORDER BY version ASC`,
		aggregateID, version,
	)
}

// GetAllEvents returns every event in insertion order, used for replay
func (es *PostgresEventStore) GetAllEvents() []Event {
	return es.queryEvents(context.Background(),
		`SELECT id, aggregate_id, aggregate_type, event_type, data, version, created_at
		 FROM fulfillment_events
		 ORDER BY created_at ASC`,
	)
}

func (es *PostgresEventStore) queryEvents(ctx context.Context, query string, args ...any) []Event {
	rows, err := es.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Printf("[EventStore] Query failed: %v", err)
		return nil
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.Data, &e.Version, &e.Timestamp); err != nil {
			log.Printf("[EventStore] Scan failed: %v", err)
			continue
		}
		events = append(events, e)
	}
	return events
}

// GetSnapshot returns the latest snapshot for an aggregate, or nil
func (es *PostgresEventStore) GetSnapshot(ctx context.Context, aggregateID string) (*Snapshot, error) {
	var s Snapshot
	err := es.db.QueryRowContext(ctx,
		`SELECT aggregate_id, aggregate_type, version, state, created_at
		 FROM fulfillment_snapshots
		 WHERE aggregate_id = $1`,
		aggregateID,
	).Scan(&s.AggregateID, &s.AggregateType, &s.Version, &s.State, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSnapshot upserts the snapshot for an aggregate
func (es *PostgresEventStore) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	_, err := es.db.ExecContext(ctx,
		`INSERT INTO fulfillment_snapshots (aggregate_id, aggregate_type, version, state, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (aggregate_id)
		 DO UPDATE SET version = EXCLUDED.version, state = EXCLUDED.state, created_at = EXCLUDED.created_at`,
		snapshot.AggregateID,
		snapshot.AggregateType,
		snapshot.Version,
		snapshot.State,
		snapshot.CreatedAt,
	)
	return err
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
