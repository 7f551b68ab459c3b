package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	published []publishedEvent
}

type publishedEvent struct {
	key   string
	event any
}

func (p *capturingPublisher) Publish(ctx context.Context, key string, event any) error {
	p.published = append(p.published, publishedEvent{key: key, event: event})
	return nil
}

// ============================================
// Append Tests
// ============================================

func TestEventStore_Append_AssignsVersions(t *testing.T) {
	es := NewEventStore(nil)
	ctx := context.Background()

	e1, err := es.Append(ctx, "agg-1", "Order", "OrderCreated", map[string]string{"order_id": "agg-1"})
	require.NoError(t, err)
	e2, err := es.Append(ctx, "agg-1", "Order", "OrderLineAdded", map[string]string{"game_id": "g"})
	require.NoError(t, err)

	assert.Equal(t, 1, e1.Version)
	assert.Equal(t, 2, e2.Version)
	assert.NotEmpty(t, e1.ID)
	assert.NotEqual(t, e1.ID, e2.ID)
}

func TestEventStore_Append_VersionsPerAggregate(t *testing.T) {
	es := NewEventStore(nil)
	ctx := context.Background()

	e1, err := es.Append(ctx, "agg-1", "Order", "OrderCreated", struct{}{})
	require.NoError(t, err)
	e2, err := es.Append(ctx, "agg-2", "Order", "OrderCreated", struct{}{})
	require.NoError(t, err)

	// Versions are scoped to the aggregate, not the store
	assert.Equal(t, 1, e1.Version)
	assert.Equal(t, 1, e2.Version)
}

func TestEventStore_Append_PublishesToBus(t *testing.T) {
	publisher := &capturingPublisher{}
	es := NewEventStore(publisher)
	ctx := context.Background()

	_, err := es.Append(ctx, "agg-1", "Order", "OrderCreated", struct{}{})
	require.NoError(t, err)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, "agg-1", publisher.published[0].key)
	assert.Equal(t, "OrderCreated", publisher.published[0].event.(Event).EventType)
}

// ============================================
// Retrieval Tests
// ============================================

func TestEventStore_GetEvents(t *testing.T) {
	es := NewEventStore(nil)
	ctx := context.Background()

	es.Append(ctx, "agg-1", "Order", "OrderCreated", struct{}{})
	es.Append(ctx, "agg-1", "Order", "OrderShipped", struct{}{})
	es.Append(ctx, "agg-2", "Order", "OrderCreated", struct{}{})

	events := es.GetEvents("agg-1")

	require.Len(t, events, 2)
	assert.Equal(t, "OrderCreated", events[0].EventType)
	assert.Equal(t, "OrderShipped", events[1].EventType)
	assert.Empty(t, es.GetEvents("missing"))
}

func TestEventStore_GetEventsFromVersion(t *testing.T) {
	es := NewEventStore(nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		es.Append(ctx, "agg-1", "Order", "OrderLineAdded", struct{}{})
	}

	events := es.GetEventsFromVersion(ctx, "agg-1", 3)

	require.Len(t, events, 2)
	assert.Equal(t, 4, events[0].Version)
	assert.Equal(t, 5, events[1].Version)
}

func TestEventStore_GetAllEvents(t *testing.T) {
	es := NewEventStore(nil)
	ctx := context.Background()

	es.Append(ctx, "agg-1", "Order", "OrderCreated", struct{}{})
	es.Append(ctx, "agg-2", "Game", "GameRegistered", struct{}{})

	assert.Len(t, es.GetAllEvents(), 2)
}

func TestEventStore_GetAllEvents_InsertionOrder(t *testing.T) {
	es := NewEventStore(nil)
	ctx := context.Background()

	// Interleave aggregates; replay must see events in the order they were
	// appended, not grouped by aggregate
	es.Append(ctx, "agg-1", "Game", "GameRegistered", struct{}{})
	es.Append(ctx, "agg-2", "Stock", "StockInitialized", struct{}{})
	es.Append(ctx, "agg-3", "Order", "OrderCreated", struct{}{})
	es.Append(ctx, "agg-2", "Stock", "StockDebited", struct{}{})
	es.Append(ctx, "agg-3", "Order", "OrderShipped", struct{}{})

	all := es.GetAllEvents()
	require.Len(t, all, 5)

	types := make([]string, 0, len(all))
	for _, e := range all {
		types = append(types, e.EventType)
	}
	assert.Equal(t, []string{
		"GameRegistered",
		"StockInitialized",
		"OrderCreated",
		"StockDebited",
		"OrderShipped",
	}, types)
}

// ============================================
// Snapshot Tests
// ============================================

func TestEventStore_SnapshotRoundTrip(t *testing.T) {
	es := NewEventStore(nil)
	ctx := context.Background()

	snapshot, err := es.GetSnapshot(ctx, "agg-1")
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	err = es.SaveSnapshot(ctx, &Snapshot{
		AggregateID:   "agg-1",
		AggregateType: "Order",
		Version:       10,
		State:         []byte(`{"id":"agg-1"}`),
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)

	snapshot, err = es.GetSnapshot(ctx, "agg-1")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, 10, snapshot.Version)
}

func TestEventStore_SnapshotReplaced(t *testing.T) {
	es := NewEventStore(nil)
	ctx := context.Background()

	require.NoError(t, es.SaveSnapshot(ctx, &Snapshot{AggregateID: "agg-1", Version: 10, State: []byte(`{}`)}))
	require.NoError(t, es.SaveSnapshot(ctx, &Snapshot{AggregateID: "agg-1", Version: 20, State: []byte(`{}`)}))

	snapshot, err := es.GetSnapshot(ctx, "agg-1")
	require.NoError(t, err)
	assert.Equal(t, 20, snapshot.Version)
}
