package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/gamestore-fulfillment/internal/infrastructure/store"
)

// Aggregate defines the interface for event-sourced aggregates
type Aggregate interface {
	GetID() string
	GetVersion() int
	ApplyEvent(store.Event) error
}

// Load rebuilds an aggregate by replaying its events, starting from a
// snapshot when one exists. The boolean reports whether any state was found.
func Load[T Aggregate](
	ctx context.Context,
	eventStore store.EventStoreInterface,
	id string,
	newAggregate func() T,
) (T, bool, error) {
	agg := newAggregate()

	snapshot, err := eventStore.GetSnapshot(ctx, id)
	if err != nil {
		var zero T
		return zero, false, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var events []store.Event
	if snapshot != nil {
		if err := json.Unmarshal(snapshot.State, agg); err != nil {
			var zero T
			return zero, false, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		events = eventStore.GetEventsFromVersion(ctx, id, snapshot.Version)
	} else {
		events = eventStore.GetEvents(id)
	}

	hasState := snapshot != nil || len(events) > 0

	for _, event := range events {
		if err := agg.ApplyEvent(event); err != nil {
			var zero T
			return zero, false, fmt.Errorf("failed to apply event: %w", err)
		}
	}

	return agg, hasState, nil
}

// MaybeSnapshot creates a snapshot when the aggregate version crosses the
// threshold. Snapshot failures are not fatal; callers log and move on.
func MaybeSnapshot(
	ctx context.Context,
	eventStore store.EventStoreInterface,
	agg Aggregate,
	aggregateType string,
) error {
	version := agg.GetVersion()
	if version == 0 || version%store.SnapshotThreshold != 0 {
		return nil
	}

	state, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("failed to marshal aggregate state: %w", err)
	}

	return eventStore.SaveSnapshot(ctx, &store.Snapshot{
		AggregateID:   agg.GetID(),
		AggregateType: aggregateType,
		Version:       version,
		State:         state,
		CreatedAt:     time.Now(),
	})
}
