package inventory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/example/gamestore-fulfillment/internal/infrastructure/store"
	"github.com/example/gamestore-fulfillment/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInventoryService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore)
	return service, eventStore
}

// ============================================
// Initialize Tests
// ============================================

func TestService_Initialize_Success(t *testing.T) {
	service, eventStore := newTestInventoryService()
	ctx := context.Background()

	err := service.Initialize(ctx, "game-123", 50)

	require.NoError(t, err)
	assert.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventStockInitialized, eventStore.AppendCalls[0].EventType)
	assert.Equal(t, AggregateType, eventStore.AppendCalls[0].AggregateType)
	assert.Equal(t, "stock:game-123", eventStore.AppendCalls[0].AggregateID)

	data := eventStore.AppendCalls[0].Data.(StockInitialized)
	assert.Equal(t, "game-123", data.GameID)
	assert.Equal(t, int64(50), data.Quantity)
}

func TestService_Initialize_ZeroQuantity(t *testing.T) {
	service, eventStore := newTestInventoryService()
	ctx := context.Background()

	// An opening quantity of zero is valid; only negatives are rejected
	err := service.Initialize(ctx, "game-123", 0)

	require.NoError(t, err)
	assert.Len(t, eventStore.AppendCalls, 1)
}

func TestService_Initialize_NegativeQuantity(t *testing.T) {
	service, eventStore := newTestInventoryService()
	ctx := context.Background()

	err := service.Initialize(ctx, "game-123", -10)

	assert.ErrorIs(t, err, ErrNegativeQuantity)
	assert.Empty(t, eventStore.AppendCalls)
}

func TestService_Initialize_AlreadyTracked(t *testing.T) {
	service, eventStore := newTestInventoryService()
	ctx := context.Background()

	require.NoError(t, service.Initialize(ctx, "game-123", 50))

	err := service.Initialize(ctx, "game-123", 20)

	assert.ErrorIs(t, err, ErrAlreadyTracked)
	assert.Len(t, eventStore.AppendCalls, 1)
}

// ============================================
// Debit Tests
// ============================================

func TestService_Debit_Success(t *testing.T) {
	service, eventStore := newTestInventoryService()
	ctx := context.Background()

	require.NoError(t, service.Initialize(ctx, "game-123", 50))

	err := service.Debit(ctx, "game-123", "order-456", 5)

	require.NoError(t, err)
	assert.Len(t, eventStore.AppendCalls, 2)
	assert.Equal(t, EventStockDebited, eventStore.AppendCalls[1].EventType)

	data := eventStore.AppendCalls[1].Data.(StockDebited)
	assert.Equal(t, "game-123", data.GameID)
	assert.Equal(t, "order-456", data.OrderID)
	assert.Equal(t, int64(5), data.Amount)

	level, err := service.Level(ctx, "game-123")
	require.NoError(t, err)
	assert.Equal(t, int64(45), level.Quantity)
}

func TestService_Debit_NotTracked(t *testing.T) {
	service, eventStore := newTestInventoryService()
	ctx := context.Background()

	err := service.Debit(ctx, "game-123", "order-456", 5)

	assert.ErrorIs(t, err, ErrNotTracked)
	assert.Empty(t, eventStore.AppendCalls)
}

func TestService_Debit_ZeroAmount(t *testing.T) {
	service, eventStore := newTestInventoryService()
	ctx := context.Background()

	err := service.Debit(ctx, "game-123", "order-456", 0)

	assert.ErrorIs(t, err, ErrInvalidDebit)
	assert.Empty(t, eventStore.AppendCalls)
}

func TestService_Debit_NegativeAmount(t *testing.T) {
	service, eventStore := newTestInventoryService()
	ctx := context.Background()

	err := service.Debit(ctx, "game-123", "order-456", -5)

	assert.ErrorIs(t, err, ErrInvalidDebit)
	assert.Empty(t, eventStore.AppendCalls)
}

func TestService_Debit_BelowZero(t *testing.T) {
	service, _ := newTestInventoryService()
	ctx := context.Background()

	// The ledger itself carries no floor; the caller enforces any policy
	require.NoError(t, service.Initialize(ctx, "game-123", 3))
	require.NoError(t, service.Debit(ctx, "game-123", "order-1", 5))

	level, err := service.Level(ctx, "game-123")
	require.NoError(t, err)
	assert.Equal(t, int64(-2), level.Quantity)
}

// ============================================
// Level Tests
// ============================================

func TestService_Level_ReplaysDebits(t *testing.T) {
	service, _ := newTestInventoryService()
	ctx := context.Background()

	require.NoError(t, service.Initialize(ctx, "game-123", 100))
	require.NoError(t, service.Debit(ctx, "game-123", "order-1", 10))
	require.NoError(t, service.Debit(ctx, "game-123", "order-2", 25))

	level, err := service.Level(ctx, "game-123")

	require.NoError(t, err)
	assert.Equal(t, "game-123", level.GameID)
	assert.Equal(t, int64(65), level.Quantity)
}

func TestService_Level_NotTracked(t *testing.T) {
	service, _ := newTestInventoryService()
	ctx := context.Background()

	level, err := service.Level(ctx, "missing")

	assert.ErrorIs(t, err, ErrNotTracked)
	assert.Nil(t, level)
}

// ============================================
// Snapshot Tests
// ============================================

func TestService_SnapshotCreatedAtThreshold(t *testing.T) {
	service, eventStore := newTestInventoryService()
	ctx := context.Background()

	gameID := "game-snapshot"
	require.NoError(t, service.Initialize(ctx, gameID, 1000))

	// Events 2 through 9
	for i := 0; i < 8; i++ {
		require.NoError(t, service.Debit(ctx, gameID, "order-x", 10))
	}
	assert.Empty(t, eventStore.SaveSnapshotCalls)

	// The 10th event crosses the threshold
	require.NoError(t, service.Debit(ctx, gameID, "order-x", 10))

	require.Len(t, eventStore.SaveSnapshotCalls, 1)
	snapshot := eventStore.SaveSnapshotCalls[0].Snapshot
	assert.Equal(t, "stock:"+gameID, snapshot.AggregateID)
	assert.Equal(t, 10, snapshot.Version)

	var savedState StockLevel
	require.NoError(t, json.Unmarshal(snapshot.State, &savedState))
	assert.Equal(t, gameID, savedState.GameID)
	assert.Equal(t, int64(910), savedState.Quantity)
}

func TestService_LoadFromSnapshot(t *testing.T) {
	service, eventStore := newTestInventoryService()
	ctx := context.Background()

	gameID := "game-with-snapshot"
	stateJSON, _ := json.Marshal(StockLevel{GameID: gameID, Quantity: 80, Version: 10})
	eventStore.SetSnapshot(&store.Snapshot{
		AggregateID:   "stock:" + gameID,
		AggregateType: AggregateType,
		Version:       10,
		State:         stateJSON,
	})

	level, err := service.Level(ctx, gameID)

	require.NoError(t, err)
	assert.Equal(t, int64(80), level.Quantity)
}

func TestService_LoadFromSnapshotWithSubsequentEvents(t *testing.T) {
	service, eventStore := newTestInventoryService()
	ctx := context.Background()

	gameID := "game-snapshot-events"
	stateJSON, _ := json.Marshal(StockLevel{GameID: gameID, Quantity: 80, Version: 10})
	eventStore.SetSnapshot(&store.Snapshot{
		AggregateID:   "stock:" + gameID,
		AggregateType: AggregateType,
		Version:       10,
		State:         stateJSON,
	})
	eventStore.SetEvents("stock:"+gameID, []store.Event{
		{
			Version:   11,
			EventType: EventStockDebited,
			Data:      mustMarshal(StockDebited{GameID: gameID, OrderID: "order-1", Amount: 30}),
		},
	})

	level, err := service.Level(ctx, gameID)

	require.NoError(t, err)
	assert.Equal(t, int64(50), level.Quantity)
	assert.Equal(t, 11, level.Version)
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
