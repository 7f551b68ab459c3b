package projection

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/example/gamestore-fulfillment/internal/domain/game"
	"github.com/example/gamestore-fulfillment/internal/domain/inventory"
	"github.com/example/gamestore-fulfillment/internal/domain/order"
	"github.com/example/gamestore-fulfillment/internal/domain/payment"
	"github.com/example/gamestore-fulfillment/internal/infrastructure/store"
	"github.com/example/gamestore-fulfillment/internal/infrastructure/store/mocks"
	"github.com/example/gamestore-fulfillment/internal/readmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProjector() (*Projector, *mocks.MockReadStore) {
	readStore := mocks.NewMockReadStore()
	projector := NewProjector(readStore)
	return projector, readStore
}

func deliver(t *testing.T, p *Projector, aggregateID, aggregateType, eventType string, data any) {
	t.Helper()
	jsonData, err := json.Marshal(data)
	require.NoError(t, err)

	event := store.Event{
		ID:            "evt-" + eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Timestamp:     time.Now(),
		Version:       1,
	}
	value, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, p.HandleEvent(context.Background(), []byte(aggregateID), value))
}

// ============================================
// Game Projection Tests
// ============================================

func TestProjector_GameRegistered(t *testing.T) {
	projector, readStore := newTestProjector()

	deliver(t, projector, "game-1", game.AggregateType, game.EventGameRegistered, game.GameRegistered{
		GameID:     "game-1",
		Title:      "Elden Throne",
		PriceCents: 5999,
		Genre:      "RPG",
		Platform:   "PC",
	})

	data, ok := readStore.Get("games", "game-1")
	require.True(t, ok)
	g := data.(*readmodel.GameReadModel)
	assert.Equal(t, "Elden Throne", g.Title)
	assert.Equal(t, int64(5999), g.PriceCents)
}

// ============================================
// Stock Projection Tests
// ============================================

func TestProjector_StockInitialized_EnrichedFromCatalog(t *testing.T) {
	projector, readStore := newTestProjector()

	deliver(t, projector, "game-1", game.AggregateType, game.EventGameRegistered, game.GameRegistered{
		GameID: "game-1", Title: "Elden Throne", PriceCents: 5999,
	})
	deliver(t, projector, "stock:game-1", inventory.AggregateType, inventory.EventStockInitialized, inventory.StockInitialized{
		GameID: "game-1", Quantity: 50,
	})

	data, ok := readStore.Get("stock", "game-1")
	require.True(t, ok)
	s := data.(*readmodel.StockReadModel)
	assert.Equal(t, "Elden Throne", s.Title)
	assert.Equal(t, int64(50), s.Quantity)
	assert.Equal(t, int64(5999), s.PriceCents)
}

func TestProjector_StockDebited(t *testing.T) {
	projector, readStore := newTestProjector()

	deliver(t, projector, "stock:game-1", inventory.AggregateType, inventory.EventStockInitialized, inventory.StockInitialized{
		GameID: "game-1", Quantity: 50,
	})
	deliver(t, projector, "stock:game-1", inventory.AggregateType, inventory.EventStockDebited, inventory.StockDebited{
		GameID: "game-1", OrderID: "order-1", Amount: 8,
	})

	data, ok := readStore.Get("stock", "game-1")
	require.True(t, ok)
	assert.Equal(t, int64(42), data.(*readmodel.StockReadModel).Quantity)
}

// ============================================
// Order Projection Tests
// ============================================

func TestProjector_OrderLifecycle(t *testing.T) {
	projector, readStore := newTestProjector()

	deliver(t, projector, "order-1", order.AggregateType, order.EventOrderCreated, order.OrderCreated{
		OrderID: "order-1", UserID: "buyer@example.com",
	})
	deliver(t, projector, "order-1", order.AggregateType, order.EventOrderLineAdded, order.OrderLineAdded{
		OrderID: "order-1", GameID: "game-1", Quantity: 2, UnitPriceCents: 1999,
	})
	deliver(t, projector, "order-1", order.AggregateType, order.EventOrderShipped, order.OrderShipped{
		OrderID: "order-1",
	})

	data, ok := readStore.Get("orders", "order-1")
	require.True(t, ok)
	o := data.(*readmodel.OrderReadModel)
	assert.Equal(t, "buyer@example.com", o.UserID)
	assert.Equal(t, string(order.StatusShipped), o.Status)
	require.Len(t, o.Lines, 1)
	assert.Equal(t, int64(2*1999), o.TotalCents)
}

func TestProjector_OrderCancelled(t *testing.T) {
	projector, readStore := newTestProjector()

	deliver(t, projector, "order-1", order.AggregateType, order.EventOrderCreated, order.OrderCreated{
		OrderID: "order-1", UserID: "buyer@example.com",
	})
	deliver(t, projector, "order-1", order.AggregateType, order.EventOrderCancelled, order.OrderCancelled{
		OrderID: "order-1", Reason: "payment not completed",
	})

	data, ok := readStore.Get("orders", "order-1")
	require.True(t, ok)
	assert.Equal(t, string(order.StatusCancelled), data.(*readmodel.OrderReadModel).Status)
}

func TestProjector_StatusUpdateForUnknownOrder(t *testing.T) {
	projector, _ := newTestProjector()

	// Out-of-order delivery must not fail the handler
	deliver(t, projector, "order-x", order.AggregateType, order.EventOrderShipped, order.OrderShipped{
		OrderID: "order-x",
	})
}

// ============================================
// Payment Projection Tests
// ============================================

func TestProjector_PaymentRecorded(t *testing.T) {
	projector, readStore := newTestProjector()

	deliver(t, projector, "order-1", order.AggregateType, order.EventOrderCreated, order.OrderCreated{
		OrderID: "order-1", UserID: "buyer@example.com",
	})
	deliver(t, projector, "pay-1", payment.AggregateType, payment.EventPaymentRecorded, payment.PaymentRecorded{
		PaymentID: "pay-1", OrderID: "order-1", Status: payment.StatusSuccess, Method: payment.MethodCreditCard, AmountCents: 3998,
	})

	data, ok := readStore.Get("orders", "order-1")
	require.True(t, ok)
	o := data.(*readmodel.OrderReadModel)
	assert.Equal(t, string(payment.StatusSuccess), o.PaymentStatus)
	assert.Equal(t, string(payment.MethodCreditCard), o.PaymentMethod)
}

// ============================================
// Sales Rollup Tests
// ============================================

func TestProjector_SalesRollupAccumulates(t *testing.T) {
	projector, readStore := newTestProjector()

	deliver(t, projector, "game-1", game.AggregateType, game.EventGameRegistered, game.GameRegistered{
		GameID: "game-1", Title: "Elden Throne", PriceCents: 1999,
	})
	deliver(t, projector, "order-1", order.AggregateType, order.EventOrderLineAdded, order.OrderLineAdded{
		OrderID: "order-1", GameID: "game-1", Quantity: 2, UnitPriceCents: 1999,
	})
	deliver(t, projector, "order-2", order.AggregateType, order.EventOrderLineAdded, order.OrderLineAdded{
		OrderID: "order-2", GameID: "game-1", Quantity: 3, UnitPriceCents: 1999,
	})

	data, ok := readStore.Get("game_sales", "game-1")
	require.True(t, ok)
	s := data.(*readmodel.GameSalesReadModel)
	assert.Equal(t, "Elden Throne", s.Title)
	assert.Equal(t, int64(5), s.TotalQuantitySold)
	assert.Equal(t, int64(5*1999), s.TotalRevenueCents)
}

func TestProjector_SalesRollupCountsAllOrders(t *testing.T) {
	projector, readStore := newTestProjector()

	// The rollup aggregates order lines regardless of where the order ends up
	deliver(t, projector, "order-1", order.AggregateType, order.EventOrderCreated, order.OrderCreated{
		OrderID: "order-1", UserID: "buyer@example.com",
	})
	deliver(t, projector, "order-1", order.AggregateType, order.EventOrderLineAdded, order.OrderLineAdded{
		OrderID: "order-1", GameID: "game-1", Quantity: 1, UnitPriceCents: 1000,
	})
	deliver(t, projector, "order-1", order.AggregateType, order.EventOrderCancelled, order.OrderCancelled{
		OrderID: "order-1", Reason: "payment not completed",
	})

	data, ok := readStore.Get("game_sales", "game-1")
	require.True(t, ok)
	assert.Equal(t, int64(1), data.(*readmodel.GameSalesReadModel).TotalQuantitySold)
}
