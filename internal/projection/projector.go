package projection

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/gamestore-fulfillment/internal/domain/game"
	"github.com/example/gamestore-fulfillment/internal/domain/inventory"
	"github.com/example/gamestore-fulfillment/internal/domain/order"
	"github.com/example/gamestore-fulfillment/internal/domain/payment"
	"github.com/example/gamestore-fulfillment/internal/infrastructure/store"
	"github.com/example/gamestore-fulfillment/internal/readmodel"
	"github.com/example/gamestore-fulfillment/internal/telemetry"
)

// Projector derives the read models (games, stock, order summaries and the
// per-game sales rollup) from the event stream.
type Projector struct {
	readStore store.ReadStoreInterface
}

func NewProjector(readStore store.ReadStoreInterface) *Projector {
	return &Projector{readStore: readStore}
}

func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}

	var handleErr error
	switch event.AggregateType {
	case game.AggregateType:
		handleErr = p.handleGameEvent(event)
	case inventory.AggregateType:
		handleErr = p.handleStockEvent(event)
	case order.AggregateType:
		handleErr = p.handleOrderEvent(event)
	case payment.AggregateType:
		handleErr = p.handlePaymentEvent(event)
	default:
		return nil
	}
	if handleErr != nil {
		return handleErr
	}

	telemetry.RecordProjection()
	return nil
}

func (p *Projector) handleGameEvent(event store.Event) error {
	if event.EventType != game.EventGameRegistered {
		return nil
	}

	var e game.GameRegistered
	if err := json.Unmarshal(event.Data, &e); err != nil {
		return err
	}
	p.readStore.Set("games", e.GameID, &readmodel.GameReadModel{
		ID:          e.GameID,
		Title:       e.Title,
		Description: e.Description,
		PriceCents:  e.PriceCents,
		Genre:       e.Genre,
		Platform:    e.Platform,
		ImagePath:   e.ImagePath,
		CreatedAt:   e.RegisteredAt,
	})
	return nil
}

func (p *Projector) handleStockEvent(event store.Event) error {
	switch event.EventType {
	case inventory.EventStockInitialized:
		var e inventory.StockInitialized
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}

		title, price := "", int64(0)
		if g, ok := p.readStore.Get("games", e.GameID); ok {
			gm := g.(*readmodel.GameReadModel)
			title, price = gm.Title, gm.PriceCents
		}
		p.readStore.Set("stock", e.GameID, &readmodel.StockReadModel{
			GameID:     e.GameID,
			Title:      title,
			Quantity:   e.Quantity,
			PriceCents: price,
		})

	case inventory.EventStockDebited:
		var e inventory.StockDebited
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("stock", e.GameID, func(current any) any {
			s := current.(*readmodel.StockReadModel)
			s.Quantity -= e.Amount
			return s
		})
	}

	return nil
}

func (p *Projector) handleOrderEvent(event store.Event) error {
	switch event.EventType {
	case order.EventOrderCreated:
		var e order.OrderCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Set("orders", e.OrderID, &readmodel.OrderReadModel{
			ID:        e.OrderID,
			UserID:    e.UserID,
			Lines:     []readmodel.OrderLineReadModel{},
			Status:    string(order.StatusPending),
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.CreatedAt,
		})

	case order.EventOrderLineAdded:
		var e order.OrderLineAdded
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("orders", e.OrderID, func(current any) any {
			o := current.(*readmodel.OrderReadModel)
			o.Lines = append(o.Lines, readmodel.OrderLineReadModel{
				GameID:         e.GameID,
				Quantity:       e.Quantity,
				UnitPriceCents: e.UnitPriceCents,
			})
			o.TotalCents += e.Quantity * e.UnitPriceCents
			o.UpdatedAt = e.AddedAt
			return o
		})
		p.projectSale(e)

	case order.EventOrderShipped:
		var e order.OrderShipped
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.setOrderStatus(e.OrderID, order.StatusShipped)

	case order.EventOrderCancelled:
		var e order.OrderCancelled
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.setOrderStatus(e.OrderID, order.StatusCancelled)

	case order.EventOrderDelivered:
		var e order.OrderDelivered
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.setOrderStatus(e.OrderID, order.StatusDelivered)
	}

	return nil
}

func (p *Projector) setOrderStatus(orderID string, status order.Status) {
	ok := p.readStore.Update("orders", orderID, func(current any) any {
		o := current.(*readmodel.OrderReadModel)
		o.Status = string(status)
		return o
	})
	if !ok {
		log.Printf("[Projector] Status update for unknown order %s", orderID)
	}
}

// projectSale folds an order line into the per-game sales rollup. The sales
// contract aggregates over all order lines of a game, whatever the order's
// eventual status.
func (p *Projector) projectSale(e order.OrderLineAdded) {
	revenue := e.Quantity * e.UnitPriceCents

	updated := p.readStore.Update("game_sales", e.GameID, func(current any) any {
		s := current.(*readmodel.GameSalesReadModel)
		s.TotalQuantitySold += e.Quantity
		s.TotalRevenueCents += revenue
		return s
	})
	if updated {
		return
	}

	title := ""
	if g, ok := p.readStore.Get("games", e.GameID); ok {
		title = g.(*readmodel.GameReadModel).Title
	}
	p.readStore.Set("game_sales", e.GameID, &readmodel.GameSalesReadModel{
		GameID:            e.GameID,
		Title:             title,
		TotalQuantitySold: e.Quantity,
		TotalRevenueCents: revenue,
	})
}

func (p *Projector) handlePaymentEvent(event store.Event) error {
	if event.EventType != payment.EventPaymentRecorded {
		return nil
	}

	var e payment.PaymentRecorded
	if err := json.Unmarshal(event.Data, &e); err != nil {
		return err
	}
	ok := p.readStore.Update("orders", e.OrderID, func(current any) any {
		o := current.(*readmodel.OrderReadModel)
		o.PaymentStatus = string(e.Status)
		o.PaymentMethod = string(e.Method)
		o.UpdatedAt = e.RecordedAt
		return o
	})
	if !ok {
		log.Printf("[Projector] Payment for unknown order %s", e.OrderID)
	}
	return nil
}
