package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/gamestore-fulfillment/internal/domain/aggregate"
	"github.com/example/gamestore-fulfillment/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Order"

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrNegativePrice   = errors.New("unit price must not be negative")
	ErrDuplicateLine   = errors.New("game already on order")
	ErrAlreadySettled  = errors.New("order already settled by a payment")
	ErrOrderCancelled  = errors.New("order is cancelled")
	ErrOrderDelivered  = errors.New("order is already delivered")
	ErrOrderNotShipped = errors.New("order must be shipped before delivery")
	ErrInvalidStatus   = errors.New("invalid order status transition")
)

// validTransitions defines allowed state transitions. Payments settle a
// pending order into shipped or cancelled; delivery follows shipment.
// Delivered and cancelled are terminal.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

type Line struct {
	GameID         string `json:"game_id"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type Order struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Lines      []Line    `json:"lines"`
	TotalCents int64     `json:"total_cents"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Version    int       `json:"version"`
}

func (o *Order) GetID() string   { return o.ID }
func (o *Order) GetVersion() int { return o.Version }

// CanTransitionTo checks if the order can transition to the target status
func (o *Order) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[o.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// HasLine reports whether the order already carries a line for the game.
// (order, game) is unique: a game appears at most once per order.
func (o *Order) HasLine(gameID string) bool {
	for _, line := range o.Lines {
		if line.GameID == gameID {
			return true
		}
	}
	return false
}

// transitionError returns an appropriate error for an invalid transition
func (o *Order) transitionError(target Status) error {
	switch {
	case o.Status == StatusCancelled:
		return ErrOrderCancelled
	case o.Status == StatusDelivered:
		return ErrOrderDelivered
	case o.Status == StatusShipped && (target == StatusShipped || target == StatusCancelled):
		return ErrAlreadySettled
	case o.Status == StatusPending && target == StatusDelivered:
		return ErrOrderNotShipped
	default:
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStatus, o.Status, target)
	}
}

// ApplyEvent applies a single event to the order state (implements aggregate.Aggregate)
func (o *Order) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventOrderCreated:
		var data OrderCreated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.ID = data.OrderID
		o.UserID = data.UserID
		o.Status = StatusPending
		o.CreatedAt = data.CreatedAt
		o.UpdatedAt = data.CreatedAt
	case EventOrderLineAdded:
		var data OrderLineAdded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Lines = append(o.Lines, Line{
			GameID:         data.GameID,
			Quantity:       data.Quantity,
			UnitPriceCents: data.UnitPriceCents,
		})
		o.TotalCents += data.Quantity * data.UnitPriceCents
		o.UpdatedAt = data.AddedAt
	case EventOrderShipped:
		var data OrderShipped
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusShipped
		o.UpdatedAt = data.ShippedAt
	case EventOrderCancelled:
		var data OrderCancelled
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusCancelled
		o.UpdatedAt = data.CancelledAt
	case EventOrderDelivered:
		var data OrderDelivered
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusDelivered
		o.UpdatedAt = data.DeliveredAt
	}
	o.Version = event.Version
	return nil
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// Get loads an order by replaying its events
func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	order, found, err := aggregate.Load(ctx, s.eventStore, orderID, func() *Order {
		return &Order{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return order, nil
}

// Create opens a new pending order for a user
func (s *Service) Create(ctx context.Context, userID string) (*Order, error) {
	orderID := uuid.New().String()
	now := time.Now()

	event := OrderCreated{
		OrderID:   orderID,
		UserID:    userID,
		CreatedAt: now,
	}

	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, EventOrderCreated, event)
	if err != nil {
		return nil, err
	}

	version := 0
	if storedEvent != nil {
		version = storedEvent.Version
	}

	return &Order{
		ID:        orderID,
		UserID:    userID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   version,
	}, nil
}

// AddLine appends a line to a pending order. Lines are immutable once
// recorded, and a game appears at most once per order.
func (s *Service) AddLine(ctx context.Context, orderID, gameID string, quantity, unitPriceCents int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if unitPriceCents < 0 {
		return ErrNegativePrice
	}

	order, err := s.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != StatusPending {
		return ErrAlreadySettled
	}
	if order.HasLine(gameID) {
		return ErrDuplicateLine
	}

	event := OrderLineAdded{
		OrderID:        orderID,
		GameID:         gameID,
		Quantity:       quantity,
		UnitPriceCents: unitPriceCents,
		AddedAt:        time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, EventOrderLineAdded, event)
	if err != nil {
		return err
	}

	order.Lines = append(order.Lines, Line{GameID: gameID, Quantity: quantity, UnitPriceCents: unitPriceCents})
	order.TotalCents += quantity * unitPriceCents
	if storedEvent != nil {
		order.Version = storedEvent.Version
	}

	if err := aggregate.MaybeSnapshot(ctx, s.eventStore, order, AggregateType); err != nil {
		log.Printf("[Order] Failed to snapshot order %s: %v", order.ID, err)
	}

	return nil
}

// Ship transitions a pending order to shipped
func (s *Service) Ship(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, StatusShipped, EventOrderShipped, func(now time.Time) any {
		return OrderShipped{OrderID: orderID, ShippedAt: now}
	})
}

// Cancel transitions a pending order to cancelled
func (s *Service) Cancel(ctx context.Context, orderID, reason string) error {
	return s.transition(ctx, orderID, StatusCancelled, EventOrderCancelled, func(now time.Time) any {
		return OrderCancelled{OrderID: orderID, Reason: reason, CancelledAt: now}
	})
}

// Deliver transitions a shipped order to delivered
func (s *Service) Deliver(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, StatusDelivered, EventOrderDelivered, func(now time.Time) any {
		return OrderDelivered{OrderID: orderID, DeliveredAt: now}
	})
}

func (s *Service) transition(ctx context.Context, orderID string, target Status, eventType string, makeEvent func(now time.Time) any) error {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.CanTransitionTo(target) {
		return order.transitionError(target)
	}

	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, eventType, makeEvent(time.Now()))
	if err != nil {
		return err
	}

	order.Status = target
	if storedEvent != nil {
		order.Version = storedEvent.Version
	}

	if err := aggregate.MaybeSnapshot(ctx, s.eventStore, order, AggregateType); err != nil {
		log.Printf("[Order] Failed to snapshot order %s: %v", order.ID, err)
	}

	return nil
}
