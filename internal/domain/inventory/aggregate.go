package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/example/gamestore-fulfillment/internal/domain/aggregate"
	"github.com/example/gamestore-fulfillment/internal/infrastructure/store"
)

const AggregateType = "Stock"

var (
	ErrNotTracked        = errors.New("no stock level for game")
	ErrAlreadyTracked    = errors.New("stock level already initialized")
	ErrNegativeQuantity  = errors.New("quantity must not be negative")
	ErrInvalidDebit      = errors.New("debit amount must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockLevel is the per-game inventory ledger entry. It is mutated only
// through debits issued by the fulfillment engine. Whether the quantity may
// go below zero is the engine's policy, not the ledger's: the ledger records
// every debit it is handed.
type StockLevel struct {
	GameID   string `json:"game_id"`
	Quantity int64  `json:"quantity"`
	Version  int    `json:"version"`
}

// GetID returns the aggregate id, which is namespaced so stock aggregates do
// not collide with the game aggregate sharing the same game id.
func (sl *StockLevel) GetID() string   { return stockAggregateID(sl.GameID) }
func (sl *StockLevel) GetVersion() int { return sl.Version }

// ApplyEvent applies a single event to the stock level (implements aggregate.Aggregate)
func (sl *StockLevel) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventStockInitialized:
		var data StockInitialized
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		sl.GameID = data.GameID
		sl.Quantity = data.Quantity
	case EventStockDebited:
		var data StockDebited
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		sl.Quantity -= data.Amount
	}
	sl.Version = event.Version
	return nil
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func stockAggregateID(gameID string) string {
	return "stock:" + gameID
}

// Level replays the stock level for a game
func (s *Service) Level(ctx context.Context, gameID string) (*StockLevel, error) {
	level, found, err := aggregate.Load(ctx, s.eventStore, stockAggregateID(gameID), func() *StockLevel {
		return &StockLevel{GameID: gameID}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotTracked
	}
	return level, nil
}

// Initialize records the opening quantity for a game. Each game has exactly
// one stock level; re-initialization fails.
func (s *Service) Initialize(ctx context.Context, gameID string, quantity int64) error {
	if quantity < 0 {
		return ErrNegativeQuantity
	}
	if len(s.eventStore.GetEvents(stockAggregateID(gameID))) > 0 {
		return ErrAlreadyTracked
	}

	event := StockInitialized{
		GameID:        gameID,
		Quantity:      quantity,
		InitializedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, stockAggregateID(gameID), AggregateType, EventStockInitialized, event)
	return err
}

// Debit decrements the stock level for a game. The caller decides the floor
// policy before issuing the debit; here the amount just has to be positive
// and the game tracked.
func (s *Service) Debit(ctx context.Context, gameID, orderID string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidDebit
	}

	level, err := s.Level(ctx, gameID)
	if err != nil {
		return err
	}

	event := StockDebited{
		GameID:    gameID,
		OrderID:   orderID,
		Amount:    amount,
		DebitedAt: time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, stockAggregateID(gameID), AggregateType, EventStockDebited, event)
	if err != nil {
		return err
	}

	level.Quantity -= amount
	if storedEvent != nil {
		level.Version = storedEvent.Version
	}

	if err := aggregate.MaybeSnapshot(ctx, s.eventStore, level, AggregateType); err != nil {
		log.Printf("[Inventory] Failed to snapshot stock for game %s: %v", gameID, err)
	}

	return nil
}
