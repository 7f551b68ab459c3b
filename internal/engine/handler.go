package engine

import (
	"context"
	"errors"

	"github.com/example/gamestore-fulfillment/internal/domain/game"
	"github.com/example/gamestore-fulfillment/internal/domain/inventory"
	"github.com/example/gamestore-fulfillment/internal/domain/order"
	"github.com/example/gamestore-fulfillment/internal/domain/payment"
)

var ErrMissingUser = errors.New("user id is required")

// StockPolicy decides what happens when a debit exceeds the available stock
type StockPolicy int

const (
	// AllowNegative lets the stock level go below zero. This is the
	// reference behavior: the originating schema carries no non-negativity
	// constraint on stock.
	AllowNegative StockPolicy = iota

	// RejectInsufficient fails AddOrderLine with ErrInsufficientStock
	// before anything is recorded.
	RejectInsufficient
)

type Config struct {
	StockPolicy StockPolicy
}

// Handler is the consistency engine. It orchestrates the catalog, the stock
// ledger, orders and payments so that each command is a single atomic unit:
// all validation runs before the first event is appended, and every append
// that follows happens under the same per-aggregate locks.
type Handler struct {
	games    *game.Service
	stock    *inventory.Service
	orders   *order.Service
	payments *payment.Service
	cfg      Config

	orderLocks *keyLocks
	gameLocks  *keyLocks
}

func NewHandler(
	games *game.Service,
	stock *inventory.Service,
	orders *order.Service,
	payments *payment.Service,
	cfg Config,
) *Handler {
	return &Handler{
		games:      games,
		stock:      stock,
		orders:     orders,
		payments:   payments,
		cfg:        cfg,
		orderLocks: newKeyLocks(),
		gameLocks:  newKeyLocks(),
	}
}

// RegisterGame adds a game to the catalog and opens its 1:1 stock level
func (h *Handler) RegisterGame(ctx context.Context, cmd RegisterGame) (*game.Game, error) {
	// Reject a bad opening quantity before the game event is appended so a
	// failed command leaves neither aggregate behind.
	if cmd.InitialStock < 0 {
		return nil, inventory.ErrNegativeQuantity
	}

	g, err := h.games.Register(ctx, cmd.Title, cmd.Description, cmd.PriceCents, cmd.Genre, cmd.Platform, cmd.ImagePath)
	if err != nil {
		return nil, err
	}

	if err := h.stock.Initialize(ctx, g.ID, cmd.InitialStock); err != nil {
		return nil, err
	}

	return g, nil
}

// CreateOrder opens a pending order
func (h *Handler) CreateOrder(ctx context.Context, cmd CreateOrder) (*order.Order, error) {
	if cmd.UserID == "" {
		return nil, ErrMissingUser
	}
	return h.orders.Create(ctx, cmd.UserID)
}

// AddOrderLine records a line and debits stock as one atomic unit. Lock
// order: order first, then game, on every path.
func (h *Handler) AddOrderLine(ctx context.Context, cmd AddOrderLine) error {
	orderLock := h.orderLocks.get(cmd.OrderID)
	orderLock.Lock()
	defer orderLock.Unlock()

	gameLock := h.gameLocks.get(cmd.GameID)
	gameLock.Lock()
	defer gameLock.Unlock()

	if cmd.Quantity <= 0 {
		return order.ErrInvalidQuantity
	}
	if cmd.UnitPriceCents < 0 {
		return order.ErrNegativePrice
	}

	o, err := h.orders.Get(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	if o.Status != order.StatusPending {
		return order.ErrAlreadySettled
	}
	if o.HasLine(cmd.GameID) {
		return order.ErrDuplicateLine
	}

	if !h.games.Exists(ctx, cmd.GameID) {
		return game.ErrNotFound
	}

	level, err := h.stock.Level(ctx, cmd.GameID)
	if err != nil {
		return err
	}
	if h.cfg.StockPolicy == RejectInsufficient && level.Quantity < cmd.Quantity {
		return inventory.ErrInsufficientStock
	}

	// Past this point nothing may fail validation: the line is recorded and
	// the debit follows inside the same locked unit, so no observer sees a
	// committed line with stale stock.
	if err := h.orders.AddLine(ctx, cmd.OrderID, cmd.GameID, cmd.Quantity, cmd.UnitPriceCents); err != nil {
		return err
	}
	return h.stock.Debit(ctx, cmd.GameID, cmd.OrderID, cmd.Quantity)
}

// RecordPayment records a payment attempt and settles the order in the same
// unit: success ships it, pending cancels it, failed is rejected outright.
// A payment is accepted only while the order is still pending; repeated
// payments cannot regress a settled order.
func (h *Handler) RecordPayment(ctx context.Context, cmd RecordPayment) (*payment.Payment, error) {
	orderLock := h.orderLocks.get(cmd.OrderID)
	orderLock.Lock()
	defer orderLock.Unlock()

	o, err := h.orders.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusPending {
		return nil, order.ErrAlreadySettled
	}

	p, err := h.payments.Record(ctx, cmd.OrderID, cmd.Status, cmd.Method, cmd.AmountCents)
	if err != nil {
		return nil, err
	}

	// Settlement is a consequence of the recorded payment, not a separate
	// call the caller could skip. Anything but success cancels the order.
	if p.Status == payment.StatusSuccess {
		err = h.orders.Ship(ctx, cmd.OrderID)
	} else {
		err = h.orders.Cancel(ctx, cmd.OrderID, "payment not completed")
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

// MarkDelivered completes a shipped order. Delivery is driven by an outside
// collaborator (the carrier integration), not by payments.
func (h *Handler) MarkDelivered(ctx context.Context, cmd MarkDelivered) error {
	orderLock := h.orderLocks.get(cmd.OrderID)
	orderLock.Lock()
	defer orderLock.Unlock()

	return h.orders.Deliver(ctx, cmd.OrderID)
}
