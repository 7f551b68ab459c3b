package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/gamestore-fulfillment/internal/domain/game"
	"github.com/example/gamestore-fulfillment/internal/domain/inventory"
	"github.com/example/gamestore-fulfillment/internal/domain/order"
	"github.com/example/gamestore-fulfillment/internal/domain/payment"
	"github.com/example/gamestore-fulfillment/internal/engine"
	"github.com/example/gamestore-fulfillment/internal/query"
	"github.com/example/gamestore-fulfillment/internal/telemetry"
)

type Handlers struct {
	engine       *engine.Handler
	queryHandler *query.Handler
}

func NewHandlers(eng *engine.Handler, queryHandler *query.Handler) *Handlers {
	return &Handlers{
		engine:       eng,
		queryHandler: queryHandler,
	}
}

// Games

func (h *Handlers) RegisterGame(w http.ResponseWriter, r *http.Request) {
	var cmd engine.RegisterGame
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	g, err := h.engine.RegisterGame(r.Context(), cmd)
	telemetry.RecordCommand("register_game", err)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}

	respondJSON(w, http.StatusCreated, g)
}

func (h *Handlers) GetGames(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.ListGames())
}

func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/games/")
	g, ok := h.queryHandler.GetGame(id)
	if !ok {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

// Inventory

func (h *Handlers) GetInventory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.ListInventory())
}

func (h *Handlers) GetInventoryStatus(w http.ResponseWriter, r *http.Request) {
	gameID := extractPathParam(r.URL.Path, "/inventory/")
	level, ok := h.queryHandler.GetInventoryStatus(gameID)
	if !ok {
		http.Error(w, "No stock level for game", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, level)
}

// Orders

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var cmd engine.CreateOrder
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.engine.CreateOrder(r.Context(), cmd)
	telemetry.RecordCommand("create_order", err)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}

	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")
	summary, ok := h.queryHandler.GetOrderSummary(id)
	if !ok {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handlers) AddOrderLine(w http.ResponseWriter, r *http.Request) {
	orderID, _ := splitOrderPath(r.URL.Path)

	var req struct {
		GameID         string `json:"game_id"`
		Quantity       int64  `json:"quantity"`
		UnitPriceCents int64  `json:"unit_price_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := engine.AddOrderLine{
		OrderID:        orderID,
		GameID:         req.GameID,
		Quantity:       req.Quantity,
		UnitPriceCents: req.UnitPriceCents,
	}
	err := h.engine.AddOrderLine(r.Context(), cmd)
	telemetry.RecordCommand("add_order_line", err)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *Handlers) RecordPayment(w http.ResponseWriter, r *http.Request) {
	orderID, _ := splitOrderPath(r.URL.Path)

	var req struct {
		Status      string `json:"status"`
		Method      string `json:"method"`
		AmountCents int64  `json:"amount_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := engine.RecordPayment{
		OrderID:     orderID,
		Status:      payment.Status(req.Status),
		Method:      payment.Method(req.Method),
		AmountCents: req.AmountCents,
	}
	p, err := h.engine.RecordPayment(r.Context(), cmd)
	telemetry.RecordCommand("record_payment", err)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}

	respondJSON(w, http.StatusCreated, p)
}

func (h *Handlers) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	orderID, _ := splitOrderPath(r.URL.Path)

	err := h.engine.MarkDelivered(r.Context(), engine.MarkDelivered{OrderID: orderID})
	telemetry.RecordCommand("mark_delivered", err)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Sales

func (h *Handlers) GetGameSales(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		http.Error(w, "title query parameter is required", http.StatusBadRequest)
		return
	}
	sales, ok := h.queryHandler.GetGameSales(title)
	if !ok {
		http.Error(w, "No sales for game", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

// errStatus maps engine errors onto HTTP status codes
func errStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, inventory.ErrNotTracked):
		return http.StatusNotFound
	case errors.Is(err, order.ErrDuplicateLine),
		errors.Is(err, order.ErrAlreadySettled),
		errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrAlreadyTracked):
		return http.StatusConflict
	case errors.Is(err, game.ErrNegativePrice),
		errors.Is(err, game.ErrMissingTitle),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrNegativePrice),
		errors.Is(err, inventory.ErrNegativeQuantity),
		errors.Is(err, payment.ErrPaymentFailed),
		errors.Is(err, payment.ErrInvalidStatus),
		errors.Is(err, payment.ErrInvalidMethod),
		errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, engine.ErrMissingUser):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func extractPathParam(path, prefix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(path, prefix), "/")
}

// splitOrderPath pulls the order id and trailing segment out of
// /orders/{id}/{action} style paths
func splitOrderPath(path string) (orderID, rest string) {
	trimmed := strings.TrimPrefix(path, "/orders/")
	parts := strings.SplitN(trimmed, "/", 2)
	orderID = parts[0]
	if len(parts) > 1 {
		rest = parts[1]
	}
	return orderID, rest
}
