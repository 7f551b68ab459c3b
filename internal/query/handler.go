package query

import (
	"github.com/example/gamestore-fulfillment/internal/infrastructure/store"
	"github.com/example/gamestore-fulfillment/internal/readmodel"
)

// Handler serves the read-side contracts over the projected models
type Handler struct {
	readStore store.ReadStoreInterface
}

func NewHandler(readStore store.ReadStoreInterface) *Handler {
	return &Handler{readStore: readStore}
}

// Games

func (h *Handler) GetGame(id string) (*readmodel.GameReadModel, bool) {
	data, ok := h.readStore.Get("games", id)
	if !ok {
		return nil, false
	}
	return data.(*readmodel.GameReadModel), true
}

func (h *Handler) ListGames() []*readmodel.GameReadModel {
	items := h.readStore.GetAll("games")
	games := make([]*readmodel.GameReadModel, 0, len(items))
	for _, item := range items {
		games = append(games, item.(*readmodel.GameReadModel))
	}
	return games
}

// Inventory status: game title, stock quantity, price

func (h *Handler) GetInventoryStatus(gameID string) (*readmodel.StockReadModel, bool) {
	data, ok := h.readStore.Get("stock", gameID)
	if !ok {
		return nil, false
	}
	return data.(*readmodel.StockReadModel), true
}

func (h *Handler) ListInventory() []*readmodel.StockReadModel {
	items := h.readStore.GetAll("stock")
	levels := make([]*readmodel.StockReadModel, 0, len(items))
	for _, item := range items {
		levels = append(levels, item.(*readmodel.StockReadModel))
	}
	return levels
}

// Order summary: buyer, date, total, order status, payment status and method

func (h *Handler) GetOrderSummary(orderID string) (*readmodel.OrderReadModel, bool) {
	data, ok := h.readStore.Get("orders", orderID)
	if !ok {
		return nil, false
	}
	return data.(*readmodel.OrderReadModel), true
}

func (h *Handler) ListOrdersByUser(userID string) []*readmodel.OrderReadModel {
	items := h.readStore.GetAll("orders")
	orders := make([]*readmodel.OrderReadModel, 0)
	for _, item := range items {
		o := item.(*readmodel.OrderReadModel)
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders
}

// Sales report, looked up by game title

func (h *Handler) GetGameSales(title string) (*readmodel.GameSalesReadModel, bool) {
	for _, item := range h.readStore.GetAll("game_sales") {
		s := item.(*readmodel.GameSalesReadModel)
		if s.Title == title {
			return s, true
		}
	}
	return nil, false
}
