package engine

import "github.com/example/gamestore-fulfillment/internal/domain/payment"

// RegisterGame adds a game to the catalog and opens its stock level
type RegisterGame struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"price_cents"`
	Genre        string `json:"genre"`
	Platform     string `json:"platform"`
	ImagePath    string `json:"image_path"`
	InitialStock int64  `json:"initial_stock"`
}

// CreateOrder opens a pending order for a user
type CreateOrder struct {
	UserID string `json:"user_id"`
}

// AddOrderLine records a line on an order and debits the game's stock
type AddOrderLine struct {
	OrderID        string `json:"order_id"`
	GameID         string `json:"game_id"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// RecordPayment records a payment attempt and settles the order
type RecordPayment struct {
	OrderID     string         `json:"order_id"`
	Status      payment.Status `json:"status"`
	Method      payment.Method `json:"method"`
	AmountCents int64          `json:"amount_cents"`
}

// MarkDelivered completes a shipped order
type MarkDelivered struct {
	OrderID string `json:"order_id"`
}
