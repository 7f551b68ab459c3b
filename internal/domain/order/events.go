package order

import "time"

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderLineAdded = "OrderLineAdded"
	EventOrderShipped   = "OrderShipped"
	EventOrderCancelled = "OrderCancelled"
	EventOrderDelivered = "OrderDelivered"
)

type OrderCreated struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderLineAdded struct {
	OrderID        string    `json:"order_id"`
	GameID         string    `json:"game_id"`
	Quantity       int64     `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	AddedAt        time.Time `json:"added_at"`
}

type OrderShipped struct {
	OrderID   string    `json:"order_id"`
	ShippedAt time.Time `json:"shipped_at"`
}

type OrderCancelled struct {
	OrderID     string    `json:"order_id"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelled_at"`
}

type OrderDelivered struct {
	OrderID     string    `json:"order_id"`
	DeliveredAt time.Time `json:"delivered_at"`
}
