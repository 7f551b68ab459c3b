package readmodel

import "time"

// GameReadModel is the read model for catalog entries
type GameReadModel struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Genre       string    `json:"genre"`
	Platform    string    `json:"platform"`
	ImagePath   string    `json:"image_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StockReadModel is the "inventory status" projection: title, quantity, price
type StockReadModel struct {
	GameID     string `json:"game_id"`
	Title      string `json:"title"`
	Quantity   int64  `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

// OrderLineReadModel represents a line in an order summary
type OrderLineReadModel struct {
	GameID         string `json:"game_id"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// OrderReadModel is the "order summary" projection
type OrderReadModel struct {
	ID            string               `json:"id"`
	UserID        string               `json:"user_id"`
	Lines         []OrderLineReadModel `json:"lines"`
	TotalCents    int64                `json:"total_cents"`
	Status        string               `json:"status"`
	PaymentStatus string               `json:"payment_status,omitempty"`
	PaymentMethod string               `json:"payment_method,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// GameSalesReadModel aggregates order lines per game
type GameSalesReadModel struct {
	GameID            string `json:"game_id"`
	Title             string `json:"title"`
	TotalQuantitySold int64  `json:"total_quantity_sold"`
	TotalRevenueCents int64  `json:"total_revenue_cents"`
}
