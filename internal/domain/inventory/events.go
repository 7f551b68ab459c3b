package inventory

import "time"

const (
	EventStockInitialized = "StockInitialized"
	EventStockDebited     = "StockDebited"
)

type StockInitialized struct {
	GameID        string    `json:"game_id"`
	Quantity      int64     `json:"quantity"`
	InitializedAt time.Time `json:"initialized_at"`
}

type StockDebited struct {
	GameID    string    `json:"game_id"`
	OrderID   string    `json:"order_id"`
	Amount    int64     `json:"amount"`
	DebitedAt time.Time `json:"debited_at"`
}
