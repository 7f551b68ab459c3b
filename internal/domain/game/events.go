package game

import "time"

const EventGameRegistered = "GameRegistered"

type GameRegistered struct {
	GameID       string    `json:"game_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PriceCents   int64     `json:"price_cents"`
	Genre        string    `json:"genre"`
	Platform     string    `json:"platform"`
	ImagePath    string    `json:"image_path,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}
