package game

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/gamestore-fulfillment/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Game"

var (
	ErrNotFound      = errors.New("game not found")
	ErrMissingTitle  = errors.New("title is required")
	ErrNegativePrice = errors.New("price must not be negative")
)

// Game is a catalog entry. The catalog is append-only: a registered game is
// never updated or removed.
type Game struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Genre       string    `json:"genre"`
	Platform    string    `json:"platform"`
	ImagePath   string    `json:"image_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// Register validates and records a new game. Validation runs before the
// event is appended, so a rejected game leaves no trace.
func (s *Service) Register(ctx context.Context, title, description string, priceCents int64, genre, platform, imagePath string) (*Game, error) {
	if title == "" {
		return nil, ErrMissingTitle
	}
	if priceCents < 0 {
		return nil, ErrNegativePrice
	}

	gameID := uuid.New().String()
	now := time.Now()

	event := GameRegistered{
		GameID:       gameID,
		Title:        title,
		Description:  description,
		PriceCents:   priceCents,
		Genre:        genre,
		Platform:     platform,
		ImagePath:    imagePath,
		RegisteredAt: now,
	}

	if _, err := s.eventStore.Append(ctx, gameID, AggregateType, EventGameRegistered, event); err != nil {
		return nil, err
	}

	return &Game{
		ID:          gameID,
		Title:       title,
		Description: description,
		PriceCents:  priceCents,
		Genre:       genre,
		Platform:    platform,
		ImagePath:   imagePath,
		CreatedAt:   now,
	}, nil
}

// Get rebuilds a game from its registration event
func (s *Service) Get(ctx context.Context, gameID string) (*Game, error) {
	events := s.eventStore.GetEvents(gameID)
	if len(events) == 0 {
		return nil, ErrNotFound
	}

	for _, event := range events {
		if event.EventType != EventGameRegistered {
			continue
		}
		var data GameRegistered
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return nil, err
		}
		return &Game{
			ID:          data.GameID,
			Title:       data.Title,
			Description: data.Description,
			PriceCents:  data.PriceCents,
			Genre:       data.Genre,
			Platform:    data.Platform,
			ImagePath:   data.ImagePath,
			CreatedAt:   data.RegisteredAt,
		}, nil
	}
	return nil, ErrNotFound
}

// Exists reports whether a game has been registered
func (s *Service) Exists(ctx context.Context, gameID string) bool {
	return len(s.eventStore.GetEvents(gameID)) > 0
}
