package game

import (
	"context"
	"testing"

	"github.com/example/gamestore-fulfillment/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGameService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore)
	return service, eventStore
}

// ============================================
// Register Tests
// ============================================

func TestService_Register_Success(t *testing.T) {
	service, eventStore := newTestGameService()
	ctx := context.Background()

	g, err := service.Register(ctx, "Elden Throne", "Open world RPG", 5999, "RPG", "PC", "/img/elden.png")

	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, "Elden Throne", g.Title)
	assert.Equal(t, int64(5999), g.PriceCents)
	assert.Equal(t, "RPG", g.Genre)
	assert.Equal(t, "PC", g.Platform)

	assert.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventGameRegistered, eventStore.AppendCalls[0].EventType)
	assert.Equal(t, AggregateType, eventStore.AppendCalls[0].AggregateType)

	data := eventStore.AppendCalls[0].Data.(GameRegistered)
	assert.Equal(t, g.ID, data.GameID)
	assert.Equal(t, "Elden Throne", data.Title)
	assert.Equal(t, int64(5999), data.PriceCents)
}

func TestService_Register_FreeGame(t *testing.T) {
	service, eventStore := newTestGameService()
	ctx := context.Background()

	// A price of zero is valid; only negative prices are rejected
	g, err := service.Register(ctx, "Free Demo", "", 0, "Demo", "PC", "")

	require.NoError(t, err)
	assert.Equal(t, int64(0), g.PriceCents)
	assert.Len(t, eventStore.AppendCalls, 1)
}

func TestService_Register_MissingTitle(t *testing.T) {
	service, eventStore := newTestGameService()
	ctx := context.Background()

	g, err := service.Register(ctx, "", "No title", 1000, "RPG", "PC", "")

	assert.ErrorIs(t, err, ErrMissingTitle)
	assert.Nil(t, g)
	assert.Empty(t, eventStore.AppendCalls)
}

func TestService_Register_NegativePrice(t *testing.T) {
	service, eventStore := newTestGameService()
	ctx := context.Background()

	g, err := service.Register(ctx, "Bad Price", "", -1, "RPG", "PC", "")

	assert.ErrorIs(t, err, ErrNegativePrice)
	assert.Nil(t, g)
	assert.Empty(t, eventStore.AppendCalls)
}

// ============================================
// Get Tests
// ============================================

func TestService_Get_Success(t *testing.T) {
	service, eventStore := newTestGameService()
	ctx := context.Background()

	gameID := "game-123"
	eventStore.AddEvent(gameID, AggregateType, EventGameRegistered, GameRegistered{
		GameID:     gameID,
		Title:      "Star Drift",
		PriceCents: 2999,
		Genre:      "Racing",
		Platform:   "Switch",
	})

	g, err := service.Get(ctx, gameID)

	require.NoError(t, err)
	assert.Equal(t, gameID, g.ID)
	assert.Equal(t, "Star Drift", g.Title)
	assert.Equal(t, int64(2999), g.PriceCents)
}

func TestService_Get_NotFound(t *testing.T) {
	service, _ := newTestGameService()
	ctx := context.Background()

	g, err := service.Get(ctx, "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, g)
}

func TestService_Exists(t *testing.T) {
	service, eventStore := newTestGameService()
	ctx := context.Background()

	assert.False(t, service.Exists(ctx, "game-123"))

	eventStore.AddEvent("game-123", AggregateType, EventGameRegistered, GameRegistered{GameID: "game-123", Title: "X"})

	assert.True(t, service.Exists(ctx, "game-123"))
}
