package store

import (
	"sync"
)

// ReadStore keeps the projected read models (games, stock, orders,
// game_sales) in memory. It backs single-instance and dev setups where the
// models are rebuilt from the event store on startup; durable deployments
// use PostgresReadStore instead.
type ReadStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]any
}

func NewReadStore() *ReadStore {
	return &ReadStore{
		collections: make(map[string]map[string]any),
	}
}

// Set upserts a read model
func (rs *ReadStore) Set(collection, id string, data any) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	models, ok := rs.collections[collection]
	if !ok {
		models = make(map[string]any)
		rs.collections[collection] = models
	}
	models[id] = data
}

// Get retrieves a read model by id
func (rs *ReadStore) Get(collection, id string) (any, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	data, ok := rs.collections[collection][id]
	return data, ok
}

// GetAll retrieves every model in a collection, in no particular order
func (rs *ReadStore) GetAll(collection string) []any {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	models := rs.collections[collection]
	items := make([]any, 0, len(models))
	for _, item := range models {
		items = append(items, item)
	}
	return items
}

// Delete removes a read model
func (rs *ReadStore) Delete(collection, id string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	delete(rs.collections[collection], id)
}

// Update applies updateFn to an existing model; it reports false when the
// model is absent so the caller can fall back to Set.
func (rs *ReadStore) Update(collection, id string, updateFn func(current any) any) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	current, ok := rs.collections[collection][id]
	if !ok {
		return false
	}
	rs.collections[collection][id] = updateFn(current)
	return true
}
