package store

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/example/gamestore-fulfillment/internal/readmodel"
)

// Read model collections and their backing tables. Each table holds the
// serialized model as JSONB keyed by the model id.
var readTables = map[string]string{
	"games":      "read_games",
	"stock":      "read_stock",
	"orders":     "read_orders",
	"game_sales": "read_game_sales",
}

// PostgresReadStore implements ReadStoreInterface on PostgreSQL
type PostgresReadStore struct {
	db *sql.DB
}

func NewPostgresReadStore(db *sql.DB) *PostgresReadStore {
	return &PostgresReadStore{db: db}
}

// Set upserts a read model
func (rs *PostgresReadStore) Set(collection, id string, data any) {
	table, ok := readTables[collection]
	if !ok {
		log.Printf("[ReadStore] Unknown collection %q", collection)
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("[ReadStore] Failed to marshal %s/%s: %v", collection, id, err)
		return
	}

	_, err = rs.db.Exec(
		`INSERT INTO `+table+` (id, data, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		id, payload, time.Now(),
	)
	if err != nil {
		log.Printf("[ReadStore] Failed to upsert %s/%s: %v", collection, id, err)
	}
}

// Get retrieves a read model by id
func (rs *PostgresReadStore) Get(collection, id string) (any, bool) {
	table, ok := readTables[collection]
	if !ok {
		return nil, false
	}

	var payload []byte
	err := rs.db.QueryRow(`SELECT data FROM `+table+` WHERE id = $1`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		log.Printf("[ReadStore] Failed to get %s/%s: %v", collection, id, err)
		return nil, false
	}

	model, err := decodeReadModel(collection, payload)
	if err != nil {
		log.Printf("[ReadStore] Failed to decode %s/%s: %v", collection, id, err)
		return nil, false
	}
	return model, true
}

// GetAll retrieves all items in a collection
func (rs *PostgresReadStore) GetAll(collection string) []any {
	table, ok := readTables[collection]
	if !ok {
		return nil
	}

	rows, err := rs.db.Query(`SELECT data FROM ` + table)
	if err != nil {
		log.Printf("[ReadStore] Failed to list %s: %v", collection, err)
		return nil
	}
	defer rows.Close()

	var items []any
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			log.Printf("[ReadStore] Failed to scan %s row: %v", collection, err)
			continue
		}
		model, err := decodeReadModel(collection, payload)
		if err != nil {
			log.Printf("[ReadStore] Failed to decode %s row: %v", collection, err)
			continue
		}
		items = append(items, model)
	}
	return items
}

// Delete removes a read model
func (rs *PostgresReadStore) Delete(collection, id string) {
	table, ok := readTables[collection]
	if !ok {
		return
	}
	if _, err := rs.db.Exec(`DELETE FROM `+table+` WHERE id = $1`, id); err != nil {
		log.Printf("[ReadStore] Failed to delete %s/%s: %v", collection, id, err)
	}
}

// Update modifies a read model using an update function
func (rs *PostgresReadStore) Update(collection, id string, updateFn func(current any) any) bool {
	current, ok := rs.Get(collection, id)
	if !ok {
		return false
	}
	rs.Set(collection, id, updateFn(current))
	return true
}

// decodeReadModel unmarshals a JSONB payload into the model type of the collection
func decodeReadModel(collection string, payload []byte) (any, error) {
	switch collection {
	case "games":
		m := &readmodel.GameReadModel{}
		return m, json.Unmarshal(payload, m)
	case "stock":
		m := &readmodel.StockReadModel{}
		return m, json.Unmarshal(payload, m)
	case "orders":
		m := &readmodel.OrderReadModel{}
		return m, json.Unmarshal(payload, m)
	case "game_sales":
		m := &readmodel.GameSalesReadModel{}
		return m, json.Unmarshal(payload, m)
	}
	m := map[string]any{}
	return m, json.Unmarshal(payload, &m)
}
