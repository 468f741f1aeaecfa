package domain

import (
	"encoding/json"
	"time"
)

// Flavor is a pizza flavor with per-size prices. Prices is a JSON document
// keyed by size name ("grande", "media", "individual") with decimal strings
// as values, stored as-is in a jsonb column.
type Flavor struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Prices      json.RawMessage `json:"prices"`
	Category    string          `json:"category"`
	ImageURL    *string         `json:"imageUrl"`
	Available   bool            `json:"available"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Extra is an add-on item (borders, toppings, drinks).
type Extra struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Category  string    `json:"category"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DoughType is a selectable dough, optionally with a surcharge.
type DoughType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
