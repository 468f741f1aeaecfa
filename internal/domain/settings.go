package domain

import (
	"encoding/json"
	"time"
)

// Setting is one section of the pizzeria configuration (contact, delivery,
// business_hours, social, ...). Data is an opaque JSON document owned by the
// frontend.
type Setting struct {
	Section   string          `json:"section"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
