package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Event is a discovered upstream event, persisted so repeat discovery
// runs can merge new candidates into a stable store.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:ev"`

	EventID string    `bun:"event_id,pk" json:"eventID"`
	Name    string    `bun:"name,notnull,default:''" json:"name"`
	Route   string    `bun:"route,notnull,default:''" json:"route"`
	Start   time.Time `bun:"start,notnull,type:timestamptz" json:"start"`
}
