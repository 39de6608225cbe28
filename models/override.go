package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Override is a manually entered result for a rider and stage. It always
// wins selection over automatically fetched results, regardless of time.
// When more than one override exists for the same rider/stage the
// earliest one wins and the rest are reported as warnings.
type Override struct {
	bun.BaseModel `bun:"table:overrides,alias:ov"`

	ID             int       `bun:"id,pk,autoincrement" json:"id"`
	RiderID        string    `bun:"rider_id,notnull" json:"riderID"`
	Stage          int       `bun:"stage,notnull" json:"stage"`
	EventID        string    `bun:"event_id,notnull,default:''" json:"eventID"`
	EventName      string    `bun:"event_name,notnull,default:''" json:"eventName"`
	RawTimeSeconds int       `bun:"raw_time_seconds,notnull" json:"rawTimeSeconds"`
	EventStart     time.Time `bun:"event_start,notnull,type:timestamptz" json:"eventStart"`
	Note           string    `bun:"note,notnull,default:''" json:"note,omitempty"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// RawResult converts the override into a manual raw result so it can run
// through the same selection and adjustment pipeline as fetched rows.
func (o *Override) RawResult() RawResult {
	return RawResult{
		ID:             o.ID,
		RiderID:        o.RiderID,
		Stage:          o.Stage,
		EventID:        o.EventID,
		EventName:      o.EventName,
		RawTimeSeconds: o.RawTimeSeconds,
		EventStart:     o.EventStart,
		Manual:         true,
	}
}
