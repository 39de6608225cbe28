package models

import "github.com/uptrace/bun"

// Rider is a registered club rider. HandicapGroup is one of A1-A3 or
// B1-B4; an empty group means the rider is uncategorized and is kept out
// of standings calculations.
type Rider struct {
	bun.BaseModel `bun:"table:riders,alias:rd"`

	RiderID       string `bun:"rider_id,pk" json:"riderID"`
	Name          string `bun:"name,notnull" json:"name"`
	HandicapGroup string `bun:"handicap_group,notnull,default:''" json:"handicapGroup"`
	Gender        string `bun:"gender,notnull,default:''" json:"gender"`
	Guest         bool   `bun:"guest,notnull,default:false" json:"guest"`
	RacingScore   *int   `bun:"racing_score" json:"racingScore,omitempty"`
}

// RaceGroup returns the top-level category letter ("A" or "B"), or ""
// for uncategorized riders.
func (r *Rider) RaceGroup() string {
	if r.HandicapGroup == "" {
		return ""
	}
	return r.HandicapGroup[:1]
}

// Categorized reports whether the rider has a handicap group assigned.
func (r *Rider) Categorized() bool {
	return r.HandicapGroup != ""
}

// Registry is an in-memory rider lookup, loaded once before any stage
// computation runs.
type Registry struct {
	byID  map[string]*Rider
	order []string
}

// NewRegistry builds a Registry from a slice of riders. Later duplicates
// of the same rider ID replace earlier ones.
func NewRegistry(riders []Rider) *Registry {
	reg := &Registry{byID: make(map[string]*Rider, len(riders))}
	for i := range riders {
		r := riders[i]
		if _, ok := reg.byID[r.RiderID]; !ok {
			reg.order = append(reg.order, r.RiderID)
		}
		reg.byID[r.RiderID] = &r
	}
	return reg
}

// Lookup returns the rider for an ID, or nil if unknown.
func (g *Registry) Lookup(riderID string) *Rider {
	return g.byID[riderID]
}

// Len returns the number of registered riders.
func (g *Registry) Len() int { return len(g.byID) }

// Riders returns all riders in load order.
func (g *Registry) Riders() []*Rider {
	out := make([]*Rider, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.byID[id])
	}
	return out
}
