// Package discovery ranks candidate upstream events for a stage when no
// explicit event list has been configured. The fetch collaborator feeds
// the ranked IDs back into result fetching.
package discovery

import (
	"sort"
	"strings"
	"time"

	"github.com/eamonmason/kwcc-tdz/tour"
)

// TopN is the number of ranked candidates returned.
const TopN = 12

// Candidate is an upstream event descriptor under consideration.
type Candidate struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Route string    `json:"route,omitempty"`
	Date  time.Time `json:"date"`
}

// Scored pairs a surviving candidate with its score.
type Scored struct {
	Candidate
	Score int `json:"score"`
}

// Rank scores candidates against a stage and returns the top TopN by
// score descending, ties broken by earliest date then ID. Candidates
// named as runs or "advanced" variants are dropped before scoring. An
// empty result means no discoverable events; it is not an error.
func Rank(candidates []Candidate, stage *tour.Stage, phrase string) []Scored {
	phraseLower := strings.ToLower(phrase)
	routeLower := strings.ToLower(stage.Route)

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		nameLower := strings.ToLower(c.Name)
		if strings.Contains(nameLower, "run") || strings.Contains(nameLower, "advanced") {
			continue
		}

		score := 0
		if routeLower != "" &&
			(strings.EqualFold(c.Route, stage.Route) || strings.Contains(nameLower, routeLower)) {
			score += 5
		}
		if phraseLower != "" && strings.Contains(nameLower, phraseLower) {
			score += 2
		}
		if !c.Date.IsZero() && !c.Date.Before(stage.Start) && !c.Date.After(stage.End) {
			score += 3
		}
		scored = append(scored, Scored{Candidate: c, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if !scored[i].Date.Equal(scored[j].Date) {
			return scored[i].Date.Before(scored[j].Date)
		}
		return scored[i].ID < scored[j].ID
	})

	if len(scored) > TopN {
		scored = scored[:TopN]
	}
	return scored
}
