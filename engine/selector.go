package engine

import (
	"sort"

	"github.com/eamonmason/kwcc-tdz/models"
)

// Select picks the canonical raw result from all of one rider's rows for
// a stage. Manual overrides win unconditionally; the earliest override
// wins when several exist, with the rest reported as warnings. Otherwise
// the fastest raw time wins; penalties are applied after selection, so a
// penalized-but-faster attempt outranks a slower clean one. Ties on raw
// time go to the earliest event start, then the lowest event ID.
//
// Returns nil for an empty input: the rider did not finish the stage.
func Select(results []models.RawResult, warns *Warnings) *models.RawResult {
	if len(results) == 0 {
		return nil
	}

	var manuals []models.RawResult
	for _, r := range results {
		if r.Manual {
			manuals = append(manuals, r)
		}
	}
	if len(manuals) > 0 {
		sort.Slice(manuals, func(i, j int) bool { return manuals[i].ID < manuals[j].ID })
		first := manuals[0]
		for _, extra := range manuals[1:] {
			warns.addf(extra.RiderID, extra.Stage,
				"duplicate manual override %d ignored, keeping %d", extra.ID, first.ID)
		}
		return &first
	}

	best := results[0]
	for _, r := range results[1:] {
		if rawLess(r, best) {
			best = r
		}
	}
	return &best
}

func rawLess(a, b models.RawResult) bool {
	if a.RawTimeSeconds != b.RawTimeSeconds {
		return a.RawTimeSeconds < b.RawTimeSeconds
	}
	if !a.EventStart.Equal(b.EventStart) {
		return a.EventStart.Before(b.EventStart)
	}
	return a.EventID < b.EventID
}
