package engine

import (
	"sort"

	"github.com/eamonmason/kwcc-tdz/models"
	"github.com/eamonmason/kwcc-tdz/tour"
)

// ProcessStage collapses a stage's raw results to one canonical result
// per rider, adjusts them, and builds ordered standings per top-level
// category ("A" and "B"). Unknown and uncategorized riders are skipped
// with warnings; configuration problems abort with an error.
func ProcessStage(raw []models.RawResult, reg *models.Registry, stage *tour.Stage, cfg *tour.Config, provisional bool) (map[string]models.StageStandings, Warnings, error) {
	var warns Warnings

	byRider := make(map[string][]models.RawResult)
	var riderOrder []string
	for _, r := range raw {
		if reg.Lookup(r.RiderID) == nil {
			warns.addf(r.RiderID, r.Stage, "unknown rider %s, result skipped", r.RiderID)
			continue
		}
		if _, ok := byRider[r.RiderID]; !ok {
			riderOrder = append(riderOrder, r.RiderID)
		}
		byRider[r.RiderID] = append(byRider[r.RiderID], r)
	}
	sort.Strings(riderOrder)

	grouped := map[string][]models.StageResult{}
	for _, riderID := range riderOrder {
		rider := reg.Lookup(riderID)
		if !rider.Categorized() {
			warns.addf(riderID, stage.Number, "rider %s has no handicap group, excluded from standings", riderID)
			continue
		}

		canonical := Select(byRider[riderID], &warns)
		if canonical == nil {
			continue
		}

		adjusted, err := Adjust(canonical, rider, stage, cfg, provisional)
		if err != nil {
			return nil, warns, err
		}
		if adjusted == nil {
			// Race event on a ride-only stage.
			continue
		}
		grouped[adjusted.RaceGroup] = append(grouped[adjusted.RaceGroup], *adjusted)
	}

	out := make(map[string]models.StageStandings, len(grouped))
	for group, results := range grouped {
		out[group] = models.StageStandings{
			Stage:   stage.Number,
			Group:   group,
			Results: rankStage(results),
		}
	}
	return out, warns, nil
}

// rankStage sorts results by adjusted time ascending, ties broken by
// rider ID, then assigns positions and gaps to the leader.
func rankStage(results []models.StageResult) []models.StageResult {
	sort.Slice(results, func(i, j int) bool {
		if results[i].AdjustedSeconds != results[j].AdjustedSeconds {
			return results[i].AdjustedSeconds < results[j].AdjustedSeconds
		}
		return results[i].RiderID < results[j].RiderID
	})
	if len(results) == 0 {
		return results
	}
	leader := results[0].AdjustedSeconds
	for i := range results {
		results[i].Position = i + 1
		results[i].GapToLeader = results[i].AdjustedSeconds - leader
	}
	return results
}
