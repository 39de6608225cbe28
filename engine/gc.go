package engine

import (
	"sort"

	"github.com/eamonmason/kwcc-tdz/models"
)

// GC builds the General Classification for one category from per-stage
// adjusted results. A rider appears only with a result for every stage
// in stageNumbers; missing even one stage, whether absent or excluded by
// the race gate, drops them from the table. Guests never appear in GC.
func GC(allStages map[int][]models.StageResult, stageNumbers []int, group string, totalStages int, provisional bool) models.GCStandings {
	return buildGC(allStages, stageNumbers, group, totalStages, provisional, func(r *models.StageResult) bool {
		return r.RaceGroup == group
	})
}

// WomenGC builds the women's GC: the population is pre-filtered to
// gender F and merged across the A and B categories before ranking. A
// rider's handicap group is retained for display but does not gate
// inclusion.
func WomenGC(allStages map[int][]models.StageResult, stageNumbers []int, totalStages int, provisional bool) models.GCStandings {
	return buildGC(allStages, stageNumbers, "Women", totalStages, provisional, func(r *models.StageResult) bool {
		return r.Gender == "F"
	})
}

func buildGC(allStages map[int][]models.StageResult, stageNumbers []int, label string, totalStages int, provisional bool, include func(*models.StageResult) bool) models.GCStandings {
	required := make(map[int]bool, len(stageNumbers))
	for _, n := range stageNumbers {
		required[n] = true
	}

	perRider := map[string]map[int]*models.StageResult{}
	for stageNum, results := range allStages {
		if !required[stageNum] {
			continue
		}
		for i := range results {
			r := &results[i]
			if r.Guest || !include(r) {
				continue
			}
			if perRider[r.RiderID] == nil {
				perRider[r.RiderID] = map[int]*models.StageResult{}
			}
			// At most one result per rider/stage survives selection; if
			// callers pass merged duplicates, keep the first.
			if _, ok := perRider[r.RiderID][stageNum]; !ok {
				perRider[r.RiderID][stageNum] = r
			}
		}
	}

	var standings []models.GCStanding
	for riderID, stages := range perRider {
		complete := true
		for _, n := range stageNumbers {
			if _, ok := stages[n]; !ok {
				complete = false
				break
			}
		}
		if !complete || len(stageNumbers) == 0 {
			continue
		}

		total := 0
		stageSeconds := make(map[int]int, len(stages))
		stageEvents := make(map[int]string, len(stages))
		var sample *models.StageResult
		for n, r := range stages {
			total += r.AdjustedSeconds
			stageSeconds[n] = r.AdjustedSeconds
			if r.EventID != "" {
				stageEvents[n] = r.EventID
			}
			if sample == nil || n < sample.Stage {
				sample = r
			}
		}

		standings = append(standings, models.GCStanding{
			RiderID:         riderID,
			RiderName:       sample.RiderName,
			RaceGroup:       sample.RaceGroup,
			HandicapGroup:   sample.HandicapGroup,
			TotalSeconds:    total,
			StageSeconds:    stageSeconds,
			StageEventIDs:   stageEvents,
			StagesCompleted: len(stages),
			Provisional:     provisional,
		})
	}

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].TotalSeconds != standings[j].TotalSeconds {
			return standings[i].TotalSeconds < standings[j].TotalSeconds
		}
		return standings[i].RiderID < standings[j].RiderID
	})
	if len(standings) > 0 {
		leader := standings[0].TotalSeconds
		for i := range standings {
			standings[i].Position = i + 1
			standings[i].GapToLeader = standings[i].TotalSeconds - leader
		}
	}

	return models.GCStandings{
		Group:           label,
		Standings:       standings,
		TotalStages:     totalStages,
		CompletedStages: len(stageNumbers),
		Provisional:     provisional,
	}
}
