package engine

import (
	"fmt"
	"strings"

	"github.com/eamonmason/kwcc-tdz/models"
	"github.com/eamonmason/kwcc-tdz/tour"
)

// Adjust applies the race/ride gate, penalties and the handicap to a
// canonical raw result.
//
// Returns (nil, nil) when the stage disallows races and the event is a
// race: the result is excluded outright, not penalized. An unknown
// handicap group returns a tour.ConfigError and must abort the run.
func Adjust(raw *models.RawResult, rider *models.Rider, stage *tour.Stage, cfg *tour.Config, provisional bool) (*models.StageResult, error) {
	isRace := tour.IsRaceEvent(raw.EventName)
	if isRace && !stage.AllowRaces {
		return nil, nil
	}

	penalty := 0
	var reasons []string

	if isRace && stage.RacePenaltySeconds > 0 {
		penalty += stage.RacePenaltySeconds
		reasons = append(reasons, fmt.Sprintf("race event +%ds", stage.RacePenaltySeconds))
	}

	// Overlapping windows accumulate; there is deliberately no cap.
	for i := range stage.PenaltyWindows {
		w := &stage.PenaltyWindows[i]
		if !w.Contains(raw.EventStart) {
			continue
		}
		penalty += w.PenaltySeconds
		reason := w.Reason
		if reason == "" {
			reason = fmt.Sprintf("%s %s-%s UTC event", w.Weekday, w.From, w.To)
		}
		reasons = append(reasons, reason)
	}

	handicap, err := cfg.Handicap(rider.HandicapGroup)
	if err != nil {
		return nil, err
	}

	return &models.StageResult{
		RiderID:         rider.RiderID,
		RiderName:       rider.Name,
		Stage:           raw.Stage,
		RaceGroup:       rider.RaceGroup(),
		HandicapGroup:   rider.HandicapGroup,
		Gender:          rider.Gender,
		Guest:           rider.Guest,
		RawTimeSeconds:  raw.RawTimeSeconds,
		PenaltySeconds:  penalty,
		PenaltyReason:   strings.Join(reasons, "; "),
		HandicapSeconds: handicap,
		AdjustedSeconds: raw.RawTimeSeconds + penalty + handicap,
		RawPosition:     raw.Position,
		Provisional:     provisional || raw.Manual,
		EventID:         raw.EventID,
		EventStart:      raw.EventStart,
	}, nil
}
