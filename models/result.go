package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// RawResult is a single finishing record for a rider in a stage, as
// reported by the upstream timing source. A rider may have several raw
// rows per stage (one per event ridden); selection collapses them to one.
type RawResult struct {
	bun.BaseModel `bun:"table:raw_results,alias:rr"`

	ID             int       `bun:"id,pk,autoincrement" json:"id"`
	RiderID        string    `bun:"rider_id,notnull" json:"riderID"`
	Stage          int       `bun:"stage,notnull" json:"stage"`
	EventID        string    `bun:"event_id,notnull" json:"eventID"`
	EventName      string    `bun:"event_name,notnull,default:''" json:"eventName"`
	RawTimeSeconds int       `bun:"raw_time_seconds,notnull" json:"rawTimeSeconds"`
	Position       int       `bun:"position,notnull,default:0" json:"position"`
	EventStart     time.Time `bun:"event_start,notnull,type:timestamptz" json:"eventStart"`
	Manual         bool      `bun:"manual,notnull,default:false" json:"manual"`
}

// StageResult is a rider's canonical result for one stage with penalty
// and handicap applied. It is recomputed on every run and never stored.
type StageResult struct {
	RiderID         string    `json:"riderID"`
	RiderName       string    `json:"riderName"`
	Stage           int       `json:"stage"`
	RaceGroup       string    `json:"raceGroup"`
	HandicapGroup   string    `json:"handicapGroup"`
	Gender          string    `json:"gender,omitempty"`
	Guest           bool      `json:"guest,omitempty"`
	RawTimeSeconds  int       `json:"rawTimeSeconds"`
	PenaltySeconds  int       `json:"penaltySeconds"`
	PenaltyReason   string    `json:"penaltyReason,omitempty"`
	HandicapSeconds int       `json:"handicapSeconds"`
	AdjustedSeconds int       `json:"adjustedSeconds"`
	Position        int       `json:"position"`
	RawPosition     int       `json:"rawPosition"`
	GapToLeader     int       `json:"gapToLeader"`
	Provisional     bool      `json:"provisional"`
	EventID         string    `json:"eventID"`
	EventStart      time.Time `json:"eventStart"`
}

// RawTimeDisplay formats the raw time as H:MM:SS or M:SS.
func (s *StageResult) RawTimeDisplay() string { return FormatTime(s.RawTimeSeconds) }

// AdjustedTimeDisplay formats the adjusted time as H:MM:SS or M:SS.
func (s *StageResult) AdjustedTimeDisplay() string { return FormatTime(s.AdjustedSeconds) }

// GapDisplay formats the gap to the stage leader, "-" for the leader.
func (s *StageResult) GapDisplay() string {
	if s.GapToLeader == 0 {
		return "-"
	}
	return "+" + FormatTime(s.GapToLeader)
}

// FormatTime renders seconds as H:MM:SS, or M:SS under an hour.
func FormatTime(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ParseTime parses H:MM:SS or M:SS into seconds.
func ParseTime(v string) (int, error) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	switch len(parts) {
	case 3:
		var h, m, s int
		if _, err := fmt.Sscanf(strings.Join(parts, ":"), "%d:%d:%d", &h, &m, &s); err != nil {
			return 0, fmt.Errorf("invalid time %q", v)
		}
		return h*3600 + m*60 + s, nil
	case 2:
		var m, s int
		if _, err := fmt.Sscanf(strings.Join(parts, ":"), "%d:%d", &m, &s); err != nil {
			return 0, fmt.Errorf("invalid time %q", v)
		}
		return m*60 + s, nil
	}
	return 0, fmt.Errorf("invalid time %q", v)
}
