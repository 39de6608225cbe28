package models

// StageStandings is the ordered result table for one stage and category.
type StageStandings struct {
	Stage   int           `json:"stage"`
	Group   string        `json:"group"`
	Results []StageResult `json:"results"`
}

// GCStanding is one rider's General Classification entry: the sum of
// adjusted times across every stage they are required to have completed.
type GCStanding struct {
	RiderID         string      `json:"riderID"`
	RiderName       string      `json:"riderName"`
	RaceGroup       string      `json:"raceGroup"`
	HandicapGroup   string      `json:"handicapGroup"`
	TotalSeconds    int         `json:"totalSeconds"`
	StageSeconds    map[int]int `json:"stageSeconds"`
	StageEventIDs   map[int]string `json:"stageEventIDs,omitempty"`
	StagesCompleted int         `json:"stagesCompleted"`
	Position        int         `json:"position"`
	GapToLeader     int         `json:"gapToLeader"`
	Provisional     bool        `json:"provisional"`
}

// TotalTimeDisplay formats the cumulative time.
func (g *GCStanding) TotalTimeDisplay() string { return FormatTime(g.TotalSeconds) }

// GapDisplay formats the gap to the GC leader, "-" for the leader.
func (g *GCStanding) GapDisplay() string {
	if g.GapToLeader == 0 {
		return "-"
	}
	return "+" + FormatTime(g.GapToLeader)
}

// GCStandings is a complete GC table for a group ("A", "B" or "Women").
type GCStandings struct {
	Group           string       `json:"group"`
	Standings       []GCStanding `json:"standings"`
	TotalStages     int          `json:"totalStages"`
	CompletedStages int          `json:"completedStages"`
	Provisional     bool         `json:"provisional"`
	LastUpdated     string       `json:"lastUpdated,omitempty"`
}

// Leader returns the current leader, or nil for an empty table.
func (g *GCStandings) Leader() *GCStanding {
	if len(g.Standings) == 0 {
		return nil
	}
	return &g.Standings[0]
}
