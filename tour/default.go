package tour

import "time"

// mondayWindows are the standard Monday 5pm/6pm UTC penalty slots.
var mondayWindows = []PenaltyWindow{
	{Weekday: "Monday", From: "17:00", To: "17:15", PenaltySeconds: 60, Reason: "Monday 17:00 UTC event"},
	{Weekday: "Monday", From: "18:00", To: "18:15", PenaltySeconds: 60, Reason: "Monday 18:00 UTC event"},
}

// Default returns the 2026 tour configuration, used when no tour file is
// supplied.
func Default() *Config {
	utc := func(y int, m time.Month, d, h, min int) time.Time {
		return time.Date(y, m, d, h, min, 0, 0, time.UTC)
	}
	return &Config{
		TourID: "tdz-2026",
		Name:   "Tour de Zwift 2026",
		Phrase: "Tour de Zwift",
		Handicaps: map[string]int{
			"A1": 600, "A2": 300, "A3": 0,
			"B1": 900, "B2": 600, "B3": 240, "B4": 0,
		},
		Stages: []Stage{
			{
				Number: 1, Name: "Makuri Islands", Route: "Turf N Surf",
				Start: utc(2026, time.January, 5, 17, 0), End: utc(2026, time.January, 12, 16, 59),
				AllowRaces: true, RacePenaltySeconds: 60, PenaltyWindows: mondayWindows,
			},
			{
				Number: 2, Name: "France", Route: "Hell of the North",
				Start: utc(2026, time.January, 12, 17, 0), End: utc(2026, time.January, 19, 16, 59),
				AllowRaces: true, RacePenaltySeconds: 60, PenaltyWindows: mondayWindows,
			},
			{
				Number: 3, Name: "Scotland/Yorkshire", Route: "Yorkshire Double Loop",
				Start: utc(2026, time.January, 19, 17, 0), End: utc(2026, time.January, 26, 16, 59),
				AllowRaces: true, RacePenaltySeconds: 60,
			},
			{
				Number: 4, Name: "London", Route: "Triple Loops",
				Start: utc(2026, time.January, 26, 17, 0), End: utc(2026, time.February, 2, 16, 59),
				AllowRaces: true, RacePenaltySeconds: 60, PenaltyWindows: mondayWindows,
			},
			{
				Number: 5, Name: "Watopia", Route: "Glyph Heights",
				Start: utc(2026, time.February, 2, 17, 0), End: utc(2026, time.February, 9, 16, 59),
				AllowRaces: true, RacePenaltySeconds: 60, PenaltyWindows: mondayWindows,
			},
			{
				Number: 6, Name: "New York", Route: "The Greenway",
				Start: utc(2026, time.February, 9, 17, 0), End: utc(2026, time.February, 16, 16, 59),
				AllowRaces: true, RacePenaltySeconds: 60, PenaltyWindows: mondayWindows,
			},
		},
	}
}
