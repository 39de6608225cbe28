package tour

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRaceEvent(t *testing.T) {
	cases := []struct {
		name  string
		event string
		want  bool
	}{
		{"trailing token", "Tour de Zwift Stage 1 Race", true},
		{"leading token", "Race Event - Stage 1", true},
		{"dashed", "Stage 1 - Race - Tour de Zwift", true},
		{"parenthesized", "Tour de Zwift Stage 1 (Race)", true},
		{"bracketed", "Tour de Zwift Stage 1 [Race]", true},
		{"uppercase", "TOUR DE ZWIFT STAGE 1 RACE", true},
		{"group ride", "Tour de Zwift Stage 1 - Group Ride", false},
		{"trace is not race", "Watopia Trace - Group Ride", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRaceEvent(tc.event))
		})
	}
}

func TestPenaltyWindowContains(t *testing.T) {
	w := PenaltyWindow{Weekday: "Monday", From: "17:00", To: "17:15", PenaltySeconds: 60}
	require.NoError(t, w.validate("test"))

	// 2026-01-05 is a Monday.
	monday := func(h, m int) time.Time {
		return time.Date(2026, time.January, 5, h, m, 0, 0, time.UTC)
	}

	t.Run("inside window", func(t *testing.T) {
		assert.True(t, w.Contains(monday(17, 0)))
		assert.True(t, w.Contains(monday(17, 15)))
	})
	t.Run("outside clock range", func(t *testing.T) {
		assert.False(t, w.Contains(monday(16, 59)))
		assert.False(t, w.Contains(monday(17, 16)))
	})
	t.Run("wrong weekday", func(t *testing.T) {
		tuesday := time.Date(2026, time.January, 6, 17, 5, 0, 0, time.UTC)
		assert.False(t, w.Contains(tuesday))
	})
	t.Run("non-utc input normalized", func(t *testing.T) {
		loc := time.FixedZone("CET", 3600)
		// 18:05 CET is 17:05 UTC, still Monday.
		assert.True(t, w.Contains(time.Date(2026, time.January, 5, 18, 5, 0, 0, loc)))
	})
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		cfg := Default()
		return cfg
	}

	t.Run("default config is valid", func(t *testing.T) {
		require.NoError(t, base().Validate())
	})

	t.Run("duplicate stage number", func(t *testing.T) {
		cfg := base()
		cfg.Stages[1].Number = cfg.Stages[0].Number
		err := cfg.Validate()
		require.Error(t, err)
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("malformed window clock", func(t *testing.T) {
		cfg := base()
		cfg.Stages[0].PenaltyWindows = []PenaltyWindow{{Weekday: "Monday", From: "25:00", To: "26:00"}}
		require.Error(t, cfg.Validate())
	})

	t.Run("window end before start", func(t *testing.T) {
		cfg := base()
		cfg.Stages[0].PenaltyWindows = []PenaltyWindow{{Weekday: "Monday", From: "18:00", To: "17:00"}}
		require.Error(t, cfg.Validate())
	})

	t.Run("unknown weekday", func(t *testing.T) {
		cfg := base()
		cfg.Stages[0].PenaltyWindows = []PenaltyWindow{{Weekday: "Moonday", From: "17:00", To: "17:15"}}
		require.Error(t, cfg.Validate())
	})

	t.Run("negative handicap", func(t *testing.T) {
		cfg := base()
		cfg.Handicaps["A1"] = -1
		require.Error(t, cfg.Validate())
	})

	t.Run("no stages", func(t *testing.T) {
		cfg := &Config{}
		require.Error(t, cfg.Validate())
	})
}

func TestHandicap(t *testing.T) {
	cfg := Default()

	t.Run("known groups", func(t *testing.T) {
		secs, err := cfg.Handicap("A1")
		require.NoError(t, err)
		assert.Equal(t, 600, secs)

		secs, err = cfg.Handicap("B4")
		require.NoError(t, err)
		assert.Equal(t, 0, secs)
	})

	t.Run("unknown group is a config error", func(t *testing.T) {
		_, err := cfg.Handicap("C1")
		require.Error(t, err)
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})
}

func TestStageLookup(t *testing.T) {
	cfg := Default()

	st, err := cfg.Stage(2)
	require.NoError(t, err)
	assert.Equal(t, "France", st.Name)

	_, err = cfg.Stage(9)
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestCompletedStageNumbers(t *testing.T) {
	cfg := Default()

	t.Run("mid tour", func(t *testing.T) {
		// Between stage 2 and stage 3.
		now := time.Date(2026, time.January, 19, 16, 59, 30, 0, time.UTC)
		assert.Equal(t, []int{1, 2}, cfg.CompletedStageNumbers(now))
	})
	t.Run("before tour", func(t *testing.T) {
		now := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
		assert.Empty(t, cfg.CompletedStageNumbers(now))
	})
	t.Run("after tour", func(t *testing.T) {
		now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, cfg.CompletedStageNumbers(now))
	})
}

func TestLoad(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tour.yaml")
		data := `
tour_id: tdz-test
name: Test Tour
phrase: Tour de Zwift
handicaps:
  A1: 600
  A2: 300
  A3: 0
stages:
  - number: 1
    name: Makuri Islands
    route: Turf N Surf
    start: 2026-01-05T17:00:00Z
    end: 2026-01-12T16:59:00Z
    allow_races: true
    race_penalty_seconds: 60
    penalty_windows:
      - weekday: Monday
        from: "17:00"
        to: "17:15"
        penalty_seconds: 60
        reason: Monday 17:00 UTC event
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "tdz-test", cfg.TourID)
		require.Len(t, cfg.Stages, 1)
		assert.Equal(t, 60, cfg.Stages[0].RacePenaltySeconds)
		require.Len(t, cfg.Stages[0].PenaltyWindows, 1)
		assert.Equal(t, 60, cfg.Stages[0].PenaltyWindows[0].PenaltySeconds)
	})

	t.Run("invalid file fails validation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tour.yaml")
		data := `
stages:
  - number: 1
    start: 2026-01-12T17:00:00Z
    end: 2026-01-05T16:59:00Z
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}
