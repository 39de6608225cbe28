package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eamonmason/kwcc-tdz/models"
	"github.com/eamonmason/kwcc-tdz/tour"
)

func testConfig() *tour.Config {
	return tour.Default()
}

func testStage(t *testing.T, cfg *tour.Config, number int) *tour.Stage {
	t.Helper()
	st, err := cfg.Stage(number)
	require.NoError(t, err)
	return st
}

func testRider(id, group, gender string, guest bool) *models.Rider {
	return &models.Rider{
		RiderID:       id,
		Name:          "Rider " + id,
		HandicapGroup: group,
		Gender:        gender,
		Guest:         guest,
	}
}

func TestAdjust(t *testing.T) {
	cfg := testConfig()
	// Tuesday, outside every penalty window.
	quietStart := time.Date(2026, time.January, 6, 19, 0, 0, 0, time.UTC)

	t.Run("handicap only", func(t *testing.T) {
		// A1 rider, raw 1800s, no penalties: final 2400s.
		r := raw(1, "z", "e1", 1800, quietStart, false)
		r.EventName = "Tour de Zwift Stage 1 Group Ride"

		got, err := Adjust(&r, testRider("z", "A1", "M", false), testStage(t, cfg, 1), cfg, false)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 1800, got.RawTimeSeconds)
		assert.Equal(t, 0, got.PenaltySeconds)
		assert.Equal(t, 600, got.HandicapSeconds)
		assert.Equal(t, 2400, got.AdjustedSeconds)
		assert.Empty(t, got.PenaltyReason)
	})

	t.Run("race penalty added when races allowed", func(t *testing.T) {
		// Raw 45:10 on a race: adjusted = 45:10 + 60s + handicap.
		r := raw(1, "x", "e1", 2710, quietStart, false)
		r.EventName = "Tour de Zwift Stage 1 Race"

		got, err := Adjust(&r, testRider("x", "A3", "M", false), testStage(t, cfg, 1), cfg, false)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 60, got.PenaltySeconds)
		assert.Equal(t, 2710+60, got.AdjustedSeconds)
		assert.Contains(t, got.PenaltyReason, "race event")
	})

	t.Run("race excluded when stage disallows races", func(t *testing.T) {
		cfg := testConfig()
		st := testStage(t, cfg, 2)
		st.AllowRaces = false

		r := raw(1, "y", "e1", 2710, quietStart, false)
		r.EventName = "Tour de Zwift Race - Stage 2"
		r.Stage = 2

		got, err := Adjust(&r, testRider("y", "B2", "M", false), st, cfg, false)
		require.NoError(t, err)
		assert.Nil(t, got, "race result must be excluded, not penalized")
	})

	t.Run("window penalty accumulates with race penalty", func(t *testing.T) {
		// Monday 17:05 UTC race: 60s window + 60s race penalty.
		start := time.Date(2026, time.January, 5, 17, 5, 0, 0, time.UTC)
		r := raw(1, "w", "e1", 2000, start, false)
		r.EventName = "Tour de Zwift Stage 1 Race"

		got, err := Adjust(&r, testRider("w", "B4", "F", false), testStage(t, cfg, 1), cfg, false)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 120, got.PenaltySeconds)
		assert.Equal(t, 2120, got.AdjustedSeconds)
		assert.Contains(t, got.PenaltyReason, "race event")
		assert.Contains(t, got.PenaltyReason, "Monday 17:00 UTC event")
	})

	t.Run("overlapping windows are fully additive", func(t *testing.T) {
		cfg := testConfig()
		st := testStage(t, cfg, 1)
		st.PenaltyWindows = []tour.PenaltyWindow{
			{Weekday: "Monday", From: "17:00", To: "17:30", PenaltySeconds: 60, Reason: "first"},
			{Weekday: "Monday", From: "17:00", To: "18:00", PenaltySeconds: 30, Reason: "second"},
		}

		start := time.Date(2026, time.January, 5, 17, 10, 0, 0, time.UTC)
		r := raw(1, "w", "e1", 2000, start, false)
		r.EventName = "Tour de Zwift Stage 1 Group Ride"

		got, err := Adjust(&r, testRider("w", "B4", "M", false), st, cfg, false)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 90, got.PenaltySeconds)
		assert.Equal(t, "first; second", got.PenaltyReason)
	})

	t.Run("unknown handicap group aborts", func(t *testing.T) {
		r := raw(1, "u", "e1", 1800, quietStart, false)
		r.EventName = "Tour de Zwift Stage 1 Group Ride"

		_, err := Adjust(&r, testRider("u", "Z9", "M", false), testStage(t, cfg, 1), cfg, false)
		require.Error(t, err)
		var cfgErr *tour.ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("final time never below raw time", func(t *testing.T) {
		for _, group := range []string{"A1", "A2", "A3", "B1", "B2", "B3", "B4"} {
			r := raw(1, "p", "e1", 2500, quietStart, false)
			r.EventName = "Stage 1 Race"

			got, err := Adjust(&r, testRider("p", group, "M", false), testStage(t, cfg, 1), cfg, false)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.GreaterOrEqual(t, got.AdjustedSeconds, got.RawTimeSeconds)
			assert.GreaterOrEqual(t, got.PenaltySeconds, 0)
			assert.GreaterOrEqual(t, got.HandicapSeconds, 0)
			assert.Equal(t, got.RawTimeSeconds+got.PenaltySeconds+got.HandicapSeconds, got.AdjustedSeconds)
		}
	})

	t.Run("manual source marks the result provisional", func(t *testing.T) {
		r := raw(1, "m", "e1", 1800, quietStart, true)
		r.EventName = "Manual entry"

		got, err := Adjust(&r, testRider("m", "A3", "M", false), testStage(t, cfg, 1), cfg, false)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Provisional)
	})
}
