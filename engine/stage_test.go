package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eamonmason/kwcc-tdz/models"
)

func testRegistry() *models.Registry {
	return models.NewRegistry([]models.Rider{
		{RiderID: "a1-fast", Name: "Alice", HandicapGroup: "A1", Gender: "F"},
		{RiderID: "a3-slow", Name: "Bob", HandicapGroup: "A3", Gender: "M"},
		{RiderID: "b2-mid", Name: "Carol", HandicapGroup: "B2", Gender: "F"},
		{RiderID: "b4-base", Name: "Dave", HandicapGroup: "B4", Gender: "M"},
		{RiderID: "no-group", Name: "Eve"},
	})
}

func TestProcessStage(t *testing.T) {
	cfg := testConfig()
	stage := testStage(t, cfg, 1)
	reg := testRegistry()
	tuesday := time.Date(2026, time.January, 6, 19, 0, 0, 0, time.UTC)

	ride := func(id int, riderID, eventID string, secs int) models.RawResult {
		r := raw(id, riderID, eventID, secs, tuesday, false)
		r.EventName = "Tour de Zwift Stage 1 Group Ride"
		return r
	}

	t.Run("partitions into categories and ranks", func(t *testing.T) {
		standings, warns, err := ProcessStage([]models.RawResult{
			ride(1, "a1-fast", "e1", 1800), // +600 handicap = 2400
			ride(2, "a3-slow", "e1", 2300), // +0 = 2300
			ride(3, "b2-mid", "e1", 2000),  // +600 = 2600
			ride(4, "b4-base", "e1", 2700), // +0 = 2700
		}, reg, stage, cfg, false)
		require.NoError(t, err)
		assert.Empty(t, warns)
		require.Len(t, standings, 2)

		a := standings["A"]
		require.Len(t, a.Results, 2)
		assert.Equal(t, "a3-slow", a.Results[0].RiderID)
		assert.Equal(t, 1, a.Results[0].Position)
		assert.Equal(t, 0, a.Results[0].GapToLeader)
		assert.Equal(t, "a1-fast", a.Results[1].RiderID)
		assert.Equal(t, 2, a.Results[1].Position)
		assert.Equal(t, 100, a.Results[1].GapToLeader)

		b := standings["B"]
		require.Len(t, b.Results, 2)
		assert.Equal(t, "b2-mid", b.Results[0].RiderID)
		assert.Equal(t, "b4-base", b.Results[1].RiderID)
	})

	t.Run("one canonical result per rider", func(t *testing.T) {
		standings, _, err := ProcessStage([]models.RawResult{
			ride(1, "a3-slow", "e1", 2300),
			ride(2, "a3-slow", "e2", 2250),
			ride(3, "a3-slow", "e3", 2400),
		}, reg, stage, cfg, false)
		require.NoError(t, err)
		require.Len(t, standings["A"].Results, 1)
		assert.Equal(t, 2250, standings["A"].Results[0].RawTimeSeconds)
		assert.Equal(t, "e2", standings["A"].Results[0].EventID)
	})

	t.Run("unknown rider warned and skipped", func(t *testing.T) {
		standings, warns, err := ProcessStage([]models.RawResult{
			ride(1, "ghost", "e1", 2000),
			ride(2, "a3-slow", "e1", 2300),
		}, reg, stage, cfg, false)
		require.NoError(t, err)
		require.Len(t, warns, 1)
		assert.Equal(t, "ghost", warns[0].RiderID)
		assert.Contains(t, warns[0].Reason, "unknown rider")
		require.Len(t, standings["A"].Results, 1)
	})

	t.Run("uncategorized rider warned and skipped", func(t *testing.T) {
		standings, warns, err := ProcessStage([]models.RawResult{
			ride(1, "no-group", "e1", 2000),
		}, reg, stage, cfg, false)
		require.NoError(t, err)
		require.Len(t, warns, 1)
		assert.Contains(t, warns[0].Reason, "no handicap group")
		assert.Empty(t, standings)
	})

	t.Run("adjusted tie broken by rider id", func(t *testing.T) {
		// Both land on 2300 adjusted: a3-slow raw 2300 +0, a1-fast raw 1700 +600.
		standings, _, err := ProcessStage([]models.RawResult{
			ride(1, "a3-slow", "e1", 2300),
			ride(2, "a1-fast", "e1", 1700),
		}, reg, stage, cfg, false)
		require.NoError(t, err)
		results := standings["A"].Results
		require.Len(t, results, 2)
		assert.Equal(t, results[0].AdjustedSeconds, results[1].AdjustedSeconds)
		assert.Equal(t, "a1-fast", results[0].RiderID)
		assert.Equal(t, 1, results[0].Position)
		assert.Equal(t, 2, results[1].Position)
		assert.Equal(t, 0, results[1].GapToLeader)
	})

	t.Run("empty input yields empty standings", func(t *testing.T) {
		standings, warns, err := ProcessStage(nil, reg, stage, cfg, false)
		require.NoError(t, err)
		assert.Empty(t, standings)
		assert.Empty(t, warns)
	})

	t.Run("race gate drops rider from ride-only stage", func(t *testing.T) {
		cfg := testConfig()
		st := testStage(t, cfg, 1)
		st.AllowRaces = false

		race := raw(1, "a3-slow", "e1", 2000, tuesday, false)
		race.EventName = "Tour de Zwift Stage 1 Race"

		standings, warns, err := ProcessStage([]models.RawResult{
			race,
			ride(2, "a1-fast", "e2", 1800),
		}, reg, st, cfg, false)
		require.NoError(t, err)
		assert.Empty(t, warns)
		require.Len(t, standings["A"].Results, 1)
		assert.Equal(t, "a1-fast", standings["A"].Results[0].RiderID)
	})

	t.Run("unknown handicap group aborts the stage", func(t *testing.T) {
		reg := models.NewRegistry([]models.Rider{
			{RiderID: "odd", Name: "Odd", HandicapGroup: "A9"},
		})
		_, _, err := ProcessStage([]models.RawResult{
			ride(1, "odd", "e1", 2000),
		}, reg, stage, cfg, false)
		require.Error(t, err)
	})
}
