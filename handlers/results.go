package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eamonmason/kwcc-tdz/engine"
	"github.com/eamonmason/kwcc-tdz/models"
)

// rawResultRow is the ingestion shape supplied by the fetch collaborator.
// Time can be given as seconds or as a clock string ("45:10").
type rawResultRow struct {
	RiderID        string `json:"riderID"`
	Stage          int    `json:"stage"`
	EventID        string `json:"eventID"`
	EventName      string `json:"eventName"`
	RawTimeSeconds int    `json:"rawTimeSeconds"`
	RawTime        string `json:"rawTime"`
	Position       int    `json:"position"`
	EventStart     string `json:"eventStart"`
}

func (r *rawResultRow) toModel() (*models.RawResult, error) {
	if r.RiderID == "" || r.EventID == "" {
		return nil, fmt.Errorf("riderID and eventID are required")
	}
	if r.Stage < 1 {
		return nil, fmt.Errorf("invalid stage %d", r.Stage)
	}

	secs := r.RawTimeSeconds
	if secs == 0 && r.RawTime != "" {
		parsed, err := models.ParseTime(r.RawTime)
		if err != nil {
			return nil, err
		}
		secs = parsed
	}
	if secs <= 0 {
		return nil, fmt.Errorf("missing or non-positive raw time")
	}

	start, err := time.Parse(time.RFC3339, r.EventStart)
	if err != nil {
		return nil, fmt.Errorf("unparseable eventStart %q", r.EventStart)
	}

	return &models.RawResult{
		RiderID:        r.RiderID,
		Stage:          r.Stage,
		EventID:        r.EventID,
		EventName:      r.EventName,
		RawTimeSeconds: secs,
		Position:       r.Position,
		EventStart:     start.UTC(),
	}, nil
}

// IngestResults stores a batch of raw finishing records. Rows for
// unknown riders or with unparseable fields are skipped and reported as
// warnings; duplicates of an already stored (rider, stage, event) row
// update it in place.
func (h *Handler) IngestResults(c echo.Context) error {
	var rows []rawResultRow
	if err := c.Bind(&rows); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	var riders []models.Rider
	if err := h.db.NewSelect().Model(&riders).Scan(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	reg := models.NewRegistry(riders)

	var (
		stored []models.RawResult
		warns  engine.Warnings
	)
	for _, row := range rows {
		rr, err := row.toModel()
		if err != nil {
			warns = append(warns, engine.Warning{
				RiderID: row.RiderID, Stage: row.Stage, Reason: err.Error(),
			})
			continue
		}
		if reg.Lookup(rr.RiderID) == nil {
			warns = append(warns, engine.Warning{
				RiderID: rr.RiderID, Stage: rr.Stage,
				Reason: fmt.Sprintf("unknown rider %s, result skipped", rr.RiderID),
			})
			continue
		}
		stored = append(stored, *rr)
	}

	if len(stored) > 0 {
		_, err := h.db.NewInsert().Model(&stored).
			On("CONFLICT (rider_id, stage, event_id) DO UPDATE").
			Set("raw_time_seconds = EXCLUDED.raw_time_seconds").
			Set("event_name = EXCLUDED.event_name").
			Set("position = EXCLUDED.position").
			Set("event_start = EXCLUDED.event_start").
			Exec(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"stored":   len(stored),
		"warnings": warns,
	})
}

// RawResults lists stored raw results, optionally filtered by stage.
func (h *Handler) RawResults(c echo.Context) error {
	var results []models.RawResult
	q := h.db.NewSelect().Model(&results).
		OrderExpr("rr.stage, rr.rider_id, rr.raw_time_seconds")

	if s := c.QueryParam("stage"); s != "" {
		stage, err := strconv.Atoi(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid stage param")
		}
		q = q.Where("rr.stage = ?", stage)
	}

	if err := q.Scan(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, results)
}
