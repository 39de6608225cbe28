package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eamonmason/kwcc-tdz/discovery"
	"github.com/eamonmason/kwcc-tdz/models"
)

type eventUpsert struct {
	EventID string `json:"eventID"`
	Name    string `json:"name"`
	Route   string `json:"route"`
	Start   string `json:"start"`
}

// Events lists the discovered-event store.
func (h *Handler) Events(c echo.Context) error {
	var events []models.Event
	err := h.db.NewSelect().Model(&events).OrderExpr("ev.start DESC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, events)
}

// SaveEvents merges newly discovered events into the persistent store so
// repeat discovery runs build on earlier ones.
func (h *Handler) SaveEvents(c echo.Context) error {
	var reqs []eventUpsert
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	events := make([]models.Event, 0, len(reqs))
	for _, r := range reqs {
		if r.EventID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "eventID is required")
		}
		start, err := time.Parse(time.RFC3339, r.Start)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unparseable start for event "+r.EventID)
		}
		events = append(events, models.Event{
			EventID: r.EventID,
			Name:    r.Name,
			Route:   r.Route,
			Start:   start.UTC(),
		})
	}
	if len(events) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no events supplied")
	}

	_, err := h.db.NewInsert().Model(&events).
		On("CONFLICT (event_id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("route = EXCLUDED.route").
		Set("start = EXCLUDED.start").
		Exec(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]int{"saved": len(events)})
}

type scoreRequest struct {
	Stage      int                   `json:"stage"`
	Candidates []discovery.Candidate `json:"candidates"`
}

// ScoreEvents ranks candidate events for a stage. When no candidates are
// supplied the stored event set is scored instead. An empty ranking is a
// valid answer, not an error.
func (h *Handler) ScoreEvents(c echo.Context) error {
	var req scoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	stage, err := h.Tour.Stage(req.Stage)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	candidates := req.Candidates
	if len(candidates) == 0 {
		var events []models.Event
		err := h.db.NewSelect().Model(&events).Scan(c.Request().Context())
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		for _, ev := range events {
			candidates = append(candidates, discovery.Candidate{
				ID: ev.EventID, Name: ev.Name, Route: ev.Route, Date: ev.Start,
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"stage":      req.Stage,
		"candidates": discovery.Rank(candidates, stage, h.Tour.Phrase),
	})
}
