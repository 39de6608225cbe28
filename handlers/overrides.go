package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eamonmason/kwcc-tdz/models"
)

type overrideRequest struct {
	RiderID        string `json:"riderID"`
	Stage          int    `json:"stage"`
	EventID        string `json:"eventID"`
	EventName      string `json:"eventName"`
	RawTimeSeconds int    `json:"rawTimeSeconds"`
	RawTime        string `json:"rawTime"`
	EventStart     string `json:"eventStart"`
	Note           string `json:"note"`
}

// CreateOverride records a manual result for a rider and stage. Unlike
// automatic rows, a bad timestamp here rejects the request: a manual
// entry with garbage in it is operator error, not upstream noise.
func (h *Handler) CreateOverride(c echo.Context) error {
	var req overrideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.RiderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "riderID is required")
	}
	if _, err := h.Tour.Stage(req.Stage); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown stage %d", req.Stage))
	}

	secs := req.RawTimeSeconds
	if secs == 0 && req.RawTime != "" {
		parsed, err := models.ParseTime(req.RawTime)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		secs = parsed
	}
	if secs <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "missing or non-positive raw time")
	}

	start, err := time.Parse(time.RFC3339, req.EventStart)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unparseable eventStart")
	}

	ctx := c.Request().Context()

	exists, err := h.db.NewSelect().Model((*models.Rider)(nil)).
		Where("rider_id = ?", req.RiderID).
		Exists(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !exists {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown rider")
	}

	ov := &models.Override{
		RiderID:        req.RiderID,
		Stage:          req.Stage,
		EventID:        req.EventID,
		EventName:      req.EventName,
		RawTimeSeconds: secs,
		EventStart:     start.UTC(),
		Note:           req.Note,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := h.db.NewInsert().Model(ov).Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, ov)
}

// Overrides lists manual overrides, optionally filtered by stage.
func (h *Handler) Overrides(c echo.Context) error {
	var overrides []models.Override
	q := h.db.NewSelect().Model(&overrides).OrderExpr("ov.stage, ov.rider_id, ov.id")

	if s := c.QueryParam("stage"); s != "" {
		stage, err := strconv.Atoi(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid stage param")
		}
		q = q.Where("ov.stage = ?", stage)
	}

	if err := q.Scan(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, overrides)
}
