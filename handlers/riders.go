package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eamonmason/kwcc-tdz/models"
)

var validGroups = map[string]bool{
	"A1": true, "A2": true, "A3": true,
	"B1": true, "B2": true, "B3": true, "B4": true,
}

type riderUpsert struct {
	RiderID       string `json:"riderID"`
	Name          string `json:"name"`
	HandicapGroup string `json:"handicapGroup"`
	Gender        string `json:"gender"`
	Guest         bool   `json:"guest"`
	RacingScore   *int   `json:"racingScore"`
}

// Riders returns the full rider registry.
func (h *Handler) Riders(c echo.Context) error {
	var riders []models.Rider
	err := h.db.NewSelect().Model(&riders).OrderExpr("rd.name ASC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, riders)
}

// UpsertRiders inserts or updates a batch of riders.
func (h *Handler) UpsertRiders(c echo.Context) error {
	var reqs []riderUpsert
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	riders := make([]models.Rider, 0, len(reqs))
	for _, r := range reqs {
		r.RiderID = strings.TrimSpace(r.RiderID)
		r.Name = strings.TrimSpace(r.Name)
		r.HandicapGroup = strings.ToUpper(strings.TrimSpace(r.HandicapGroup))
		r.Gender = strings.ToUpper(strings.TrimSpace(r.Gender))

		if r.RiderID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "riderID is required")
		}
		if r.Name == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "name is required")
		}
		if r.HandicapGroup != "" && !validGroups[r.HandicapGroup] {
			return echo.NewHTTPError(http.StatusBadRequest, "handicapGroup must be A1-A3 or B1-B4")
		}
		if r.Gender != "" && r.Gender != "F" && r.Gender != "M" {
			return echo.NewHTTPError(http.StatusBadRequest, "gender must be F or M")
		}

		riders = append(riders, models.Rider{
			RiderID:       r.RiderID,
			Name:          r.Name,
			HandicapGroup: r.HandicapGroup,
			Gender:        r.Gender,
			Guest:         r.Guest,
			RacingScore:   r.RacingScore,
		})
	}

	if len(riders) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no riders supplied")
	}

	_, err := h.db.NewInsert().Model(&riders).
		On("CONFLICT (rider_id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("handicap_group = EXCLUDED.handicap_group").
		Set("gender = EXCLUDED.gender").
		Set("guest = EXCLUDED.guest").
		Set("racing_score = EXCLUDED.racing_score").
		Exec(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]int{"upserted": len(riders)})
}
