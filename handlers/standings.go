package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eamonmason/kwcc-tdz/engine"
	"github.com/eamonmason/kwcc-tdz/models"
	"github.com/eamonmason/kwcc-tdz/tour"
)

func (h *Handler) loadRegistry(ctx context.Context) (*models.Registry, error) {
	var riders []models.Rider
	if err := h.db.NewSelect().Model(&riders).Scan(ctx); err != nil {
		return nil, err
	}
	return models.NewRegistry(riders), nil
}

// loadStageRaw returns all raw rows for a stage with manual overrides
// appended as manual raw results, so selection sees both populations.
func (h *Handler) loadStageRaw(ctx context.Context, stage int) ([]models.RawResult, error) {
	var raw []models.RawResult
	err := h.db.NewSelect().Model(&raw).
		Where("rr.stage = ?", stage).
		OrderExpr("rr.id").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	var overrides []models.Override
	err = h.db.NewSelect().Model(&overrides).
		Where("ov.stage = ?", stage).
		OrderExpr("ov.id").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	for i := range overrides {
		raw = append(raw, overrides[i].RawResult())
	}
	return raw, nil
}

func (h *Handler) computeStage(ctx context.Context, stageNum int, provisional bool) (map[string]models.StageStandings, engine.Warnings, error) {
	stage, err := h.Tour.Stage(stageNum)
	if err != nil {
		return nil, nil, err
	}
	reg, err := h.loadRegistry(ctx)
	if err != nil {
		return nil, nil, err
	}
	raw, err := h.loadStageRaw(ctx, stageNum)
	if err != nil {
		return nil, nil, err
	}
	return engine.ProcessStage(raw, reg, stage, h.Tour, provisional)
}

// StageStandings computes and returns the standings for one stage,
// optionally narrowed to one category with ?group=A.
func (h *Handler) StageStandings(c echo.Context) error {
	stageNum, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid stage number")
	}

	stage, err := h.Tour.Stage(stageNum)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	provisional := !stage.Complete(time.Now().UTC())

	standings, warns, err := h.computeStage(c.Request().Context(), stageNum, provisional)
	if err != nil {
		var cfgErr *tour.ConfigError
		if errors.As(err, &cfgErr) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, cfgErr.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if group := strings.ToUpper(c.QueryParam("group")); group != "" {
		st, ok := standings[group]
		if !ok {
			st = models.StageStandings{Stage: stageNum, Group: group, Results: []models.StageResult{}}
		}
		return c.JSON(http.StatusOK, map[string]any{
			"standings": st,
			"warnings":  warns,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"standings": standings,
		"warnings":  warns,
	})
}

// GC computes the General Classification. ?group selects A, B or women;
// only stages whose window has ended count, and the table is provisional
// until the whole tour is done.
func (h *Handler) GC(c echo.Context) error {
	group := strings.ToLower(c.QueryParam("group"))
	if group == "" {
		group = "a"
	}
	if group != "a" && group != "b" && group != "women" {
		return echo.NewHTTPError(http.StatusBadRequest, "group must be A, B or women")
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()
	completed := h.Tour.CompletedStageNumbers(now)
	total := len(h.Tour.StageNumbers())
	provisional := len(completed) < total

	allStages := make(map[int][]models.StageResult, len(completed))
	var warns engine.Warnings
	for _, stageNum := range completed {
		standings, w, err := h.computeStage(ctx, stageNum, provisional)
		if err != nil {
			var cfgErr *tour.ConfigError
			if errors.As(err, &cfgErr) {
				return echo.NewHTTPError(http.StatusUnprocessableEntity, cfgErr.Error())
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		warns = append(warns, w...)
		for _, st := range standings {
			allStages[stageNum] = append(allStages[stageNum], st.Results...)
		}
	}

	var table models.GCStandings
	if group == "women" {
		table = engine.WomenGC(allStages, completed, total, provisional)
	} else {
		table = engine.GC(allStages, completed, strings.ToUpper(group), total, provisional)
	}
	table.LastUpdated = now.Format("2006-01-02 15:04 UTC")

	return c.JSON(http.StatusOK, map[string]any{
		"gc":       table,
		"warnings": warns,
	})
}
