// cmd/process/main.go
// Recomputes stage standings and GC tables from the stored raw results
// and writes JSON snapshots for the publishing pipeline. Every run is a
// full, idempotent recomputation.
//
// Usage:
//
//	go run ./cmd/process -out standings
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/eamonmason/kwcc-tdz/config"
	bundb "github.com/eamonmason/kwcc-tdz/db"
	"github.com/eamonmason/kwcc-tdz/engine"
	applog "github.com/eamonmason/kwcc-tdz/logger"
	"github.com/eamonmason/kwcc-tdz/models"
	"github.com/eamonmason/kwcc-tdz/tour"
)

func main() {
	out := flag.String("out", "", "output directory (overrides OUTPUT_DIR)")
	flag.Parse()

	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if *out == "" {
		*out = cfg.OutputDir
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		logger.Fatal("create output dir failed", zap.Error(err))
	}

	tc := tour.Default()
	if cfg.TourFile != "" {
		tc, err = tour.Load(cfg.TourFile)
		if err != nil {
			logger.Fatal("load tour config failed", zap.Error(err))
		}
	}

	db := bundb.Setup(cfg)
	defer db.Close()

	if err := run(context.Background(), db, tc, *out, logger); err != nil {
		logger.Fatal("processing failed", zap.Error(err))
	}
}

func run(ctx context.Context, db *bun.DB, tc *tour.Config, outDir string, logger *zap.Logger) error {
	var riders []models.Rider
	if err := db.NewSelect().Model(&riders).Scan(ctx); err != nil {
		return fmt.Errorf("load riders: %w", err)
	}
	reg := models.NewRegistry(riders)
	logger.Info("registry loaded", zap.Int("riders", reg.Len()))

	now := time.Now().UTC()
	completed := tc.CompletedStageNumbers(now)
	total := len(tc.StageNumbers())
	provisional := len(completed) < total

	allStages := make(map[int][]models.StageResult, len(completed))
	for _, stageNum := range completed {
		stage, err := tc.Stage(stageNum)
		if err != nil {
			return err
		}

		raw, err := loadStageRaw(ctx, db, stageNum)
		if err != nil {
			return fmt.Errorf("load stage %d results: %w", stageNum, err)
		}

		standings, warns, err := engine.ProcessStage(raw, reg, stage, tc, provisional)
		if err != nil {
			return fmt.Errorf("process stage %d: %w", stageNum, err)
		}
		for _, w := range warns {
			logger.Warn("data quality", zap.Int("stage", w.Stage),
				zap.String("rider", w.RiderID), zap.String("reason", w.Reason))
		}

		for group, st := range standings {
			name := fmt.Sprintf("stage_%d_group_%s.json", stageNum, group)
			if err := writeJSON(filepath.Join(outDir, name), st); err != nil {
				return err
			}
			allStages[stageNum] = append(allStages[stageNum], st.Results...)
			logger.Info("stage standings written",
				zap.Int("stage", stageNum), zap.String("group", group),
				zap.Int("results", len(st.Results)))
		}
	}

	updated := now.Format("2006-01-02 15:04 UTC")
	tables := map[string]models.GCStandings{
		"gc_a.json":     engine.GC(allStages, completed, "A", total, provisional),
		"gc_b.json":     engine.GC(allStages, completed, "B", total, provisional),
		"gc_women.json": engine.WomenGC(allStages, completed, total, provisional),
	}
	for name, table := range tables {
		table.LastUpdated = updated
		if err := writeJSON(filepath.Join(outDir, name), table); err != nil {
			return err
		}
		logger.Info("gc written", zap.String("group", table.Group),
			zap.Int("riders", len(table.Standings)))
	}

	return nil
}

func loadStageRaw(ctx context.Context, db *bun.DB, stage int) ([]models.RawResult, error) {
	var raw []models.RawResult
	err := db.NewSelect().Model(&raw).
		Where("rr.stage = ?", stage).
		OrderExpr("rr.id").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	var overrides []models.Override
	err = db.NewSelect().Model(&overrides).
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

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
