// cmd/importriders/main.go
// Imports the rider sign-up sheet (CSV export) into the database.
//
// Expected columns: Name, ZwiftPower ID, Handicap Group, Gender,
// ZP Racing Score (optional), Guest (optional, Y/N). Rows missing a
// name, ID or valid handicap group are skipped.
//
// Usage:
//
//	RIDERS_CSV=riders.csv go run ./cmd/importriders
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/eamonmason/kwcc-tdz/config"
	bundb "github.com/eamonmason/kwcc-tdz/db"
	"github.com/eamonmason/kwcc-tdz/models"
)

var validGroups = map[string]bool{
	"A1": true, "A2": true, "A3": true,
	"B1": true, "B2": true, "B3": true, "B4": true,
}

func main() {
	path := flag.String("csv", "", "rider sheet CSV (overrides RIDERS_CSV)")
	flag.Parse()

	cfg := config.Load()
	if *path == "" {
		*path = cfg.RidersCSV
	}
	if *path == "" {
		log.Fatal("rider CSV path required: -csv flag or RIDERS_CSV")
	}

	riders, skipped, err := loadRiders(*path)
	if err != nil {
		log.Fatal(err)
	}
	if len(riders) == 0 {
		log.Fatal("no valid riders in sheet")
	}

	db := bundb.Setup(cfg)
	defer db.Close()

	ctx := context.Background()
	if err := bundb.CreateTables(ctx, db); err != nil {
		log.Fatal("create tables:", err)
	}

	_, err = db.NewInsert().Model(&riders).
		On("CONFLICT (rider_id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("handicap_group = EXCLUDED.handicap_group").
		Set("gender = EXCLUDED.gender").
		Set("guest = EXCLUDED.guest").
		Set("racing_score = EXCLUDED.racing_score").
		Exec(ctx)
	if err != nil {
		log.Fatal("insert riders:", err)
	}

	fmt.Printf("imported %d riders (%d rows skipped)\n", len(riders), skipped)
}

func loadRiders(path string) ([]models.Rider, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open rider sheet: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		riders  []models.Rider
		skipped int
	)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read row: %w", err)
		}

		name := field(row, "name")
		riderID := field(row, "zwiftpower id")
		group := strings.ToUpper(field(row, "handicap group"))
		if name == "" || riderID == "" || !validGroups[group] {
			skipped++
			continue
		}

		rider := models.Rider{
			RiderID:       riderID,
			Name:          name,
			HandicapGroup: group,
			Gender:        strings.ToUpper(field(row, "gender")),
			Guest:         strings.EqualFold(field(row, "guest"), "y"),
		}
		if score := field(row, "zp racing score"); score != "" && !strings.EqualFold(score, "tbc") {
			if n, err := strconv.Atoi(score); err == nil {
				rider.RacingScore = &n
			}
		}
		riders = append(riders, rider)
	}
	return riders, skipped, nil
}
