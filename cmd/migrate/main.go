// cmd/migrate/main.go
// Migrates a previous season's riders and raw results from the legacy
// MySQL tdzData database into the local PostgreSQL database.
//
// Usage:
//
//	MYSQL_DSN="user:pass@tcp(host:3306)/tdzData?parseTime=true" \
//	DB_PASS="pgpass" \
//	go run ./cmd/migrate
package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"

	"github.com/eamonmason/kwcc-tdz/config"
	bundb "github.com/eamonmason/kwcc-tdz/db"
	"github.com/eamonmason/kwcc-tdz/models"
)

const batchSize = 500

func main() {
	ctx := context.Background()

	cfg := config.Load()

	// --- MySQL ---
	if cfg.MySQLDSN == "" {
		log.Fatal("MYSQL_DSN required, e.g.: user:pass@tcp(host:3306)/tdzData?parseTime=true")
	}
	myDB, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("open mysql: %v", err)
	}
	defer myDB.Close()
	myDB.SetMaxOpenConns(4)
	if err := myDB.PingContext(ctx); err != nil {
		log.Fatalf("ping mysql: %v", err)
	}
	log.Println("connected to MySQL")

	// --- PostgreSQL ---
	pgDB := bundb.Setup(cfg)
	defer pgDB.Close()
	log.Println("connected to PostgreSQL")

	// Create tables (idempotent)
	if err := bundb.CreateTables(ctx, pgDB); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	steps := []struct {
		name string
		fn   func() (int, error)
	}{
		{"riders", func() (int, error) { return migrateRiders(ctx, myDB, pgDB) }},
		{"raw_results", func() (int, error) { return migrateResults(ctx, myDB, pgDB) }},
	}

	for _, step := range steps {
		start := time.Now()
		n, err := step.fn()
		if err != nil {
			log.Fatalf("migrate %s: %v", step.name, err)
		}
		log.Printf("migrated %d %s in %s", n, step.name, time.Since(start).Round(time.Millisecond))
	}
}

func migrateRiders(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	rows, err := myDB.QueryContext(ctx,
		`SELECT zwiftpower_id, name, handicap_group, gender, guest, racing_score FROM riders`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var batch []models.Rider
	total := 0
	for rows.Next() {
		var (
			r      models.Rider
			group  sql.NullString
			gender sql.NullString
			score  sql.NullInt64
		)
		if err := rows.Scan(&r.RiderID, &r.Name, &group, &gender, &r.Guest, &score); err != nil {
			return total, err
		}
		r.HandicapGroup = group.String
		r.Gender = gender.String
		if score.Valid {
			n := int(score.Int64)
			r.RacingScore = &n
		}
		batch = append(batch, r)

		if len(batch) >= batchSize {
			n, err := flushRiders(ctx, pgDB, batch)
			total += n
			if err != nil {
				return total, err
			}
			batch = batch[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return total, err
	}
	n, err := flushRiders(ctx, pgDB, batch)
	total += n
	return total, err
}

func flushRiders(ctx context.Context, pgDB *bun.DB, batch []models.Rider) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	_, err := pgDB.NewInsert().Model(&batch).
		On("CONFLICT (rider_id) DO NOTHING").
		Exec(ctx)
	return len(batch), err
}

func migrateResults(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	rows, err := myDB.QueryContext(ctx,
		`SELECT rider_id, stage, event_id, event_name, raw_time_seconds, position, event_start
		 FROM raw_results ORDER BY stage, rider_id`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var batch []models.RawResult
	total := 0
	for rows.Next() {
		var (
			r    models.RawResult
			name sql.NullString
			pos  sql.NullInt64
		)
		if err := rows.Scan(&r.RiderID, &r.Stage, &r.EventID, &name, &r.RawTimeSeconds, &pos, &r.EventStart); err != nil {
			return total, err
		}
		r.EventName = name.String
		r.Position = int(pos.Int64)
		batch = append(batch, r)

		if len(batch) >= batchSize {
			n, err := flushResults(ctx, pgDB, batch)
			total += n
			if err != nil {
				return total, err
			}
			batch = batch[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return total, err
	}
	n, err := flushResults(ctx, pgDB, batch)
	total += n
	return total, err
}

func flushResults(ctx context.Context, pgDB *bun.DB, batch []models.RawResult) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	_, err := pgDB.NewInsert().Model(&batch).
		On("CONFLICT (rider_id, stage, event_id) DO NOTHING").
		Exec(ctx)
	return len(batch), err
}
