package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mzielinski/imgw-weather/internal/imgw"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS observations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    id_stacji TEXT NOT NULL,
    stacja TEXT NOT NULL,
    data_pomiaru TEXT NOT NULL,
    godzina_pomiaru TEXT NOT NULL,
    temperatura TEXT,
    predkosc_wiatru TEXT,
    kierunek_wiatru TEXT,
    wilgotnosc_wzgledna TEXT,
    suma_opadu TEXT,
    cisnienie TEXT,
    inserted_at TEXT NOT NULL,
    UNIQUE(id_stacji, data_pomiaru, godzina_pomiaru)
);

CREATE TABLE IF NOT EXISTS ingestion_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT NOT NULL,
    status TEXT NOT NULL,
    records_count INTEGER NOT NULL,
    error_message TEXT
);
`

const upsertObservationSQL = `
INSERT INTO observations (
    id_stacji, stacja, data_pomiaru, godzina_pomiaru,
    temperatura, predkosc_wiatru, kierunek_wiatru,
    wilgotnosc_wzgledna, suma_opadu, cisnienie, inserted_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id_stacji, data_pomiaru, godzina_pomiaru) DO UPDATE SET
    stacja = excluded.stacja,
    temperatura = excluded.temperatura,
    predkosc_wiatru = excluded.predkosc_wiatru,
    kierunek_wiatru = excluded.kierunek_wiatru,
    wilgotnosc_wzgledna = excluded.wilgotnosc_wzgledna,
    suma_opadu = excluded.suma_opadu,
    cisnienie = excluded.cisnienie,
    inserted_at = excluded.inserted_at`

// latestPerStationSQL selects, for every station, the row whose
// concatenated date+hour is the greatest. Lexicographic order on the
// concatenation equals chronological order because the feed uses
// zero-padded ISO-like formats; that ordering is intentional and load-bearing.
const latestPerStationSQL = `
SELECT o.id_stacji, o.stacja, o.data_pomiaru, o.godzina_pomiaru,
       o.temperatura, o.predkosc_wiatru, o.kierunek_wiatru,
       o.wilgotnosc_wzgledna, o.suma_opadu, o.cisnienie
FROM observations o
JOIN (
    SELECT id_stacji, MAX(data_pomiaru || godzina_pomiaru) AS latest_key
    FROM observations
    GROUP BY id_stacji
) latest ON o.id_stacji = latest.id_stacji
        AND o.data_pomiaru || o.godzina_pomiaru = latest.latest_key
ORDER BY o.stacja
LIMIT ?`

const historicalSQL = `
SELECT id_stacji, stacja, data_pomiaru, godzina_pomiaru,
       temperatura, predkosc_wiatru, kierunek_wiatru,
       wilgotnosc_wzgledna, suma_opadu, cisnienie
FROM observations
WHERE data_pomiaru >= ?
ORDER BY data_pomiaru DESC, godzina_pomiaru DESC`

// SQLiteStore implements imgw.ObservationStore on a local SQLite file using
// the pure Go modernc.org/sqlite driver.
type SQLiteStore struct {
	db    *sql.DB
	clock clockwork.Clock
	log   *slog.Logger
}

// compile-time interface check
var _ imgw.ObservationStore = (*SQLiteStore)(nil)

// New opens (or creates) the database at path and applies the schema.
// Schema creation is idempotent and safe to run on every process start.
func New(path string, clock clockwork.Clock, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	// A single connection sidesteps SQLITE_BUSY between the scheduler's
	// writes and concurrent request reads.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		logger.Warn("could not enable WAL mode", "error", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}

	return &SQLiteStore{db: db, clock: clock, log: logger}, nil
}

// UpsertBatch writes a batch of observations, one row per natural key.
// Records missing a key field are skipped, and a failing row never aborts
// the rest of the batch. Returns the number of rows inserted or replaced.
func (s *SQLiteStore) UpsertBatch(ctx context.Context, records []imgw.Observation) int {
	insertedAt := s.clock.Now().UTC().Format(time.RFC3339)

	count := 0
	for _, rec := range records {
		if reason := rec.SkipReason(); reason != "" {
			s.log.Warn("skipping observation", "reason", reason, "station", rec.StationName)
			continue
		}

		_, err := s.db.ExecContext(ctx, upsertObservationSQL,
			rec.StationID, rec.StationName, rec.Date, rec.Hour,
			rec.Temperature, rec.WindSpeed, rec.WindDir,
			rec.Humidity, rec.Precip, rec.Pressure, insertedAt,
		)
		if err != nil {
			s.log.Error("upsert observation failed", "station", rec.StationID, "error", err)
			continue
		}
		count++
	}

	return count
}

// LatestPerStation returns at most one row per station, ordered by station
// name, capped at limit.
func (s *SQLiteStore) LatestPerStation(ctx context.Context, limit int) []imgw.Observation {
	rows, err := s.db.QueryContext(ctx, latestPerStationSQL, limit)
	if err != nil {
		s.log.Error("latest-per-station query failed", "error", err)
		return nil
	}
	defer rows.Close()

	return s.scanObservations(rows)
}

// Historical returns observations with a measurement date within the last
// daysBack days, newest first.
func (s *SQLiteStore) Historical(ctx context.Context, daysBack int) []imgw.Observation {
	cutoff := s.clock.Now().UTC().AddDate(0, 0, -daysBack).Format("2006-01-02")

	rows, err := s.db.QueryContext(ctx, historicalSQL, cutoff)
	if err != nil {
		s.log.Error("historical query failed", "error", err)
		return nil
	}
	defer rows.Close()

	return s.scanObservations(rows)
}

// RecordCount returns the total number of stored observations.
func (s *SQLiteStore) RecordCount(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM observations`).Scan(&n); err != nil {
		s.log.Error("record count query failed", "error", err)
		return 0
	}
	return n
}

// DistinctStationCount returns the number of distinct stations seen so far.
func (s *SQLiteStore) DistinctStationCount(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT id_stacji) FROM observations`).Scan(&n); err != nil {
		s.log.Error("station count query failed", "error", err)
		return 0
	}
	return n
}

// LatestTimestamp returns the greatest "date hour" across all rows, or an
// empty string when the store holds no data.
func (s *SQLiteStore) LatestTimestamp(ctx context.Context) string {
	var ts sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MAX(data_pomiaru || ' ' || godzina_pomiaru) FROM observations`).Scan(&ts)
	if err != nil {
		s.log.Error("latest timestamp query failed", "error", err)
		return ""
	}
	if !ts.Valid {
		return ""
	}
	return ts.String
}

// RecordIngestion appends one fetch outcome to the ingestion log.
// Fire-and-forget: a failed append is only logged, never raised.
func (s *SQLiteStore) RecordIngestion(ctx context.Context, status imgw.IngestionStatus, count int, errDetail string) {
	var detail sql.NullString
	if errDetail != "" {
		detail = sql.NullString{String: errDetail, Valid: true}
	}

	ts := s.clock.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingestion_log (timestamp, status, records_count, error_message) VALUES (?, ?, ?, ?)`,
		ts, string(status), count, detail,
	)
	if err != nil {
		s.log.Error("ingestion log append failed", "error", err)
	}
}

// IngestionStatsSince returns per-status counts of fetch attempts newer
// than cutoff.
func (s *SQLiteStore) IngestionStatsSince(ctx context.Context, cutoff time.Time) map[string]int {
	stats := make(map[string]int)

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM ingestion_log WHERE timestamp > ? GROUP BY status`,
		cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		s.log.Error("ingestion stats query failed", "error", err)
		return stats
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			s.log.Error("ingestion stats scan failed", "error", err)
			return stats
		}
		stats[status] = n
	}
	if err := rows.Err(); err != nil {
		s.log.Error("ingestion stats rows failed", "error", err)
	}
	return stats
}

// HealthStats returns the observation count, surfacing storage faults to
// the caller. The health endpoint needs a real error, unlike the regular
// read paths which degrade to empty results.
func (s *SQLiteStore) HealthStats(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM observations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: health check: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) scanObservations(rows *sql.Rows) []imgw.Observation {
	var out []imgw.Observation
	for rows.Next() {
		var o imgw.Observation
		err := rows.Scan(
			&o.StationID, &o.StationName, &o.Date, &o.Hour,
			&o.Temperature, &o.WindSpeed, &o.WindDir,
			&o.Humidity, &o.Precip, &o.Pressure,
		)
		if err != nil {
			s.log.Error("observation scan failed", "error", err)
			return out
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		s.log.Error("observation rows failed", "error", err)
	}
	return out
}
