package uavledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

// sqliteStore is a local ObjectStore keeping full version history in SQLite.
// It stands in for the versioned S3 bucket in development and tests.
type sqliteStore struct{ db *sql.DB }

// OpenSQLiteStore opens/creates the version-history database and ensures
// schema + PRAGMAs.
func OpenSQLiteStore(dsn string) (ObjectStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, p := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=FULL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", p, err)
		}
	}
	schema := `
CREATE TABLE IF NOT EXISTS versions (
  id        INTEGER PRIMARY KEY AUTOINCREMENT,
  flight_id TEXT    NOT NULL,
  observed  INTEGER NOT NULL,   -- unix nanos
  body      BLOB    NOT NULL
);
CREATE INDEX IF NOT EXISTS versions_flight ON versions(flight_id, observed, id);
`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) ListFlights(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT flight_id FROM versions ORDER BY flight_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flights []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		flights = append(flights, id)
	}
	return flights, rows.Err()
}

func (s *sqliteStore) ListVersions(ctx context.Context, flightID string) ([]VersionInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, observed, length(body) FROM versions WHERE flight_id = ? ORDER BY observed, id",
		flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []VersionInfo
	for rows.Next() {
		var id, observed, size int64
		if err := rows.Scan(&id, &observed, &size); err != nil {
			return nil, err
		}
		infos = append(infos, VersionInfo{
			VersionID:  strconv.FormatInt(id, 10),
			ObservedAt: time.Unix(0, observed).UTC(),
			Size:       size,
		})
	}
	return infos, rows.Err()
}

func (s *sqliteStore) GetVersionBody(ctx context.Context, flightID, versionID string) ([]byte, error) {
	id, err := strconv.ParseInt(versionID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad version id %q: %w", versionID, err)
	}
	var body []byte
	err = s.db.QueryRowContext(ctx,
		"SELECT body FROM versions WHERE flight_id = ? AND id = ?",
		flightID, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("version %s of flight %s not found", versionID, flightID)
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *sqliteStore) PutVersion(ctx context.Context, flightID string, body []byte) (VersionInfo, error) {
	observed := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO versions (flight_id, observed, body) VALUES (?, ?, ?)",
		flightID, observed.UnixNano(), body)
	if err != nil {
		return VersionInfo{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return VersionInfo{}, err
	}
	return VersionInfo{
		VersionID:  strconv.FormatInt(id, 10),
		ObservedAt: observed,
		Size:       int64(len(body)),
	}, nil
}

// Close releases the underlying database handle.
func (s *sqliteStore) Close() error { return s.db.Close() }
