package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store is an append-only log of play records backed by SQLite
type Store struct {
	db *sql.DB
}

// YearCount pairs a calendar year with the number of plays recorded in it
type YearCount struct {
	Year  int
	Plays int
}

// Open opens (creating if necessary) the play history database
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer, single reader: one connection keeps in-memory databases
	// consistent and is plenty for this workload
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS plays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			artist TEXT NOT NULL DEFAULT '',
			album TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			track_number INTEGER NOT NULL DEFAULT 0,
			album_track_count INTEGER NOT NULL DEFAULT 0,
			duration_seconds INTEGER NOT NULL,
			source_id TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);

		CREATE INDEX IF NOT EXISTS idx_plays_timestamp ON plays(timestamp);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Add appends a play record and returns its id
func (s *Store) Add(ctx context.Context, rec PlayRecord) (int64, error) {
	query := `
		INSERT INTO plays (timestamp, artist, album, title, track_number, album_track_count, duration_seconds, source_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		rec.Timestamp.Unix(),
		rec.Artist,
		rec.Album,
		rec.Title,
		rec.TrackNumber,
		rec.AlbumTrackCount,
		int64(rec.DurationListened.Seconds()),
		rec.SourceID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert play: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}

	return id, nil
}

// PlaysForYear returns all plays whose timestamp falls in the given calendar
// year (local time), ordered chronologically
func (s *Store) PlaysForYear(ctx context.Context, year int) ([]PlayRecord, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(1, 0, 0)

	query := `
		SELECT id, timestamp, artist, album, title, track_number, album_track_count, duration_seconds, source_id
		FROM plays
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC
	`

	rows, err := s.db.QueryContext(ctx, query, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	return scanPlays(rows)
}

// Recent returns the most recent plays, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]PlayRecord, error) {
	query := `
		SELECT id, timestamp, artist, album, title, track_number, album_track_count, duration_seconds, source_id
		FROM plays
		ORDER BY timestamp DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent plays: %w", err)
	}
	defer rows.Close()

	return scanPlays(rows)
}

// Years returns every calendar year that has at least one play, most recent
// first, with per-year play counts
func (s *Store) Years(ctx context.Context) ([]YearCount, error) {
	query := `
		SELECT CAST(strftime('%Y', timestamp, 'unixepoch', 'localtime') AS INTEGER) AS year, COUNT(*)
		FROM plays
		GROUP BY year
		ORDER BY year DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query years: %w", err)
	}
	defer rows.Close()

	var years []YearCount
	for rows.Next() {
		var yc YearCount
		if err := rows.Scan(&yc.Year, &yc.Plays); err != nil {
			return nil, fmt.Errorf("failed to scan year: %w", err)
		}
		years = append(years, yc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating years: %w", err)
	}

	return years, nil
}

// Count returns the total number of plays in the store
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM plays").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count plays: %w", err)
	}
	return count, nil
}

func scanPlays(rows *sql.Rows) ([]PlayRecord, error) {
	var plays []PlayRecord
	for rows.Next() {
		var rec PlayRecord
		var timestampUnix, durationSecs int64

		err := rows.Scan(
			&rec.ID,
			&timestampUnix,
			&rec.Artist,
			&rec.Album,
			&rec.Title,
			&rec.TrackNumber,
			&rec.AlbumTrackCount,
			&durationSecs,
			&rec.SourceID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}

		rec.Timestamp = time.Unix(timestampUnix, 0)
		rec.DurationListened = time.Duration(durationSecs) * time.Second

		plays = append(plays, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plays: %w", err)
	}

	return plays, nil
}
