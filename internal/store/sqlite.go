package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"city-events-pipeline/internal/models"
)

// SQLiteStore implements EventStore on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initializes) a SQLite event store
// with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	iso_date TEXT NOT NULL,
	venue_name TEXT NOT NULL,
	venue_address TEXT,
	city TEXT,
	region TEXT NOT NULL,
	source_url TEXT,
	image_url TEXT,
	source_name TEXT,
	categories TEXT,
	curated INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_events_region_date ON events(region, iso_date);
CREATE INDEX IF NOT EXISTS idx_events_city ON events(city);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertEvents writes events in one transaction, keyed by ID.
func (s *SQLiteStore) UpsertEvents(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO events (id, title, iso_date, venue_name, venue_address, city, region,
	source_url, image_url, source_name, categories, curated, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
ON CONFLICT(id) DO UPDATE SET
	title=excluded.title,
	iso_date=excluded.iso_date,
	venue_name=excluded.venue_name,
	venue_address=excluded.venue_address,
	city=excluded.city,
	region=excluded.region,
	source_url=excluded.source_url,
	image_url=excluded.image_url,
	source_name=excluded.source_name,
	categories=excluded.categories,
	curated=excluded.curated,
	updated_at=datetime('now')`

	for _, e := range events {
		categories, err := json.Marshal(e.Categories)
		if err != nil {
			return fmt.Errorf("marshaling categories for %s: %w", e.ID, err)
		}
		if _, err := tx.ExecContext(ctx, stmt,
			e.ID, e.Title, e.ISODate, e.Venue.Name, e.Venue.Address, e.Venue.City,
			e.Region, e.SourceURL, e.ImageURL, e.SourceName, string(categories),
			boolToInt(e.Curated),
		); err != nil {
			return fmt.Errorf("upserting event %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// QueryEvents returns one page of matching events plus the total match
// count, ordered by date then title.
func (s *SQLiteStore) QueryEvents(ctx context.Context, filter Filter) ([]models.Event, int, error) {
	where, args := buildWhere(filter)

	var total int
	countQuery := "SELECT COUNT(*) FROM events" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting events: %w", err)
	}

	query := `SELECT id, title, iso_date, venue_name, venue_address, city, region,
	source_url, image_url, source_name, categories, curated FROM events` + where +
		" ORDER BY iso_date, title"
	if filter.Limit > 0 {
		pageNum := filter.Page
		if pageNum < 1 {
			pageNum = 1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, (pageNum-1)*filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		var categories string
		var curated int
		if err := rows.Scan(&e.ID, &e.Title, &e.ISODate, &e.Venue.Name, &e.Venue.Address,
			&e.Venue.City, &e.Region, &e.SourceURL, &e.ImageURL, &e.SourceName,
			&categories, &curated); err != nil {
			return nil, 0, fmt.Errorf("scanning event row: %w", err)
		}
		if categories != "" {
			if err := json.Unmarshal([]byte(categories), &e.Categories); err != nil {
				return nil, 0, fmt.Errorf("unmarshaling categories for %s: %w", e.ID, err)
			}
		}
		e.Curated = curated != 0
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// DeleteByRegion removes every event for a region; used before
// replacing a region's data wholesale.
func (s *SQLiteStore) DeleteByRegion(ctx context.Context, region string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE region = ?", region); err != nil {
		return fmt.Errorf("deleting events for region %s: %w", region, err)
	}
	return nil
}

func buildWhere(filter Filter) (string, []any) {
	var clauses []string
	var args []any

	if filter.Region != "" {
		clauses = append(clauses, "region = ?")
		args = append(args, filter.Region)
	}
	if filter.City != "" {
		clauses = append(clauses, "city = ? COLLATE NOCASE")
		args = append(args, filter.City)
	}
	if filter.DateFrom != "" {
		clauses = append(clauses, "iso_date >= ?")
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		clauses = append(clauses, "iso_date <= ?")
		args = append(args, filter.DateTo)
	}
	if filter.Query != "" {
		clauses = append(clauses, "title LIKE ? COLLATE NOCASE")
		args = append(args, "%"+filter.Query+"%")
	}
	if filter.Venue != "" {
		clauses = append(clauses, "venue_name LIKE ? COLLATE NOCASE")
		args = append(args, "%"+filter.Venue+"%")
	}
	if filter.Category != "" {
		// Categories are stored as a JSON array of strings.
		clauses = append(clauses, `categories LIKE ? COLLATE NOCASE`)
		args = append(args, `%"`+filter.Category+`"%`)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
