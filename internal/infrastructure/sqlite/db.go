package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection shared by the listing and claim repos.
type DB struct {
	conn *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
// A single connection is kept open: SQLite serialises writers anyway, and it
// keeps conditional claim updates strictly ordered.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Timestamps are stored as unix milliseconds so range filters compare numerically.
// expires_at mirrors ready_until at write time for query convenience.
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS listings (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		food_type TEXT NOT NULL DEFAULT 'VEG',
		portions INTEGER NOT NULL CHECK (portions >= 0),
		pincode TEXT NOT NULL,
		lat REAL,
		lng REAL,
		cooking_time INTEGER NOT NULL,
		ready_until INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		allergens TEXT NOT NULL DEFAULT '[]',
		tags TEXT NOT NULL DEFAULT '[]',
		hygiene_ack INTEGER NOT NULL DEFAULT 0,
		photo_url TEXT,
		donor_name TEXT NOT NULL DEFAULT '',
		donor_phone TEXT NOT NULL DEFAULT '',
		donor_email TEXT NOT NULL DEFAULT '',
		donor_address TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		CHECK (ready_until > cooking_time)
	);

	CREATE TABLE IF NOT EXISTS claims (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		listing_id TEXT NOT NULL,
		listing_title TEXT NOT NULL DEFAULT '',
		requester_name TEXT NOT NULL DEFAULT '',
		requester_phone TEXT NOT NULL DEFAULT '',
		donor_phone TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL CHECK (quantity >= 1),
		status TEXT NOT NULL DEFAULT 'requested',
		otp TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_listings_expires_at ON listings(expires_at);
	CREATE INDEX IF NOT EXISTS idx_listings_title ON listings(title);
	CREATE INDEX IF NOT EXISTS idx_claims_listing_id ON claims(listing_id);
	CREATE INDEX IF NOT EXISTS idx_claims_donor_phone ON claims(donor_phone);
	CREATE INDEX IF NOT EXISTS idx_claims_requester_phone ON claims(requester_phone);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
