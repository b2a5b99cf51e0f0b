package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nutribridge-api/internal/domain"
)

const listingColumns = `id, title, description, food_type, portions, pincode, lat, lng,
	cooking_time, ready_until, expires_at, allergens, tags, hygiene_ack, photo_url,
	donor_name, donor_phone, donor_email, donor_address, created_at`

// ListingRepo provides typed SQLite operations for the listings table.
type ListingRepo struct {
	db *DB
}

func NewListingRepo(db *DB) *ListingRepo {
	return &ListingRepo{db: db}
}

func (r *ListingRepo) Put(ctx context.Context, l *domain.Listing) error {
	allergens, err := encodeList(l.Allergens)
	if err != nil {
		return fmt.Errorf("encode allergens: %w", err)
	}
	tags, err := encodeList(l.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	_, err = r.db.conn.ExecContext(ctx, `
		INSERT INTO listings (`+listingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ListingID, l.Title, l.Description, l.FoodType, l.Portions, l.Pincode,
		nullFloat(l.Lat), nullFloat(l.Lng),
		toMillis(l.CookingTime), toMillis(l.ReadyUntil), toMillis(l.ReadyUntil),
		allergens, tags, l.HygieneAck, nullString(l.PhotoURL),
		l.Donor.Name, l.Donor.Phone, l.Donor.Email, l.Donor.Address,
		toMillis(l.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (r *ListingRepo) Get(ctx context.Context, listingID string) (*domain.Listing, error) {
	row := r.db.conn.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = ?`, listingID)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("listing not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListLive returns listings whose expires_at is after now, optionally narrowed to
// pincodes containing the given substring, in insertion order.
func (r *ListingRepo) ListLive(ctx context.Context, now time.Time, pincode string) ([]domain.Listing, error) {
	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT `+listingColumns+` FROM listings
		WHERE expires_at > ? AND (? = '' OR instr(pincode, ?) > 0)
		ORDER BY seq`,
		toMillis(now), pincode, pincode,
	)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// FindLiveByTitle returns the oldest live listing with exactly this title.
func (r *ListingRepo) FindLiveByTitle(ctx context.Context, title string, now time.Time) (*domain.Listing, error) {
	row := r.db.conn.QueryRowContext(ctx, `
		SELECT `+listingColumns+` FROM listings
		WHERE title = ? AND expires_at > ?
		ORDER BY seq LIMIT 1`,
		title, toMillis(now),
	)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("listing not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *ListingRepo) SetPhotoURL(ctx context.Context, listingID, url string) error {
	res, err := r.db.conn.ExecContext(ctx, `UPDATE listings SET photo_url = ? WHERE id = ?`, url, listingID)
	if err != nil {
		return fmt.Errorf("update listing photo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("listing not found: %w", domain.ErrNotFound)
	}
	return nil
}

func scanListing(s scanner) (*domain.Listing, error) {
	var (
		l                       domain.Listing
		cooking, ready, expires int64
		created                 int64
		allergens, tags         string
		photo                   sql.NullString
		lat, lng                sql.NullFloat64
	)
	err := s.Scan(
		&l.ListingID, &l.Title, &l.Description, &l.FoodType, &l.Portions, &l.Pincode,
		&lat, &lng, &cooking, &ready, &expires, &allergens, &tags, &l.HygieneAck, &photo,
		&l.Donor.Name, &l.Donor.Phone, &l.Donor.Email, &l.Donor.Address, &created,
	)
	if err != nil {
		return nil, err
	}
	l.CookingTime = fromMillis(cooking)
	l.ReadyUntil = fromMillis(ready)
	l.ExpiresAt = fromMillis(expires)
	l.CreatedAt = fromMillis(created)
	l.PhotoURL = stringPtr(photo)
	l.Lat = floatPtr(lat)
	l.Lng = floatPtr(lng)
	if l.Allergens, err = decodeList(allergens); err != nil {
		return nil, fmt.Errorf("decode allergens: %w", err)
	}
	if l.Tags, err = decodeList(tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return &l, nil
}

// Allergens and tags are persisted as JSON-encoded text.
func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func decodeList(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	err := json.Unmarshal([]byte(s), &out)
	return out, err
}
