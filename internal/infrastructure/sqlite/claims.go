package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nutribridge-api/internal/domain"
)

const claimColumns = `id, listing_id, listing_title, requester_name, requester_phone,
	donor_phone, quantity, status, otp, created_at, updated_at`

// ClaimRepo provides typed SQLite operations for the claims table.
type ClaimRepo struct {
	db *DB
}

func NewClaimRepo(db *DB) *ClaimRepo {
	return &ClaimRepo{db: db}
}

func (r *ClaimRepo) Put(ctx context.Context, c *domain.Claim) error {
	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO claims (`+claimColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ClaimID, c.ListingID, c.ListingTitle, c.RequesterName, c.RequesterPhone,
		c.DonorPhone, c.Quantity, c.Status, nullString(c.OTP),
		toMillis(c.CreatedAt), toMillis(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (r *ClaimRepo) Get(ctx context.Context, claimID string) (*domain.Claim, error) {
	row := r.db.conn.QueryRowContext(ctx, `SELECT `+claimColumns+` FROM claims WHERE id = ?`, claimID)
	c, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("claim not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Transition moves a claim from one status to another and sets its code in a
// single conditional update. It returns ErrConflict when the stored status is
// no longer from, so two racing acceptances cannot both write a code.
func (r *ClaimRepo) Transition(ctx context.Context, claimID string, from, to domain.ClaimStatus, otp *string, at time.Time) error {
	res, err := r.db.conn.ExecContext(ctx, `
		UPDATE claims SET status = ?, otp = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		to, nullString(otp), toMillis(at), claimID, from,
	)
	if err != nil {
		return fmt.Errorf("update claim status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists int
	err = r.db.conn.QueryRowContext(ctx, `SELECT 1 FROM claims WHERE id = ?`, claimID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("claim not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("claim %s is not %s: %w", claimID, from, domain.ErrConflict)
}

func (r *ClaimRepo) ListByListing(ctx context.Context, listingID string) ([]domain.Claim, error) {
	return r.list(ctx, `listing_id = ?`, listingID)
}

func (r *ClaimRepo) ListByDonorPhone(ctx context.Context, phone string) ([]domain.Claim, error) {
	return r.list(ctx, `donor_phone = ?`, phone)
}

func (r *ClaimRepo) ListByRequesterPhone(ctx context.Context, phone string) ([]domain.Claim, error) {
	return r.list(ctx, `requester_phone = ?`, phone)
}

func (r *ClaimRepo) list(ctx context.Context, where string, arg any) ([]domain.Claim, error) {
	rows, err := r.db.conn.QueryContext(ctx, `SELECT `+claimColumns+` FROM claims WHERE `+where+` ORDER BY seq`, arg)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	var out []domain.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanClaim(s scanner) (*domain.Claim, error) {
	var (
		c                domain.Claim
		otp              sql.NullString
		created, updated int64
	)
	err := s.Scan(
		&c.ClaimID, &c.ListingID, &c.ListingTitle, &c.RequesterName, &c.RequesterPhone,
		&c.DonorPhone, &c.Quantity, &c.Status, &otp, &created, &updated,
	)
	if err != nil {
		return nil, err
	}
	c.OTP = stringPtr(otp)
	c.CreatedAt = fromMillis(created)
	c.UpdatedAt = fromMillis(updated)
	return &c, nil
}
