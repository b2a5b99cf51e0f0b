package claim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nutribridge-api/internal/domain"
	"github.com/nutribridge-api/internal/pkg/clock"
	"github.com/nutribridge-api/internal/pkg/id"
	"github.com/nutribridge-api/internal/pkg/otp"
	"github.com/nutribridge-api/internal/pkg/phone"
	"github.com/nutribridge-api/internal/pkg/validate"
)

// Service is the claim ledger: the single record of every claim, from which the
// donor inbox and the requester's list are both projected.
type Service interface {
	Create(ctx context.Context, req domain.CreateClaimRequest) (*domain.Claim, error)
	SetStatus(ctx context.Context, claimID string, to domain.ClaimStatus) (*domain.Claim, error)
	Accept(ctx context.Context, claimID string) (*domain.Claim, error)
	Reject(ctx context.Context, claimID string) (*domain.Claim, error)
	Verify(ctx context.Context, claimID, code string) (*domain.Claim, error)
	Get(ctx context.Context, claimID string) (*domain.Claim, error)
	DonorInbox(ctx context.Context, donorPhone string) ([]domain.Claim, error)
	RequesterClaims(ctx context.Context, requesterPhone string) ([]domain.Claim, error)
	ListingClaims(ctx context.Context, listingID string) ([]domain.Claim, error)
	Committed(ctx context.Context, listingID string) (int, error)
}

type claimStore interface {
	Put(ctx context.Context, c *domain.Claim) error
	Get(ctx context.Context, claimID string) (*domain.Claim, error)
	Transition(ctx context.Context, claimID string, from, to domain.ClaimStatus, code *string, at time.Time) error
	ListByListing(ctx context.Context, listingID string) ([]domain.Claim, error)
	ListByDonorPhone(ctx context.Context, phone string) ([]domain.Claim, error)
	ListByRequesterPhone(ctx context.Context, phone string) ([]domain.Claim, error)
}

type listingResolver interface {
	Resolve(ctx context.Context, ref domain.ListingRef) (*domain.Listing, error)
}

type notifier interface {
	ClaimCreated(ctx context.Context, l *domain.Listing, c *domain.Claim)
	ClaimStatusChanged(ctx context.Context, c *domain.Claim)
}

type service struct {
	repo     claimStore
	listings listingResolver
	notify   notifier
	codes    otp.Generator
	clock    clock.Clock
}

type ServiceDeps struct {
	ClaimRepo claimStore
	Listings  listingResolver
	Notifier  notifier // optional
	Codes     otp.Generator
	Clock     clock.Clock
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:     deps.ClaimRepo,
		listings: deps.Listings,
		notify:   deps.Notifier,
		codes:    deps.Codes,
		clock:    deps.Clock,
	}
	if s.codes == nil {
		s.codes = otp.Random()
	}
	if s.clock == nil {
		s.clock = clock.NewSystem()
	}
	return s
}

func (s *service) Create(ctx context.Context, req domain.CreateClaimRequest) (*domain.Claim, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrValidation)
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", domain.ErrValidation)
	}

	l, err := s.listings.Resolve(ctx, domain.ListingRef{ID: req.ListingID, Title: req.ListingTitle})
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if l.Expired(now) {
		return nil, fmt.Errorf("listing %s has expired: %w", l.ListingID, domain.ErrValidation)
	}
	remaining, err := s.remaining(ctx, l)
	if err != nil {
		return nil, err
	}
	if qty > remaining {
		return nil, fmt.Errorf("requested %d portions but only %d remain: %w", qty, remaining, domain.ErrValidation)
	}

	c := &domain.Claim{
		ClaimID:        id.New(),
		ListingID:      l.ListingID,
		ListingTitle:   l.Title,
		RequesterName:  strings.TrimSpace(req.RequesterName),
		RequesterPhone: phone.Digits(req.RequesterPhone),
		DonorPhone:     phone.Digits(l.Donor.Phone),
		Quantity:       qty,
		Status:         domain.ClaimRequested,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}
	if s.notify != nil {
		s.notify.ClaimCreated(ctx, l, c)
	}
	return c, nil
}

// SetStatus applies a donor decision. Accepting mints a fresh pickup code and
// rejecting clears any code; both are written with a compare-and-set on the
// status the claim was read in.
func (s *service) SetStatus(ctx context.Context, claimID string, to domain.ClaimStatus) (*domain.Claim, error) {
	c, err := s.repo.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !c.Status.CanTransition(to) {
		return nil, fmt.Errorf("cannot move claim from %s to %s: %w", c.Status, to, domain.ErrInvalidTransition)
	}

	var code *string
	if to == domain.ClaimAccepted {
		l, err := s.listings.Resolve(ctx, domain.ListingRef{ID: c.ListingID})
		if err != nil {
			return nil, err
		}
		remaining, err := s.remaining(ctx, l)
		if err != nil {
			return nil, err
		}
		if c.Quantity > remaining {
			return nil, fmt.Errorf("claim needs %d portions but only %d remain: %w", c.Quantity, remaining, domain.ErrValidation)
		}
		fresh := s.codes.New()
		code = &fresh
	}

	now := s.clock.Now()
	if err := s.repo.Transition(ctx, claimID, c.Status, to, code, now); err != nil {
		return nil, err
	}
	c.Status = to
	c.OTP = code
	c.UpdatedAt = now
	if s.notify != nil {
		s.notify.ClaimStatusChanged(ctx, c)
	}
	return c, nil
}

func (s *service) Accept(ctx context.Context, claimID string) (*domain.Claim, error) {
	return s.SetStatus(ctx, claimID, domain.ClaimAccepted)
}

func (s *service) Reject(ctx context.Context, claimID string) (*domain.Claim, error) {
	return s.SetStatus(ctx, claimID, domain.ClaimRejected)
}

// Verify completes an accepted claim when code matches its pickup code exactly.
// A wrong code changes nothing and may be retried.
func (s *service) Verify(ctx context.Context, claimID, code string) (*domain.Claim, error) {
	c, err := s.repo.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	switch c.Status {
	case domain.ClaimCompleted:
		return nil, fmt.Errorf("claim %s: %w", claimID, domain.ErrAlreadyCompleted)
	case domain.ClaimAccepted:
	default:
		return nil, fmt.Errorf("claim %s is %s: %w", claimID, c.Status, domain.ErrInvalidTransition)
	}
	if c.OTP == nil || *c.OTP != code {
		return nil, fmt.Errorf("claim %s: %w", claimID, domain.ErrVerificationMismatch)
	}

	now := s.clock.Now()
	err = s.repo.Transition(ctx, claimID, domain.ClaimAccepted, domain.ClaimCompleted, c.OTP, now)
	if errors.Is(err, domain.ErrConflict) {
		// Lost a race: report what the winner left behind.
		cur, getErr := s.repo.Get(ctx, claimID)
		if getErr == nil && cur.Status == domain.ClaimCompleted {
			return nil, fmt.Errorf("claim %s: %w", claimID, domain.ErrAlreadyCompleted)
		}
		return nil, fmt.Errorf("claim %s changed during verification: %w", claimID, domain.ErrInvalidTransition)
	}
	if err != nil {
		return nil, err
	}
	c.Status = domain.ClaimCompleted
	c.UpdatedAt = now
	return c, nil
}

func (s *service) Get(ctx context.Context, claimID string) (*domain.Claim, error) {
	return s.repo.Get(ctx, claimID)
}

func (s *service) DonorInbox(ctx context.Context, donorPhone string) ([]domain.Claim, error) {
	key, err := phoneKey(donorPhone)
	if err != nil {
		return nil, err
	}
	return orEmpty(s.repo.ListByDonorPhone(ctx, key))
}

func (s *service) RequesterClaims(ctx context.Context, requesterPhone string) ([]domain.Claim, error) {
	key, err := phoneKey(requesterPhone)
	if err != nil {
		return nil, err
	}
	return orEmpty(s.repo.ListByRequesterPhone(ctx, key))
}

func (s *service) ListingClaims(ctx context.Context, listingID string) ([]domain.Claim, error) {
	return orEmpty(s.repo.ListByListing(ctx, listingID))
}

func (s *service) Committed(ctx context.Context, listingID string) (int, error) {
	claims, err := s.repo.ListByListing(ctx, listingID)
	if err != nil {
		return 0, err
	}
	return domain.Committed(claims), nil
}

func (s *service) remaining(ctx context.Context, l *domain.Listing) (int, error) {
	committed, err := s.Committed(ctx, l.ListingID)
	if err != nil {
		return 0, err
	}
	return l.Portions - committed, nil
}

func phoneKey(raw string) (string, error) {
	key := phone.Digits(raw)
	if key == "" {
		return "", fmt.Errorf("phone must contain digits: %w", domain.ErrValidation)
	}
	return key, nil
}

func orEmpty(claims []domain.Claim, err error) ([]domain.Claim, error) {
	if err != nil {
		return nil, err
	}
	if claims == nil {
		claims = []domain.Claim{}
	}
	return claims, nil
}
