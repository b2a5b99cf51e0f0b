package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/nutribridge-api/internal/domain"
	s3infra "github.com/nutribridge-api/internal/infrastructure/s3"
	"github.com/nutribridge-api/internal/pkg/clock"
	"github.com/nutribridge-api/internal/pkg/id"
	"github.com/nutribridge-api/internal/pkg/validate"
)

// localLayout is the HTML datetime-local format donors' browsers submit.
const localLayout = "2006-01-02T15:04"

const photoLinkTTL = 15 * time.Minute

// PhotoInput is a single uploaded listing photo.
type PhotoInput struct {
	ListingID   string
	Reader      io.Reader
	Filename    string
	ContentType string
}

type Service interface {
	Create(ctx context.Context, req domain.CreateListingRequest) (*domain.ListingView, error)
	Get(ctx context.Context, listingID string) (*domain.ListingView, error)
	Feed(ctx context.Context, filter domain.FeedFilter) ([]domain.ListingView, error)
	Resolve(ctx context.Context, ref domain.ListingRef) (*domain.Listing, error)
	AttachPhoto(ctx context.Context, in PhotoInput) (*domain.ListingView, error)
	PhotoLink(ctx context.Context, listingID string) (string, error)
}

type listingStore interface {
	Put(ctx context.Context, l *domain.Listing) error
	Get(ctx context.Context, listingID string) (*domain.Listing, error)
	ListLive(ctx context.Context, now time.Time, pincode string) ([]domain.Listing, error)
	FindLiveByTitle(ctx context.Context, title string, now time.Time) (*domain.Listing, error)
	SetPhotoURL(ctx context.Context, listingID, url string) error
}

type claimLister interface {
	ListByListing(ctx context.Context, listingID string) ([]domain.Claim, error)
}

type photoStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, objectURL string, ttl time.Duration) (string, error)
}

type service struct {
	repo    listingStore
	claims  claimLister
	photos  photoStore
	clock   clock.Clock
	loc     *time.Location
	pending *pendingCache
}

type ServiceDeps struct {
	ListingRepo listingStore
	ClaimRepo   claimLister
	Photos      photoStore // optional
	Clock       clock.Clock
	Location    *time.Location
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:    deps.ListingRepo,
		claims:  deps.ClaimRepo,
		photos:  deps.Photos,
		clock:   deps.Clock,
		loc:     deps.Location,
		pending: newPendingCache(),
	}
	if s.clock == nil {
		s.clock = clock.NewSystem()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	return s
}

func (s *service) Create(ctx context.Context, req domain.CreateListingRequest) (*domain.ListingView, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrValidation)
	}
	cooking, err := parseTime(req.CookingTime, s.loc)
	if err != nil {
		return nil, fmt.Errorf("cooking_time must be RFC 3339 or YYYY-MM-DDTHH:MM: %w", domain.ErrValidation)
	}
	ready, err := parseTime(req.ReadyUntil, s.loc)
	if err != nil {
		return nil, fmt.Errorf("ready_until must be RFC 3339 or YYYY-MM-DDTHH:MM: %w", domain.ErrValidation)
	}
	now := s.clock.Now()
	switch {
	case !ready.After(cooking):
		return nil, fmt.Errorf("ready_until must be after cooking_time: %w", domain.ErrValidation)
	case cooking.After(now):
		return nil, fmt.Errorf("cooking_time cannot be in the future: %w", domain.ErrValidation)
	case !ready.After(now):
		return nil, fmt.Errorf("ready_until must be in the future: %w", domain.ErrValidation)
	}

	foodType := req.FoodType
	if foodType == "" {
		foodType = domain.FoodVeg
	}
	l := &domain.Listing{
		ListingID:   id.New(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		FoodType:    foodType,
		Portions:    req.Portions,
		Pincode:     strings.TrimSpace(req.Pincode),
		Lat:         req.Lat,
		Lng:         req.Lng,
		CookingTime: cooking,
		ReadyUntil:  ready,
		ExpiresAt:   ready,
		Tags:        nonNil(req.Tags),
		Allergens:   nonNil(req.Allergens),
		HygieneAck:  req.HygieneAck,
		Donor: domain.Donor{
			Name:    req.DonorName,
			Phone:   req.DonorPhone,
			Email:   req.DonorEmail,
			Address: req.DonorAddress,
		},
		CreatedAt: now,
	}
	if err := s.repo.Put(ctx, l); err != nil {
		slog.Warn("listing write failed, keeping in pending cache", "listing_id", l.ListingID, "err", err)
		s.pending.put(*l)
		return &domain.ListingView{Listing: *l, RemainingPortions: l.Portions, Pending: true}, nil
	}
	return &domain.ListingView{Listing: *l, RemainingPortions: l.Portions}, nil
}

func (s *service) Get(ctx context.Context, listingID string) (*domain.ListingView, error) {
	l, pending, err := s.lookup(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, l, pending, s.clock.Now())
}

// Feed returns live listings from the durable store merged with pending ones.
// A failing durable read degrades to the pending cache alone.
func (s *service) Feed(ctx context.Context, filter domain.FeedFilter) ([]domain.ListingView, error) {
	now := s.clock.Now()
	pincode := strings.TrimSpace(filter.Pincode)

	durable, err := s.repo.ListLive(ctx, now, pincode)
	if err != nil {
		slog.Warn("listing feed read failed, serving pending cache only", "err", err)
		durable = nil
	}
	durableIDs := make(map[string]struct{}, len(durable))
	for _, l := range durable {
		durableIDs[l.ListingID] = struct{}{}
	}

	merged := Merge(durable, s.pending.list())
	out := make([]domain.ListingView, 0, len(merged))
	for i := range merged {
		if !matches(&merged[i], now, pincode) {
			continue
		}
		_, isDurable := durableIDs[merged[i].ListingID]
		v, err := s.view(ctx, &merged[i], !isDurable, now)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// Resolve finds a listing by id, falling back to an exact title match among
// live listings when the id is empty or unknown.
func (s *service) Resolve(ctx context.Context, ref domain.ListingRef) (*domain.Listing, error) {
	ref.ID = strings.TrimSpace(ref.ID)
	ref.Title = strings.TrimSpace(ref.Title)
	if ref.ID == "" && ref.Title == "" {
		return nil, fmt.Errorf("listing_id or listing_title is required: %w", domain.ErrValidation)
	}
	if ref.ID != "" {
		l, _, err := s.lookup(ctx, ref.ID)
		if err == nil || !errors.Is(err, domain.ErrNotFound) || ref.Title == "" {
			return l, err
		}
	}
	now := s.clock.Now()
	l, err := s.repo.FindLiveByTitle(ctx, ref.Title, now)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if cached, ok := s.pending.findByTitle(ref.Title); ok && !cached.Expired(now) {
		return &cached, nil
	}
	return nil, fmt.Errorf("no live listing titled %q: %w", ref.Title, domain.ErrNotFound)
}

func (s *service) AttachPhoto(ctx context.Context, in PhotoInput) (*domain.ListingView, error) {
	if s.photos == nil {
		return nil, fmt.Errorf("photo uploads are not configured: %w", domain.ErrValidation)
	}
	l, pending, err := s.lookup(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	key := s3infra.PhotoKey(l.ListingID, id.New(), in.Filename)
	url, err := s.photos.Upload(ctx, key, in.Reader, in.ContentType)
	if err != nil {
		return nil, err
	}
	if pending {
		s.pending.setPhotoURL(l.ListingID, url)
	} else if err := s.repo.SetPhotoURL(ctx, l.ListingID, url); err != nil {
		return nil, err
	}
	l.PhotoURL = &url
	return s.view(ctx, l, pending, s.clock.Now())
}

// PhotoLink returns a short-lived download link for the listing's photo.
func (s *service) PhotoLink(ctx context.Context, listingID string) (string, error) {
	if s.photos == nil {
		return "", fmt.Errorf("photo uploads are not configured: %w", domain.ErrNotFound)
	}
	l, _, err := s.lookup(ctx, listingID)
	if err != nil {
		return "", err
	}
	if l.PhotoURL == nil {
		return "", fmt.Errorf("listing has no photo: %w", domain.ErrNotFound)
	}
	return s.photos.PresignedURL(ctx, *l.PhotoURL, photoLinkTTL)
}

// lookup reads the durable store first, then the pending cache.
func (s *service) lookup(ctx context.Context, listingID string) (*domain.Listing, bool, error) {
	l, err := s.repo.Get(ctx, listingID)
	if err == nil {
		return l, false, nil
	}
	if cached, ok := s.pending.get(listingID); ok {
		return &cached, true, nil
	}
	return nil, false, err
}

func (s *service) view(ctx context.Context, l *domain.Listing, pending bool, now time.Time) (*domain.ListingView, error) {
	claims, err := s.claims.ListByListing(ctx, l.ListingID)
	if err != nil {
		if !pending {
			return nil, err
		}
		// A pending listing has no durable claims yet; report full portions.
		slog.Warn("claims read failed for pending listing", "listing_id", l.ListingID, "err", err)
		claims = nil
	}
	remaining := l.Portions - domain.Committed(claims)
	if remaining < 0 {
		remaining = 0
	}
	return &domain.ListingView{
		Listing:           *l,
		RemainingPortions: remaining,
		Expired:           l.Expired(now),
		Pending:           pending,
	}, nil
}

// parseTime accepts RFC 3339 or a zone-less datetime-local value interpreted in loc.
func parseTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range []string{localLayout, localLayout + ":05"} {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", v)
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
