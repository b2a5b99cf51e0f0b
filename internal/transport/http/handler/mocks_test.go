package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nutribridge-api/internal/application/chat"
	"github.com/nutribridge-api/internal/application/listing"
	"github.com/nutribridge-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

// --- mocks ---

type mockListingSvc struct{ mock.Mock }

func (m *mockListingSvc) Create(ctx context.Context, req domain.CreateListingRequest) (*domain.ListingView, error) {
	args := m.Called(ctx, req)
	v, _ := args.Get(0).(*domain.ListingView)
	return v, args.Error(1)
}

func (m *mockListingSvc) Get(ctx context.Context, listingID string) (*domain.ListingView, error) {
	args := m.Called(ctx, listingID)
	v, _ := args.Get(0).(*domain.ListingView)
	return v, args.Error(1)
}

func (m *mockListingSvc) Feed(ctx context.Context, filter domain.FeedFilter) ([]domain.ListingView, error) {
	args := m.Called(ctx, filter)
	v, _ := args.Get(0).([]domain.ListingView)
	return v, args.Error(1)
}

func (m *mockListingSvc) Resolve(ctx context.Context, ref domain.ListingRef) (*domain.Listing, error) {
	args := m.Called(ctx, ref)
	l, _ := args.Get(0).(*domain.Listing)
	return l, args.Error(1)
}

func (m *mockListingSvc) AttachPhoto(ctx context.Context, in listing.PhotoInput) (*domain.ListingView, error) {
	args := m.Called(ctx, in)
	v, _ := args.Get(0).(*domain.ListingView)
	return v, args.Error(1)
}

func (m *mockListingSvc) PhotoLink(ctx context.Context, listingID string) (string, error) {
	args := m.Called(ctx, listingID)
	return args.String(0), args.Error(1)
}

type mockClaimSvc struct{ mock.Mock }

func (m *mockClaimSvc) Create(ctx context.Context, req domain.CreateClaimRequest) (*domain.Claim, error) {
	args := m.Called(ctx, req)
	c, _ := args.Get(0).(*domain.Claim)
	return c, args.Error(1)
}

func (m *mockClaimSvc) SetStatus(ctx context.Context, claimID string, to domain.ClaimStatus) (*domain.Claim, error) {
	args := m.Called(ctx, claimID, to)
	c, _ := args.Get(0).(*domain.Claim)
	return c, args.Error(1)
}

func (m *mockClaimSvc) Accept(ctx context.Context, claimID string) (*domain.Claim, error) {
	return m.SetStatus(ctx, claimID, domain.ClaimAccepted)
}

func (m *mockClaimSvc) Reject(ctx context.Context, claimID string) (*domain.Claim, error) {
	return m.SetStatus(ctx, claimID, domain.ClaimRejected)
}

func (m *mockClaimSvc) Verify(ctx context.Context, claimID, code string) (*domain.Claim, error) {
	args := m.Called(ctx, claimID, code)
	c, _ := args.Get(0).(*domain.Claim)
	return c, args.Error(1)
}

func (m *mockClaimSvc) Get(ctx context.Context, claimID string) (*domain.Claim, error) {
	args := m.Called(ctx, claimID)
	c, _ := args.Get(0).(*domain.Claim)
	return c, args.Error(1)
}

func (m *mockClaimSvc) DonorInbox(ctx context.Context, donorPhone string) ([]domain.Claim, error) {
	args := m.Called(ctx, donorPhone)
	c, _ := args.Get(0).([]domain.Claim)
	return c, args.Error(1)
}

func (m *mockClaimSvc) RequesterClaims(ctx context.Context, requesterPhone string) ([]domain.Claim, error) {
	args := m.Called(ctx, requesterPhone)
	c, _ := args.Get(0).([]domain.Claim)
	return c, args.Error(1)
}

func (m *mockClaimSvc) ListingClaims(ctx context.Context, listingID string) ([]domain.Claim, error) {
	args := m.Called(ctx, listingID)
	c, _ := args.Get(0).([]domain.Claim)
	return c, args.Error(1)
}

func (m *mockClaimSvc) Committed(ctx context.Context, listingID string) (int, error) {
	args := m.Called(ctx, listingID)
	return args.Int(0), args.Error(1)
}

type mockChatSvc struct{ mock.Mock }

func (m *mockChatSvc) Start(ctx context.Context) (*chat.Reply, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*chat.Reply)
	return r, args.Error(1)
}

func (m *mockChatSvc) Send(ctx context.Context, sessionID, text string) (*chat.Reply, error) {
	args := m.Called(ctx, sessionID, text)
	r, _ := args.Get(0).(*chat.Reply)
	return r, args.Error(1)
}

func (m *mockChatSvc) History(ctx context.Context, sessionID string) (*chat.Session, error) {
	args := m.Called(ctx, sessionID)
	s, _ := args.Get(0).(*chat.Session)
	return s, args.Error(1)
}

func (m *mockChatSvc) End(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockChatSvc) Run(context.Context) {}

// --- helpers ---

// withChiParam injects a chi URL param into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
