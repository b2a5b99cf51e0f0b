package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nutribridge-api/internal/config"
	"github.com/nutribridge-api/internal/domain"
	"github.com/nutribridge-api/internal/infrastructure/dynamo"
	"github.com/nutribridge-api/internal/infrastructure/sqlite"
)

type listingRepo interface {
	Put(ctx context.Context, l *domain.Listing) error
	Get(ctx context.Context, listingID string) (*domain.Listing, error)
	ListLive(ctx context.Context, now time.Time, pincode string) ([]domain.Listing, error)
	FindLiveByTitle(ctx context.Context, title string, now time.Time) (*domain.Listing, error)
	SetPhotoURL(ctx context.Context, listingID, url string) error
}

type claimRepo interface {
	Put(ctx context.Context, c *domain.Claim) error
	Get(ctx context.Context, claimID string) (*domain.Claim, error)
	Transition(ctx context.Context, claimID string, from, to domain.ClaimStatus, code *string, at time.Time) error
	ListByListing(ctx context.Context, listingID string) ([]domain.Claim, error)
	ListByDonorPhone(ctx context.Context, phone string) ([]domain.Claim, error)
	ListByRequesterPhone(ctx context.Context, phone string) ([]domain.Claim, error)
}

// stores is the repository pair behind the services, whichever driver backs them.
type stores struct {
	listings listingRepo
	claims   claimRepo
	close    func()
}

func openStores(cfg *config.Config) (*stores, error) {
	switch cfg.StorageDriver {
	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &stores{
			listings: sqlite.NewListingRepo(db),
			claims:   sqlite.NewClaimRepo(db),
			close:    func() { _ = db.Close() },
		}, nil
	case config.StorageDynamo:
		// Bootstrap DynamoDB tables (creates them if they don't exist).
		client := dynamo.NewClient(cfg)
		dynamo.Bootstrap(context.Background(), client, cfg.DynamoTables)
		return &stores{
			listings: dynamo.NewListingRepo(client, cfg.DynamoTables.Listings),
			claims:   dynamo.NewClaimRepo(client, cfg.DynamoTables.Claims),
			close:    func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
