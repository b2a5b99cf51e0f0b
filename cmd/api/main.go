package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nutribridge-api/internal/application/chat"
	"github.com/nutribridge-api/internal/application/claim"
	"github.com/nutribridge-api/internal/application/listing"
	"github.com/nutribridge-api/internal/application/notify"
	"github.com/nutribridge-api/internal/config"
	s3infra "github.com/nutribridge-api/internal/infrastructure/s3"
	"github.com/nutribridge-api/internal/infrastructure/smtp"
	"github.com/nutribridge-api/internal/infrastructure/sns"
	"github.com/nutribridge-api/internal/pkg/clock"
	"github.com/nutribridge-api/internal/pkg/otp"
	transporthttp "github.com/nutribridge-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	st, err := openStores(cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer st.close()

	// Photo uploads need a bucket; without one the photo routes report "not configured".
	var photos *s3infra.Store
	if cfg.S3BucketName != "" {
		photos = s3infra.NewStore(s3infra.NewClient(cfg), cfg.S3BucketName)
	}

	// SMS is optional; notify skips texts when the sender is nil.
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}
	notifier := notify.NewService(smsSender, smtp.NewMailer(cfg))

	clk := clock.NewSystem()
	listingDeps := listing.ServiceDeps{
		ListingRepo: st.listings,
		ClaimRepo:   st.claims,
		Clock:       clk,
		Location:    cfg.Location,
	}
	if photos != nil {
		listingDeps.Photos = photos
	}
	listingSvc := listing.NewService(listingDeps)
	claimSvc := claim.NewService(claim.ServiceDeps{
		ClaimRepo: st.claims,
		Listings:  listingSvc,
		Notifier:  notifier,
		Codes:     otp.Random(),
		Clock:     clk,
	})
	chatSvc := chat.NewService(chat.ServiceDeps{Clock: clk, TTL: cfg.ChatSessionTTL})

	bg, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	go chatSvc.Run(bg)

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Listings: listingSvc,
		Claims:   claimSvc,
		Chat:     chatSvc,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, storage=%s)", cfg.AppPort, cfg.AppEnv, cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
