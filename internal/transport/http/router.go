package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nutribridge-api/internal/config"
	"github.com/nutribridge-api/internal/transport/http/handler"
	appmiddleware "github.com/nutribridge-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Guards code guessing on the verification endpoint.
	verifyRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.VerifyRatePerSec), cfg.VerifyRateBurst)

	healthH := handler.NewHealthHandler()
	listingH := handler.NewListingHandler(deps.Listings, deps.Claims)
	claimH := handler.NewClaimHandler(deps.Claims)
	chatH := handler.NewChatHandler(deps.Chat)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthH.Check)

		r.Get("/listings", listingH.Feed)
		r.Post("/listings", listingH.Create)
		r.Get("/listings/{id}", listingH.Get)
		r.Post("/listings/{id}/photo", listingH.UploadPhoto)
		r.Get("/listings/{id}/photo", listingH.Photo)
		r.Get("/listings/{id}/claims", listingH.Claims)

		r.Post("/claims", claimH.Create)
		r.Get("/claims/{id}", claimH.Get)
		r.Post("/claims/{id}/status", claimH.SetStatus)
		r.With(verifyRL.Limit).Post("/claims/{id}/verify", claimH.Verify)
		r.Get("/donors/{phone}/claims", claimH.DonorInbox)
		r.Get("/requesters/{phone}/claims", claimH.RequesterClaims)

		r.Post("/chat/sessions", chatH.Start)
		r.Post("/chat/sessions/{id}/messages", chatH.Send)
		r.Get("/chat/sessions/{id}", chatH.History)
		r.Delete("/chat/sessions/{id}", chatH.End)
	})

	return r
}
