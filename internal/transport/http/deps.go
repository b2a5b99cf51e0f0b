package http

import (
	"github.com/nutribridge-api/internal/application/chat"
	"github.com/nutribridge-api/internal/application/claim"
	"github.com/nutribridge-api/internal/application/listing"
)

// Deps holds the application services the router exposes.
type Deps struct {
	Listings listing.Service
	Claims   claim.Service
	Chat     chat.Service
}
