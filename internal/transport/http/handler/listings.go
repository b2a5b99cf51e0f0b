package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nutribridge-api/internal/application/listing"
	"github.com/nutribridge-api/internal/domain"
)

const maxPhotoBytes = 5 << 20

type listingClaims interface {
	ListingClaims(ctx context.Context, listingID string) ([]domain.Claim, error)
}

// ListingHandler serves the listing store and feed.
type ListingHandler struct {
	svc    listing.Service
	claims listingClaims
}

func NewListingHandler(svc listing.Service, claims listingClaims) *ListingHandler {
	return &ListingHandler{svc: svc, claims: claims}
}

func (h *ListingHandler) Feed(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.Feed(r.Context(), domain.FeedFilter{Pincode: r.URL.Query().Get("pincode")})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if views == nil {
		views = []domain.ListingView{}
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateListingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *ListingHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	v, err := h.svc.AttachPhoto(r.Context(), listing.PhotoInput{
		ListingID:   chi.URLParam(r, "id"),
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Photo redirects to a short-lived link for the listing's photo.
func (h *ListingHandler) Photo(w http.ResponseWriter, r *http.Request) {
	link, err := h.svc.PhotoLink(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, link, http.StatusFound)
}

func (h *ListingHandler) Claims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.claims.ListingClaims(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(claims))
}
