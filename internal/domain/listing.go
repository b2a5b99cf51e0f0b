package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Food classifications accepted on a listing.
const (
	FoodVeg    = "VEG"
	FoodNonVeg = "NON-VEG"
)

// Donor is the contact block of the person who posted a listing.
// Phone is the cross-reference key between listings and claims.
type Donor struct {
	Name    string `json:"donor_name"`
	Phone   string `json:"donor_phone"`
	Email   string `json:"donor_email"`
	Address string `json:"donor_address"`
}

type Listing struct {
	ListingID   string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FoodType    string    `json:"food_type"`
	Portions    int       `json:"portions"`
	Pincode     string    `json:"pincode"`
	Lat         *float64  `json:"lat"`
	Lng         *float64  `json:"lng"`
	CookingTime time.Time `json:"cooking_time"`
	ReadyUntil  time.Time `json:"ready_until"`
	ExpiresAt   time.Time `json:"expires_at"` // mirrors ReadyUntil at write time
	Tags        []string  `json:"tags"`
	Allergens   []string  `json:"allergens"`
	HygieneAck  bool      `json:"hygiene_ack"`
	PhotoURL    *string   `json:"photo_url"`
	Donor
	CreatedAt time.Time `json:"created"`
}

// Expired reports whether the pick-up window has closed at now.
func (l *Listing) Expired(now time.Time) bool {
	return !l.ReadyUntil.After(now)
}

// ListingView is a listing plus the read-side projections computed from the claim ledger.
type ListingView struct {
	Listing
	RemainingPortions int  `json:"remaining_portions"`
	Expired           bool `json:"expired"`
	Pending           bool `json:"pending,omitempty"` // only held in the fallback cache
}

// CreateListingRequest is the flat body accepted by POST /api/listings.
// Times are parsed by the listing service so both RFC 3339 and datetime-local inputs work.
type CreateListingRequest struct {
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description"`
	FoodType     string     `json:"food_type" validate:"omitempty,oneof=VEG NON-VEG"`
	Portions     int        `json:"portions" validate:"gte=1"`
	Pincode      string     `json:"pincode" validate:"required"`
	Lat          *float64   `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng          *float64   `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	CookingTime  string     `json:"cooking_time" validate:"required"`
	ReadyUntil   string     `json:"ready_until" validate:"required"`
	Tags         StringList `json:"tags"`
	Allergens    StringList `json:"allergens"`
	HygieneAck   bool       `json:"hygiene_ack"`
	DonorName    string     `json:"donor_name" validate:"required"`
	DonorPhone   string     `json:"donor_phone" validate:"required,phone"`
	DonorEmail   string     `json:"donor_email" validate:"omitempty,email"`
	DonorAddress string     `json:"donor_address"`
}

// FeedFilter narrows the listing feed. Pincode is a substring match.
type FeedFilter struct {
	Pincode string
}

// ListingRef identifies a listing loosely: by id, or failing that by exact title.
type ListingRef struct {
	ID    string
	Title string
}

// StringList decodes either a JSON array of strings or a single comma-separated string.
type StringList []string

func (s *StringList) UnmarshalJSON(b []byte) error {
	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		*s = cleanList(arr)
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = cleanList(strings.Split(raw, ","))
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
