package domain

import "time"

type ClaimStatus string

const (
	ClaimRequested ClaimStatus = "requested"
	ClaimAccepted  ClaimStatus = "accepted"
	ClaimRejected  ClaimStatus = "rejected"
	ClaimCompleted ClaimStatus = "completed"
)

// CanTransition reports whether a donor-driven status change is allowed.
// Completion is not listed: it only happens through code verification.
func (s ClaimStatus) CanTransition(to ClaimStatus) bool {
	switch s {
	case ClaimRequested:
		return to == ClaimAccepted || to == ClaimRejected
	case ClaimAccepted:
		return to == ClaimRejected
	}
	return false
}

// HoldsPortions reports whether claims in this status count against a listing's portions.
func (s ClaimStatus) HoldsPortions() bool {
	return s == ClaimAccepted || s == ClaimCompleted
}

// Claim is a consumer's request for part of a listing. It is the single record
// both the donor inbox and the consumer request list are projected from.
type Claim struct {
	ClaimID        string      `json:"id"`
	ListingID      string      `json:"listing_id"`
	ListingTitle   string      `json:"title"`
	RequesterName  string      `json:"requester_name"`
	RequesterPhone string      `json:"requester_phone"`
	DonorPhone     string      `json:"donor_phone"`
	Quantity       int         `json:"quantity"`
	Status         ClaimStatus `json:"status"`
	OTP            *string     `json:"otp"` // set only while accepted or completed
	CreatedAt      time.Time   `json:"created"`
	UpdatedAt      time.Time   `json:"updated"`
}

// CreateClaimRequest is the body accepted by POST /api/claims.
type CreateClaimRequest struct {
	ListingID      string `json:"listing_id"`
	ListingTitle   string `json:"listing_title"`
	RequesterName  string `json:"requester_name"`
	RequesterPhone string `json:"requester_phone" validate:"omitempty,phone"`
	Quantity       *int   `json:"quantity"`
}

type SetClaimStatusRequest struct {
	Status ClaimStatus `json:"status" validate:"required,oneof=accepted rejected"`
}

type VerifyClaimRequest struct {
	OTP string `json:"otp" validate:"required"`
}

// Committed sums the quantities of claims that hold portions of their listing.
func Committed(claims []Claim) int {
	n := 0
	for _, c := range claims {
		if c.Status.HoldsPortions() {
			n += c.Quantity
		}
	}
	return n
}
