package dynamo

// DynamoDB attribute names used in key, filter and update expressions.
const (
	fieldListingID      = "listing_id"
	fieldClaimID        = "claim_id"
	fieldTitle          = "title"
	fieldPincode        = "pincode"
	fieldExpiresAt      = "expires_at"
	fieldPhotoURL       = "photo_url"
	fieldStatus         = "status"
	fieldOTP            = "otp"
	fieldUpdatedAt      = "updated_at"
	fieldDonorPhone     = "donor_phone"
	fieldRequesterPhone = "requester_phone"
)

// GSI names on the claims table.
const (
	indexClaimsByListing   = "listing_id-index"
	indexClaimsByDonor     = "donor_phone-index"
	indexClaimsByRequester = "requester_phone-index"
)
