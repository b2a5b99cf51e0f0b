package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs sort by creation time, so listing
// and claim ids double as insertion order in every store.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
