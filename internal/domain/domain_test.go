package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList_AcceptsArrayOrCSV(t *testing.T) {
	var body struct {
		Tags      StringList `json:"tags"`
		Allergens StringList `json:"allergens"`
	}
	err := json.Unmarshal([]byte(`{"tags":"spicy, low-oil ,","allergens":["peanuts"," gluten ",""]}`), &body)
	require.NoError(t, err)
	assert.Equal(t, StringList{"spicy", "low-oil"}, body.Tags)
	assert.Equal(t, StringList{"peanuts", "gluten"}, body.Allergens)
}

func TestStringList_RejectsOtherShapes(t *testing.T) {
	var l StringList
	assert.Error(t, json.Unmarshal([]byte(`42`), &l))
}

func TestClaimStatus_CanTransition(t *testing.T) {
	cases := []struct {
		from, to ClaimStatus
		ok       bool
	}{
		{ClaimRequested, ClaimAccepted, true},
		{ClaimRequested, ClaimRejected, true},
		{ClaimAccepted, ClaimRejected, true},
		{ClaimAccepted, ClaimAccepted, false},
		{ClaimAccepted, ClaimCompleted, false},
		{ClaimRequested, ClaimCompleted, false},
		{ClaimRejected, ClaimAccepted, false},
		{ClaimRejected, ClaimRequested, false},
		{ClaimCompleted, ClaimRejected, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransition(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestListing_Expired(t *testing.T) {
	now := time.Date(2025, 8, 24, 19, 0, 0, 0, time.UTC)
	l := Listing{ReadyUntil: now}
	assert.True(t, l.Expired(now))
	l.ReadyUntil = now.Add(time.Minute)
	assert.False(t, l.Expired(now))
}

func TestListing_DonorFieldsAreFlat(t *testing.T) {
	b, err := json.Marshal(Listing{Donor: Donor{Name: "Asha", Phone: "98765 43210"}})
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "Asha", m["donor_name"])
	assert.Equal(t, "98765 43210", m["donor_phone"])
	_, nested := m["Donor"]
	assert.False(t, nested)
}

func TestCommitted_CountsAcceptedAndCompletedOnly(t *testing.T) {
	claims := []Claim{
		{Quantity: 1, Status: ClaimRequested},
		{Quantity: 2, Status: ClaimAccepted},
		{Quantity: 3, Status: ClaimCompleted},
		{Quantity: 4, Status: ClaimRejected},
	}
	assert.Equal(t, 5, Committed(claims))
	assert.Equal(t, 0, Committed(nil))
}
