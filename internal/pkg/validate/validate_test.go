package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `validate:"required"`
	Phone string `validate:"omitempty,phone"`
	Qty   int    `validate:"gte=1"`
}

func TestStruct_OK(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "a", Phone: "+91 (987) 654-3210", Qty: 1}))
}

func TestStruct_CollectsAllFailures(t *testing.T) {
	err := Struct(sample{Phone: "call me", Qty: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Name' failed 'required'")
	assert.Contains(t, err.Error(), "field 'Phone' failed 'phone'")
	assert.Contains(t, err.Error(), "field 'Qty' failed 'gte'")
}

func TestStruct_ShortPhoneRejected(t *testing.T) {
	assert.Error(t, Struct(sample{Name: "a", Phone: "12345", Qty: 1}))
}
