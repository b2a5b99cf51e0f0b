package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigits(t *testing.T) {
	assert.Equal(t, "919876543210", Digits("+91 98765-43210"))
	assert.Equal(t, "9876543210", Digits("(987) 654 3210"))
	assert.Equal(t, "", Digits("n/a"))
	assert.Equal(t, "", Digits(""))
}
