package otp

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fourDigits = regexp.MustCompile(`^[0-9]{4}$`)

func TestNew_FourDigitsInRange(t *testing.T) {
	for i := 0; i < 2000; i++ {
		code := New()
		require.Regexp(t, fourDigits, code)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}
}

func TestRandom_UsesNew(t *testing.T) {
	assert.Regexp(t, fourDigits, Random().New())
}

func TestGeneratorFunc(t *testing.T) {
	g := GeneratorFunc(func() string { return "4321" })
	assert.Equal(t, "4321", g.New())
}
