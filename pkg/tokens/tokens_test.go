package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackingNumberFormat(t *testing.T) {
	tn := TrackingNumber()
	parts := strings.Split(tn, "-")
	assert.Len(t, parts, 3)
	assert.Equal(t, "ABIS", parts[0])
	assert.Len(t, parts[2], 6)
}

func TestPickupCodeIsUpperAlnum(t *testing.T) {
	code := PickupCode()
	assert.Len(t, code, 6)
	assert.Equal(t, strings.ToUpper(code), code)
}

func TestPublicTokenWidthAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok := PublicToken()
		assert.Len(t, tok, 20)
		assert.False(t, seen[tok], "token collision")
		seen[tok] = true
	}
}
