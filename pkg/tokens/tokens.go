package tokens

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// TrackingNumber returns a new document tracking number combining the
// submission timestamp with a short random suffix, e.g. ABIS-1718000000000-K3N7QD.
func TrackingNumber() string {
	return fmt.Sprintf("ABIS-%d-%s", time.Now().UnixMilli(), randomCode(6))
}

// PickupCode returns a 6-character upper-case alphanumeric pickup code.
func PickupCode() string {
	return randomCode(6)
}

// PublicToken returns the per-record blotter access token: 10 random bytes
// hex-encoded, so 20 characters.
func PublicToken() string {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func randomCode(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out)
}
