package random

import (
	crand "crypto/rand"
	"fmt"
	mrand "math/rand"
)

func RandInt(min, max int) int {
	return mrand.Intn(max-min) + min // nolint: gosec
}

// RandBytes returns sz cryptographically random bytes, suitable for use as
// an IV or nonce. Unlike math/rand-backed helpers this can fail if the OS
// entropy source is unavailable, so callers get the error instead of a panic.
func RandBytes(sz int) ([]byte, error) {
	data := make([]byte, sz)
	if _, err := crand.Read(data); err != nil {
		return nil, fmt.Errorf("random: read entropy: %w", err)
	}
	return data, nil
}
