// Package otp generates the short numeric codes used as the second login
// factor.
package otp

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// ChallengeTTL is how long a generated code stays valid. The pending
// login token issued alongside the code shares this lifetime.
const ChallengeTTL = 5 * time.Minute

// CodeLength is the number of decimal digits in a code.
const CodeLength = 6

const codeSpace = 1_000_000

// GenerateCode returns a uniformly random zero-padded 6-digit code drawn
// from crypto/rand. Leading zeros are valid: "004821" is a possible
// output.
func GenerateCode() (string, error) {
	// Rejection sampling keeps the draw uniform over [0, 999999].
	bound := uint64(codeSpace)
	limit := (^uint64(0) / bound) * bound
	for {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return "", fmt.Errorf("reading random bytes: %w", err)
		}
		n := binary.BigEndian.Uint64(buf[:])
		if n < limit {
			return fmt.Sprintf("%06d", n%bound), nil
		}
	}
}
