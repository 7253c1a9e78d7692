package otp

import (
	"crypto/rand"
	"math/big"
)

// Generator defines the contract for one-time code generation.
type Generator interface {
	// Generate returns a new random code.
	Generate() (string, error)
}

// NumericCode generates fixed-length numeric one-time codes from a
// cryptographically secure source.
type NumericCode struct {
	length int
}

// NewNumericCode constructs a NumericCode generator.
//
// Lengths outside 4..10 fall back to 6 digits, the common choice for
// email-delivered codes.
func NewNumericCode(length int) *NumericCode {
	if length < 4 || length > 10 {
		length = 6
	}

	return &NumericCode{length: length}
}

// Generate returns a random numeric code of the configured length.
// Leading zeros are preserved, so every code has the same length.
func (g *NumericCode) Generate() (string, error) {
	digits := make([]byte, g.length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}

	return string(digits), nil
}

// Length returns the number of digits produced by Generate.
func (g *NumericCode) Length() int {
	return g.length
}
