// Package otp generates random single-use verification codes.
//
// Codes are not derived from a shared secret; each one is drawn from
// crypto/rand, stored hashed, and consumed exactly once.
package otp
