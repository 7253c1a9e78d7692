// Package uid provides small identifier generators used across the service.
package uid

// StringID generates opaque string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates unique numeric identifiers.
type NumberID interface {
	Generate() int64
}
