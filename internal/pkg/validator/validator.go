package validator

// Validator is the contract for struct validation.
type Validator interface {
	// Validate checks data against its declared rules and returns an error
	// describing every failing field, or nil when the data is valid.
	Validate(data any) error
}
