package hash

// Hash is the contract for one-way hashing of secrets.
type Hash interface {
	// Hash returns the encoded hash of str.
	Hash(str string) ([]byte, error)
	// Verify reports whether str matches the previously encoded hash.
	Verify(hashed, str string) bool
}
