package ports

// PasswordHasher is the one-way password hash used for credential storage.
// Kept behind an interface so a different algorithm can be substituted
// without touching the session or profile services.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Compare reports whether plaintext matches the stored hash.
	Compare(hash, plaintext string) bool
}
