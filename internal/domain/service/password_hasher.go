// Package service declares the capabilities the usecases need from infrastructure:
// password hashing, admin tokens and Web Push delivery.
package service

// PasswordHasher hashes and verifies the admin password.
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Check reports whether password matches hash. A malformed hash never matches.
	Check(password, hash string) bool
}
