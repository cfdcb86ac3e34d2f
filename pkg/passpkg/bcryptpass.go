// Package passpkg hashes and verifies user passwords.
package passpkg

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch indicates that the password does not match the hash.
var ErrMismatch = bcrypt.ErrMismatchedHashAndPassword

// Hash returns the bcrypt hash of the password.
func Hash(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashedPassword), nil
}

// Check checks if the provided password is correct or not.
func Check(password, hashedPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
