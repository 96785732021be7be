// Package credentials hashes account passwords and issues the signed session
// tokens stored in the browser cookie.
package credentials

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for new hashes.
const PasswordCost = bcrypt.DefaultCost

// HashPassword hashes a plaintext password with bcrypt and a fresh random salt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. A malformed hash is a mismatch.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
