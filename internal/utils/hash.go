package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// TokenKeyBytes is the amount of entropy in a token key. Keys are
// hex-encoded, so they are twice as long.
const TokenKeyBytes = 20

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateTokenKey returns a fresh random 40-character hex token key.
func GenerateTokenKey() (string, error) {
	b := make([]byte, TokenKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("error generating token key: %w", err)
	}
	return hex.EncodeToString(b), nil
}
