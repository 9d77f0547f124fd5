package models

import "time"

// User represents an account that can own an authentication token.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"id"`

	// Username is the unique login identifier.
	Username string `json:"username"`

	// Password carries the plaintext password on registration and token
	// requests only. It is never persisted and never serialized back.
	Password string `json:"password,omitempty"`

	// PasswordHash is the bcrypt hash stored in the database.
	PasswordHash string `json:"-"`

	// IsActive is false for disabled accounts; their tokens are rejected.
	IsActive bool `json:"is_active"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
