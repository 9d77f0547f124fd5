package models

import "time"

// AuthToken is an opaque credential bound to exactly one user. Clients send
// its Key in a header shaped "Token <key>".
type AuthToken struct {
	// Key is the 40-character hex credential and the primary key.
	Key string `json:"token"`

	// UserID identifies the owner.
	UserID int64 `json:"-"`

	// CreatedAt is the issue time.
	CreatedAt time.Time `json:"-"`
}

// TableName returns the name of the database table
// associated with the AuthToken model.
func (t AuthToken) TableName() string {
	return "auth_tokens"
}

// String returns the token key. It implements the [fmt.Stringer] interface.
func (t AuthToken) String() string {
	return t.Key
}
