package session

import "github.com/google/uuid"

// NewToken returns a fresh session token: a random (v4) UUID.
func NewToken() string {
	return uuid.NewString()
}
