package models

import "time"

// SessionToken is the server-side shadow of an issued token. It is kept
// for audit only; authorization relies on the signed token itself.
type SessionToken struct {
	ID        int64
	Token     string
	UID       string
	ExpiresAt time.Time
	CreatedAt time.Time
}
