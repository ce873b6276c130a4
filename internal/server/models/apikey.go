package models

import "time"

// APIKey is a long-lived opaque credential owned by a single user. The
// current schema keeps one key per user and stores it retrievable in
// plaintext; key generation is isolated behind services.KeyGenerator so a
// hashed-key design can replace it without touching callers.
type APIKey struct {
	UserID    string
	Key       string
	CreatedAt time.Time
}
