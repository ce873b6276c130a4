package models

import "time"

// BlacklistEntry marks a token identifier as revoked. The entry is active
// only while ExpiresAt lies in the future; after that it is inert and the
// token is treated as not revoked (by then its own exp has normally passed).
type BlacklistEntry struct {
	JTI       string
	ExpiresAt time.Time
}
