// Package models defines the persisted row types shared by repositories and
// services.
package models

import "time"

// User is an account row. HashedPassword holds the deterministic digest
// computed at registration; the plaintext is never stored. Credits is a
// numeric balance owned by the billing collaborator and only carried
// through token claims here.
type User struct {
	ID             string
	Username       string
	Email          string
	HashedPassword string
	Credits        int64
	CreatedAt      time.Time
}
