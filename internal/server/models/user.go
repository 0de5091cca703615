// Package models defines the persistent entities of the Aequatio backend.
package models

import "time"

// User is an account holder. HashedPassword is a bcrypt hash and must never
// be written to a response body.
type User struct {
	ID             string
	Username       string
	Email          string
	HashedPassword string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
