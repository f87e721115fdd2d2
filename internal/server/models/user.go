// Package models defines server-side records shared by the stores,
// services and handlers.
package models

import "time"

// User is a registered account. PasswordHash is never the plaintext.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}
