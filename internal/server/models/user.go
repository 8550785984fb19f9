// Package models contains the server-side persistence models.
package models

import "time"

// User is the profile row owned by a credential.
type User struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	Gender    string
	BirthDate *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
