package domain

import "time"

// User is an administrator account able to obtain session tokens.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	SchoolID     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
