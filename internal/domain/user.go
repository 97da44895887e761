package domain

import "time"

// User represents an account of the system.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Tasks        []Task
}
