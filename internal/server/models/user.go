package models

import "time"

// User is a registered account. PasswordHash always holds a bcrypt hash and
// is never serialized.
type User struct {
	ID           int64     `json:"id"`
	UserName     string    `json:"username"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
