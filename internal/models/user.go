package models

import "time"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the authenticated identity bound to a request after the
// bearer pipeline succeeds. It carries a single authority (the role).
type Principal struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
