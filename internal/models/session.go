package models

import "time"

// Session binds an issued token pair to its owner. The record lives in a
// TTL store: its lifetime is always the refresh token's lifetime, never the
// access token's. An access token without a live session is a revoked token.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	RememberMe   bool      `json:"remember_me"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}
