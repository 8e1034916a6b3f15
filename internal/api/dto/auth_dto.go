package dto

import "time"

// LoginRequest payload for the manager login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionResponse reports whether a session is granted.
type SessionResponse struct {
	Authenticated bool `json:"authenticated"`
}
