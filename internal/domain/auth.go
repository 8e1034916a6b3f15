package domain

import "time"

// Manager is the single principal allowed into the dashboard.
type Manager struct {
	Username string
}

// Token represents issued authentication token metadata.
type Token struct {
	Value     string
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}
