package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Credential is the single manager login. The password is kept only as a
// bcrypt hash.
type Credential struct {
	Username     string
	passwordHash []byte
}

// NewCredential hashes password with the configured cost.
func NewCredential(username, password string, cost int) (*Credential, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}
	return &Credential{Username: username, passwordHash: hashed}, nil
}

// Matches reports whether username and password both equal the credential exactly.
func (c *Credential) Matches(username, password string) bool {
	if c == nil {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(c.Username), []byte(username)) == 1
	passOK := bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password)) == nil
	return userOK && passOK
}
