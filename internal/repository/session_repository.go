package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/query-desk/internal/persistence"
)

// SessionKey marks an active manager session.
const SessionKey = "isAuthenticated"

const sessionActive = "true"

// SessionRepository tracks whether a manager session is active.
type SessionRepository interface {
	IsActive(ctx context.Context) (bool, error)
	Activate(ctx context.Context) error
	Deactivate(ctx context.Context) error
}

type sessionRepository struct {
	kv persistence.KV
}

// NewSessionRepository instantiates repository.
func NewSessionRepository(kv persistence.KV) SessionRepository {
	return &sessionRepository{kv: kv}
}

func (r *sessionRepository) IsActive(ctx context.Context) (bool, error) {
	val, err := r.kv.Get(ctx, SessionKey)
	if errors.Is(err, persistence.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == sessionActive, nil
}

func (r *sessionRepository) Activate(ctx context.Context) error {
	return r.kv.Set(ctx, SessionKey, sessionActive)
}

func (r *sessionRepository) Deactivate(ctx context.Context) error {
	return r.kv.Delete(ctx, SessionKey)
}
