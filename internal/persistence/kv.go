package persistence

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the slot is empty.
var ErrKeyNotFound = errors.New("key not found")

// KV is a string-keyed slot store standing in for browser local storage.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close()
}
