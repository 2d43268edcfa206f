// Package storage persists the client session between runs.
package storage

import (
	"context"
	"errors"
)

// Keys shared with the session store.
const (
	KeyAuthToken = "authToken"
	KeyUserData  = "userData"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a durable string key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
