package cartstore

import (
	"context"
	"errors"
)

// Backend is raw key/value storage for serialized cart records.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var ErrMiss = errors.New("cart record not found")
