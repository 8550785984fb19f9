// Package metadata is the client's durable key-value store. Two backends
// are provided: SQLite (modernc.org/sqlite) and bbolt.
package metadata

import (
	"context"
)

// Repository reads and writes raw key-value pairs. Get returns (nil, nil)
// for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// Store hands out Repositories scoped to a single transaction. Everything
// fn does through the Repository in Update is committed together or not at
// all.
type Store interface {
	View(ctx context.Context, fn func(Repository) error) error
	Update(ctx context.Context, fn func(Repository) error) error
	Close() error
}
