// Package session persists the logged-in session of the CLI in the local
// SQLite metadata table.
package session

import "context"

// Repository is a key/value store over the metadata table. Get returns a
// nil value without error for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
