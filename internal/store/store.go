// Package store holds the client's local persistence: a key/value table
// standing in for browser local storage, and the seen-jobs table used by alerts.
package store

import "context"

// LocalStorage is a string key/value store scoped to this machine.
type LocalStorage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

var (
	_ LocalStorage = (*SQLiteStore)(nil)
	_ LocalStorage = (*MemoryStorage)(nil)
)
