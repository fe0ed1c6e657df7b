package store

import "context"

// StateStore persists small key/value settings across restarts
// (user height, stride tunables, last tracking origin).
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, value string) error
	DeleteState(ctx context.Context, key string) error
}
