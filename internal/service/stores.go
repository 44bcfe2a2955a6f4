package service

import (
	"context"

	"github.com/iliyamo/task-manager-api/internal/model"
	"github.com/iliyamo/task-manager-api/internal/queue"
)

// The services consume the persistence layer through these interfaces.
// internal/repository provides the MySQL implementations; tests substitute
// in-memory fakes.

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id uint64) error
	GetAvatar(ctx context.Context, id uint64) ([]byte, error)
	SetAvatar(ctx context.Context, id uint64, avatar []byte) error
}

// TokenStore persists the per-user valid-token set.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string) error
	Exists(ctx context.Context, userID uint64, tokenHash string) (bool, error)
	Delete(ctx context.Context, userID uint64, tokenHash string) error
	DeleteAllForUser(ctx context.Context, userID uint64) error
}

// TaskStore persists tasks, always scoped by owner.
type TaskStore interface {
	Create(ctx context.Context, t *model.Task) (uint64, error)
	GetByOwner(ctx context.Context, id, ownerID uint64) (model.Task, error)
	List(ctx context.Context, ownerID uint64, q model.TaskQuery) ([]model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id, ownerID uint64) error
	DeleteAllForOwner(ctx context.Context, ownerID uint64) error
}

// EventPublisher delivers account lifecycle events to the notification
// pipeline. Implementations must be safe to call from goroutines and may
// drop events when the broker is unreachable.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.AccountEvent) error
}
