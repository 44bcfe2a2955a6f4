// Package memstore provides in-memory implementations of the service
// store interfaces. They mirror the MySQL repositories closely enough
// (owner scoping, email uniqueness, list filtering) for the service and
// handler test suites to run without a database. Not for production use.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/task-manager-api/internal/model"
	"github.com/iliyamo/task-manager-api/internal/queue"
	"github.com/iliyamo/task-manager-api/internal/repository"
)

// Users is an in-memory UserStore.
type Users struct {
	mu      sync.Mutex
	nextID  uint64
	users   map[uint64]model.User
	avatars map[uint64][]byte
}

func NewUsers() *Users {
	return &Users{users: map[uint64]model.User{}, avatars: map[uint64][]byte{}}
}

func (f *Users) Create(_ context.Context, u *model.User) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return 0, repository.ErrEmailExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = *u
	return u.ID, nil
}

func (f *Users) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (f *Users) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *Users) Update(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for id, existing := range f.users {
		if id != u.ID && existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.UpdatedAt = time.Now().UTC()
	f.users[u.ID] = *u
	return nil
}

func (f *Users) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	delete(f.avatars, id)
	return nil
}

func (f *Users) GetAvatar(_ context.Context, id uint64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return nil, repository.ErrUserNotFound
	}
	a, ok := f.avatars[id]
	if !ok || len(a) == 0 {
		return nil, repository.ErrAvatarNotFound
	}
	return a, nil
}

func (f *Users) SetAvatar(_ context.Context, id uint64, avatar []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	if len(avatar) == 0 {
		delete(f.avatars, id)
		return nil
	}
	f.avatars[id] = avatar
	return nil
}

// Tokens is an in-memory TokenStore.
type Tokens struct {
	mu     sync.Mutex
	hashes map[uint64]map[string]bool
}

func NewTokens() *Tokens {
	return &Tokens{hashes: map[uint64]map[string]bool{}}
}

func (f *Tokens) Store(_ context.Context, userID uint64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hashes[userID] == nil {
		f.hashes[userID] = map[string]bool{}
	}
	f.hashes[userID][hash] = true
	return nil
}

func (f *Tokens) Exists(_ context.Context, userID uint64, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hashes[userID][hash], nil
}

func (f *Tokens) Delete(_ context.Context, userID uint64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.hashes[userID], hash)
	return nil
}

func (f *Tokens) DeleteAllForUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.hashes, userID)
	return nil
}

// CountForUser reports how many sessions a user holds. Test helper.
func (f *Tokens) CountForUser(userID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hashes[userID])
}

// Tasks is an in-memory TaskStore.
type Tasks struct {
	mu     sync.Mutex
	nextID uint64
	tasks  map[uint64]model.Task
}

func NewTasks() *Tasks {
	return &Tasks{tasks: map[uint64]model.Task{}}
}

func (f *Tasks) Create(_ context.Context, t *model.Task) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	// Spread creation times so createdAt ordering is deterministic.
	t.CreatedAt = time.Now().UTC().Add(time.Duration(f.nextID) * time.Millisecond)
	t.UpdatedAt = t.CreatedAt
	f.tasks[t.ID] = *t
	return t.ID, nil
}

func (f *Tasks) GetByOwner(_ context.Context, id, ownerID uint64) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return model.Task{}, repository.ErrTaskNotFound
	}
	return t, nil
}

func (f *Tasks) List(_ context.Context, ownerID uint64, q model.TaskQuery) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Task{}
	for _, t := range f.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if q.Completed != nil && t.Completed != *q.Completed {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if q.SortDesc {
			a, b = b, a
		}
		switch q.SortField {
		case "updatedAt":
			return a.UpdatedAt.Before(b.UpdatedAt)
		case "description":
			return a.Description < b.Description
		case "completed":
			return !a.Completed && b.Completed
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
	if q.Skip > 0 {
		if q.Skip >= len(out) {
			return []model.Task{}, nil
		}
		out = out[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *Tasks) Update(_ context.Context, t *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.tasks[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return repository.ErrTaskNotFound
	}
	t.UpdatedAt = time.Now().UTC()
	f.tasks[t.ID] = *t
	return nil
}

func (f *Tasks) Delete(_ context.Context, id, ownerID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return repository.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *Tasks) DeleteAllForOwner(_ context.Context, ownerID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, t := range f.tasks {
		if t.OwnerID == ownerID {
			delete(f.tasks, id)
		}
	}
	return nil
}

// CountForOwner reports how many tasks an owner holds. Test helper.
func (f *Tasks) CountForOwner(ownerID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tasks {
		if t.OwnerID == ownerID {
			n++
		}
	}
	return n
}

// CapturePublisher records published account events for assertions.
type CapturePublisher struct {
	mu     sync.Mutex
	events []queue.AccountEvent
}

func (p *CapturePublisher) Publish(_ context.Context, ev queue.AccountEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

// Types returns the event types published so far, in order.
func (p *CapturePublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}
