package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/task-manager-api/internal/model"
	"github.com/iliyamo/task-manager-api/internal/queue"
	"github.com/iliyamo/task-manager-api/internal/utils"
)

// AccountService owns the user lifecycle: registration, login, profile
// updates, avatar storage and account deletion with its task cascade.
// The bcrypt hash is computed exactly once, at the moment a password is
// set or changed, and the cascade runs as an explicit step before the
// user row is removed rather than as a storage-level hook.
type AccountService struct {
	users  UserStore
	tasks  TaskStore
	events EventPublisher // nil disables notifications
	v      *validator.Validate
	cost   int // bcrypt cost
}

// NewAccountService constructs an AccountService. events may be nil when
// no broker is configured.
func NewAccountService(users UserStore, tasks TaskStore, events EventPublisher, v *validator.Validate, bcryptCost int) *AccountService {
	if users == nil || tasks == nil || v == nil {
		panic("nil dependency passed to NewAccountService")
	}
	return &AccountService{users: users, tasks: tasks, events: events, v: v, cost: bcryptCost}
}

// userParams carries the validated shape of a user profile. Password holds
// the plaintext candidate and is only populated while it is being set or
// changed; it never reaches the repository.
type userParams struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"omitempty,min=7,notpassword"`
	Age      int    `validate:"gte=0"`
}

// Register creates a new account. Name and email are trimmed, the email is
// lowercased for case-insensitive uniqueness, the password is hashed once
// and a welcome event is published fire-and-forget.
func (s *AccountService) Register(ctx context.Context, name, email, password string, age int) (model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)
	if password == "" {
		return model.User{}, invalidf("password is required")
	}
	if err := s.v.Struct(userParams{Name: name, Email: email, Password: password, Age: age}); err != nil {
		return model.User{}, invalidf("%s", validationMessage(err))
	}

	hash, err := utils.HashPassword(password, s.cost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{Name: name, Email: email, PasswordHash: hash, Age: age}
	if _, err := s.users.Create(ctx, &u); err != nil {
		if isEmailTaken(err) {
			return model.User{}, invalidf("email already in use")
		}
		return model.User{}, err
	}
	// Timestamps are assigned by the database; reload so the caller sees them.
	if fresh, err := s.users.GetByID(ctx, u.ID); err == nil {
		u = fresh
	}
	s.notify(queue.EventAccountCreated, u)
	return u, nil
}

// Authenticate resolves a user by email and verifies the password. Both
// failure modes return the same ErrAuthFailed so a caller cannot learn
// whether the email is registered.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return model.User{}, ErrAuthFailed
		}
		return model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrAuthFailed
	}
	return u, nil
}

// profileFields is the set of keys a client may change on its own account.
var profileFields = map[string]bool{"name": true, "email": true, "password": true, "age": true}

// UpdateProfile applies a partial update to the caller's account. Any key
// outside the allowed set rejects the whole request. The profile is
// re-validated after applying the subset and the password is re-hashed
// only when it is part of the update.
func (s *AccountService) UpdateProfile(ctx context.Context, user model.User, fields map[string]any) (model.User, error) {
	if len(fields) == 0 {
		return model.User{}, invalidf("invalid updates")
	}
	for k := range fields {
		if !profileFields[k] {
			return model.User{}, invalidf("invalid updates")
		}
	}

	u := user
	password := ""
	if v, ok := fields["name"]; ok {
		str, ok := v.(string)
		if !ok {
			return model.User{}, invalidf("name must be a string")
		}
		u.Name = strings.TrimSpace(str)
	}
	if v, ok := fields["email"]; ok {
		str, ok := v.(string)
		if !ok {
			return model.User{}, invalidf("email must be a string")
		}
		u.Email = strings.ToLower(strings.TrimSpace(str))
	}
	if v, ok := fields["password"]; ok {
		str, ok := v.(string)
		if !ok {
			return model.User{}, invalidf("password must be a string")
		}
		password = strings.TrimSpace(str)
		if password == "" {
			return model.User{}, invalidf("password is required")
		}
	}
	if v, ok := fields["age"]; ok {
		n, ok := asInt(v)
		if !ok {
			return model.User{}, invalidf("age must be an integer")
		}
		u.Age = n
	}

	if err := s.v.Struct(userParams{Name: u.Name, Email: u.Email, Password: password, Age: u.Age}); err != nil {
		return model.User{}, invalidf("%s", validationMessage(err))
	}
	if password != "" {
		hash, err := utils.HashPassword(password, s.cost)
		if err != nil {
			return model.User{}, err
		}
		u.PasswordHash = hash
	}

	if err := s.users.Update(ctx, &u); err != nil {
		if isEmailTaken(err) {
			return model.User{}, invalidf("email already in use")
		}
		return model.User{}, err
	}
	if fresh, err := s.users.GetByID(ctx, u.ID); err == nil {
		u = fresh
	}
	return u, nil
}

// DeleteAccount removes the user and everything it owns. The task cascade
// runs first as an explicit step; the session rows disappear with the user
// row. A goodbye event is published fire-and-forget.
func (s *AccountService) DeleteAccount(ctx context.Context, user model.User) error {
	if err := s.tasks.DeleteAllForOwner(ctx, user.ID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.notify(queue.EventAccountDeleted, user)
	return nil
}

// SetAvatar stores a pre-normalized avatar image for the user.
func (s *AccountService) SetAvatar(ctx context.Context, user model.User, png []byte) error {
	return s.users.SetAvatar(ctx, user.ID, png)
}

// ClearAvatar removes the user's avatar.
func (s *AccountService) ClearAvatar(ctx context.Context, user model.User) error {
	return s.users.SetAvatar(ctx, user.ID, nil)
}

// Avatar fetches the stored avatar for any user id. Intentionally not
// restricted to the caller: the avatar endpoint is public.
func (s *AccountService) Avatar(ctx context.Context, userID uint64) ([]byte, error) {
	return s.users.GetAvatar(ctx, userID)
}

// notify publishes an account event without blocking or failing the
// triggering request. Errors are logged by the publisher and dropped.
func (s *AccountService) notify(evType string, u model.User) {
	if s.events == nil {
		return
	}
	ev := queue.AccountEvent{
		Type:       evType,
		Email:      u.Email,
		Name:       u.Name,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.events.Publish(ctx, ev); err != nil {
			log.Printf("account-events: publish %s failed: %v", ev.Type, err)
		}
	}()
}

// validationMessage flattens the first validator error into a short,
// client-safe message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return field + " is required"
		case "email":
			return "email is invalid"
		case "min":
			return field + " is too short"
		case "notpassword":
			return "password must not contain the word password"
		case "gte":
			return field + " must be a non-negative number"
		}
		return field + " is invalid"
	}
	return "invalid input"
}

// asInt accepts the integer shapes JSON decoding may produce.
func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != float64(int(t)) {
			return 0, false
		}
		return int(t), true
	}
	return 0, false
}
