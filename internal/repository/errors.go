// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors. ErrTaskNotFound in
// particular covers both "no such task" and "task owned by someone
// else": the two cases are deliberately indistinguishable so that a
// caller cannot probe for the existence of other users' tasks.
package repository

import "errors"

// ErrEmailExists is returned when an insert or update would violate the
// unique index on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user row matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrTaskNotFound is returned when no task matches the id/owner pair.
var ErrTaskNotFound = errors.New("task not found")

// ErrAvatarNotFound is returned when a user exists but has no avatar set.
var ErrAvatarNotFound = errors.New("avatar not found")
