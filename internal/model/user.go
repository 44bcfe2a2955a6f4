package model

import "time"

// User represents an application account as stored in the `users` table.
// PasswordHash holds the bcrypt digest; the plaintext password is never
// persisted. The avatar blob and the valid-token set live in the database
// alongside the user but are loaded separately by the repository layer,
// so neither can leak through a marshalled User.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name, trimmed.
//  Email        – unique email address, stored lowercase.
//  PasswordHash – bcrypt hashed password.
//  Age          – non-negative age, defaults to 0.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Age          int       // users.age
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// PublicUser is the externally visible representation of a user. It is the
// only user shape handlers are allowed to serialize: no password hash, no
// tokens, no avatar bytes, regardless of what is stored.
type PublicUser struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public returns the client-facing view of the user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// AuthToken models a row in the `auth_tokens` table. Each row marks one
// currently valid session for a user. The signed token itself is not
// stored; only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the session.
//  TokenHash – SHA-256 hex digest of the signed token.
//  CreatedAt – timestamp of creation.
type AuthToken struct {
	ID        uint64    // auth_tokens.id
	UserID    uint64    // auth_tokens.user_id
	TokenHash string    // auth_tokens.token_hash
	CreatedAt time.Time // auth_tokens.created_at
}
