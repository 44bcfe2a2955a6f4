package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/task-manager-api/internal/model"
	"github.com/iliyamo/task-manager-api/internal/repository"
	"github.com/iliyamo/task-manager-api/internal/utils"
)

// TokenService mints and validates the bearer tokens that assert "this
// request acts as user U". A token is a signed JWT, but the signature is
// only half the contract: its hash must also still be present in the
// owner's auth_tokens set. Removing the hash is how a session is revoked,
// so each user can hold any number of concurrent sessions and drop one or
// all of them at will.
type TokenService struct {
	secret string
	ttl    time.Duration // 0 disables the exp claim
	users  UserStore
	tokens TokenStore
}

// NewTokenService constructs a TokenService. ttlMin is the token lifetime
// in minutes; 0 issues tokens that stay valid until revoked.
func NewTokenService(secret string, ttlMin int, users UserStore, tokens TokenStore) *TokenService {
	if users == nil || tokens == nil {
		panic("nil store passed to NewTokenService")
	}
	return &TokenService{
		secret: secret,
		ttl:    time.Duration(ttlMin) * time.Minute,
		users:  users,
		tokens: tokens,
	}
}

// Issue signs a new token for the user and adds its hash to the user's
// valid-token set. Issuing never checks for collisions with existing
// tokens: several live tokens per user simply mean several sessions.
func (s *TokenService) Issue(ctx context.Context, user model.User) (string, error) {
	raw, err := utils.SignToken(s.secret, user.ID, s.ttl)
	if err != nil {
		return "", err
	}
	if err := s.tokens.Store(ctx, user.ID, utils.HashToken(raw)); err != nil {
		return "", err
	}
	return raw, nil
}

// Validate verifies the token signature, resolves the embedded user and
// confirms the token is still listed in that user's set. It returns the
// user together with the validated token string; the request layer needs
// both to support single-session logout. Every failure mode collapses
// into ErrInvalidToken.
func (s *TokenService) Validate(ctx context.Context, raw string) (model.User, string, error) {
	userID, err := utils.ParseToken(s.secret, raw)
	if err != nil {
		return model.User{}, "", ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, "", ErrInvalidToken
		}
		return model.User{}, "", err
	}
	ok, err := s.tokens.Exists(ctx, user.ID, utils.HashToken(raw))
	if err != nil {
		return model.User{}, "", err
	}
	if !ok {
		// Well-formed and correctly signed, but revoked.
		return model.User{}, "", ErrInvalidToken
	}
	return user, raw, nil
}

// Revoke removes exactly one token from the user's valid-token set.
func (s *TokenService) Revoke(ctx context.Context, user model.User, raw string) error {
	return s.tokens.Delete(ctx, user.ID, utils.HashToken(raw))
}

// RevokeAll clears the user's valid-token set, ending every session.
func (s *TokenService) RevokeAll(ctx context.Context, user model.User) error {
	return s.tokens.DeleteAllForUser(ctx, user.ID)
}
