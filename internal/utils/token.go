package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA-256 hashing for stored token digests
	"encoding/hex"  // hex encoding of digests
	"errors"        // sentinel error values
	"time"          // expiry claim computation

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"       // random jti claim for session uniqueness
)

// ErrBadToken is returned when a token fails signature verification or its
// claims cannot be read. Callers translate it into their own auth errors
// without exposing the cause.
var ErrBadToken = errors.New("bad token")

// SignToken builds and signs an HS256 JWT whose subject is the user ID.
// The claims always include iat and a random jti, so two tokens minted in
// the same second are still distinct sessions; exp is added only when ttl
// is positive, so with ttl=0 the token stays cryptographically valid until
// it is removed from the owner's token set.
func SignToken(secret string, userID uint64, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"jti": uuid.NewString(),
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseToken verifies the signature of a signed token and returns the user
// ID from its subject claim. Any parse, signature or claim failure is
// reported as ErrBadToken.
func ParseToken(secret, raw string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC to avoid algorithm
		// confusion attacks.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrBadToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrBadToken
	}
	// Numeric JSON claims decode as float64.
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, ErrBadToken
	}
	return uint64(sub), nil
}

// HashToken returns the SHA-256 hash of a signed token as a hex string.
// Only hashes are stored in the database so a leaked auth_tokens table
// cannot be replayed as live sessions.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
