package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/task-manager-api/internal/model"
)

// stubValidator accepts exactly one token and resolves it to one user.
type stubValidator struct {
	token string
	user  model.User
}

func (s *stubValidator) Validate(_ context.Context, raw string) (model.User, string, error) {
	if raw != s.token {
		return model.User{}, "", errors.New("invalid token")
	}
	return s.user, raw, nil
}

func gatedRequest(t *testing.T, authorization string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	stub := &stubValidator{token: "good-token", user: model.User{ID: 7, Name: "Mike"}}

	e := echo.New()
	called := false
	h := Auth(stub)(func(c echo.Context) error {
		called = true
		u, ok := SessionUser(c)
		require.True(t, ok)
		assert.Equal(t, uint64(7), u.ID)
		tok, ok := SessionToken(c)
		require.True(t, ok)
		assert.Equal(t, "good-token", tok)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec, called
}

func TestAuthRejectsWithoutValidBearer(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc123"},
		{"bare token without scheme", "good-token"},
		{"unknown token", "Bearer forged-token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, called := gatedRequest(t, tc.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called, "handler must not run")
			assert.JSONEq(t, `{"error":"please authenticate"}`, rec.Body.String())
		})
	}
}

func TestAuthPassesUserAndTokenDownstream(t *testing.T) {
	rec, called := gatedRequest(t, "Bearer good-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestSessionHelpersOnUngatedRoute(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := SessionUser(c)
	assert.False(t, ok)
	_, ok = SessionToken(c)
	assert.False(t, ok)
}
