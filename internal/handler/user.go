package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-manager-api/internal/middleware"
	"github.com/iliyamo/task-manager-api/internal/service"
)

// UserHandler bundles the services behind the account endpoints.
type UserHandler struct {
	Accounts *service.AccountService
	Tokens   *service.TokenService
}

func NewUserHandler(accounts *service.AccountService, tokens *service.TokenService) *UserHandler {
	if accounts == nil || tokens == nil {
		panic("nil service passed to NewUserHandler")
	}
	return &UserHandler{Accounts: accounts, Tokens: tokens}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register: create the account, send the welcome mail (async) and log the
// user straight in with a fresh token.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Accounts.Register(ctx, req.Name, req.Email, req.Password, req.Age)
	if err != nil {
		return fail(c, err)
	}
	token, err := h.Tokens.Issue(ctx, u)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": u.Public(), "token": token})
}

// Login: verify credentials and issue a new session token. A fresh token
// per login means every device holds its own revocable session.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Accounts.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	token, err := h.Tokens.Issue(ctx, u)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u.Public(), "token": token})
}

// Logout revokes the session token the request was authenticated with;
// other sessions of the same user stay valid.
func (h *UserHandler) Logout(c echo.Context) error {
	user, ok := middleware.SessionUser(c)
	token, ok2 := middleware.SessionToken(c)
	if !ok || !ok2 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please authenticate"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tokens.Revoke(ctx, user, token); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{})
}

// LogoutAll revokes every session token of the caller.
func (h *UserHandler) LogoutAll(c echo.Context) error {
	user, ok := middleware.SessionUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please authenticate"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tokens.RevokeAll(ctx, user); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{})
}

// Me returns the caller's own profile.
func (h *UserHandler) Me(c echo.Context) error {
	user, ok := middleware.SessionUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please authenticate"})
	}
	return c.JSON(http.StatusOK, user.Public())
}

// UpdateMe applies a partial profile update. The body is read as a key
// map, not a struct, so that unknown keys can be rejected instead of
// silently dropped.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, ok := middleware.SessionUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please authenticate"})
	}
	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	updated, err := h.Accounts.UpdateProfile(ctx, user, fields)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, updated.Public())
}

// DeleteMe removes the caller's account, cascading to its tasks, and
// queues the goodbye mail.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	user, ok := middleware.SessionUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please authenticate"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Accounts.DeleteAccount(ctx, user); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user.Public())
}
