package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-manager-api/internal/avatar"
	"github.com/iliyamo/task-manager-api/internal/middleware"
	"github.com/iliyamo/task-manager-api/internal/service"
)

// AvatarHandler serves avatar upload, deletion and fetch.
type AvatarHandler struct {
	Accounts *service.AccountService
}

func NewAvatarHandler(accounts *service.AccountService) *AvatarHandler {
	if accounts == nil {
		panic("nil service passed to NewAvatarHandler")
	}
	return &AvatarHandler{Accounts: accounts}
}

// Upload accepts a multipart form with an "avatar" file field, normalizes
// the image to a fixed-size PNG and stores it on the caller's account.
// The same route serves both first upload and replacement.
func (h *AvatarHandler) Upload(c echo.Context) error {
	user, ok := middleware.SessionUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please authenticate"})
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "avatar file is required"})
	}
	if file.Size > avatar.MaxUploadBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image too large"})
	}
	if !allowedImageName(file.Filename) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "please upload a jpg, jpeg or png image"})
	}

	src, err := file.Open()
	if err != nil {
		return fail(c, err)
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, avatar.MaxUploadBytes+1))
	if err != nil {
		return fail(c, err)
	}
	if len(data) > avatar.MaxUploadBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image too large"})
	}

	png, err := avatar.Normalize(data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "please upload a jpg, jpeg or png image"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Accounts.SetAvatar(ctx, user, png); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{})
}

// Delete clears the caller's avatar.
func (h *AvatarHandler) Delete(c echo.Context) error {
	user, ok := middleware.SessionUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please authenticate"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Accounts.ClearAvatar(ctx, user); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{})
}

// Get serves any user's avatar by id as a PNG. This endpoint is public on
// purpose so avatars can be embedded without a session; every other
// user-data route requires a token.
func (h *AvatarHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	data, err := h.Accounts.Avatar(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

// allowedImageName checks the upload's filename extension.
func allowedImageName(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".jpg") ||
		strings.HasSuffix(name, ".jpeg") ||
		strings.HasSuffix(name, ".png")
}
