package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/task-manager-api/internal/handler"
	"github.com/iliyamo/task-manager-api/internal/memstore"
	"github.com/iliyamo/task-manager-api/internal/model"
	"github.com/iliyamo/task-manager-api/internal/router"
	"github.com/iliyamo/task-manager-api/internal/service"
	"github.com/iliyamo/task-manager-api/internal/validation"
)

// app is the whole HTTP surface wired over in-memory stores, exactly as
// main assembles it minus MySQL, Redis and the broker.
type app struct {
	e      *echo.Echo
	events *memstore.CapturePublisher
}

func newApp(t *testing.T) *app {
	t.Helper()

	users := memstore.NewUsers()
	tokens := memstore.NewTokens()
	tasks := memstore.NewTasks()
	events := &memstore.CapturePublisher{}
	v := validation.New()

	accounts := service.NewAccountService(users, tasks, events, v, 4)
	tokenSvc := service.NewTokenService("api-test-secret", 0, users, tokens)
	taskSvc := service.NewTaskService(tasks)

	e := echo.New()
	e.Validator = &validation.EchoValidator{V: v}
	router.Register(e,
		handler.NewUserHandler(accounts, tokenSvc),
		handler.NewAvatarHandler(accounts),
		handler.NewTaskHandler(taskSvc),
		tokenSvc,
	)
	return &app{e: e, events: events}
}

// do performs a JSON request against the wired routes.
func (a *app) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

type sessionResp struct {
	User  model.PublicUser `json:"user"`
	Token string           `json:"token"`
}

func (a *app) register(t *testing.T, name, email, password string) sessionResp {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/users", "", echo.Map{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var s sessionResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	require.NotEmpty(t, s.Token)
	return s
}

func (a *app) createTask(t *testing.T, token, description string) model.Task {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/tasks", token, echo.Map{"description": description})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var task model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	return task
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	rec := a.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterReturnsSessionWithoutSecrets(t *testing.T) {
	a := newApp(t)
	s := a.register(t, "Mike", "mike@example.com", "secret1")

	assert.Equal(t, "Mike", s.User.Name)
	assert.Equal(t, "mike@example.com", s.User.Email)
	assert.NotContains(t, s.Token, " ")

	// The raw response must not carry the password in any form.
	raw := a.do(t, http.MethodGet, "/users/me", s.Token, nil).Body.String()
	assert.NotContains(t, raw, "secret1")
	assert.NotContains(t, raw, "password")

	// Fresh token grants access to the caller's own profile.
	rec := a.do(t, http.MethodGet, "/users/me", s.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	a := newApp(t)
	a.register(t, "Mike", "mike@example.com", "secret1")

	cases := []struct {
		name string
		body echo.Map
	}{
		{"duplicate email", echo.Map{"name": "Other", "email": "mike@example.com", "password": "secret1"}},
		{"uppercased duplicate", echo.Map{"name": "Other", "email": "MIKE@example.com", "password": "secret1"}},
		{"password contains password", echo.Map{"name": "Anna", "email": "anna@example.com", "password": "myPassword1"}},
		{"short password", echo.Map{"name": "Anna", "email": "anna@example.com", "password": "abc"}},
		{"missing email", echo.Map{"name": "Anna", "password": "secret1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := a.do(t, http.MethodPost, "/users", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestLoginIssuesDistinctRevocableSessions(t *testing.T) {
	a := newApp(t)
	first := a.register(t, "Mike", "mike@example.com", "secret1")

	// Wrong password and unknown email answer identically.
	rec := a.do(t, http.MethodPost, "/users/login", "", echo.Map{"email": "mike@example.com", "password": "wrong111"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	wrongPass := rec.Body.String()
	rec = a.do(t, http.MethodPost, "/users/login", "", echo.Map{"email": "nobody@example.com", "password": "secret1"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, wrongPass, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/users/login", "", echo.Map{"email": "mike@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var second sessionResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.NotEqual(t, first.Token, second.Token)

	// Logout kills only the session it was called with.
	rec = a.do(t, http.MethodPost, "/users/logout", second.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/users/me", second.Token, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/users/me", first.Token, nil).Code)

	// logoutAll kills the rest.
	third := sessionResp{}
	rec = a.do(t, http.MethodPost, "/users/login", "", echo.Map{"email": "mike@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &third))

	rec = a.do(t, http.MethodPost, "/users/logoutAll", first.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/users/me", first.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/users/me", third.Token, nil).Code)
}

func TestTaskLifecycle(t *testing.T) {
	a := newApp(t)
	s := a.register(t, "Mike", "mike@example.com", "secret1")

	task := a.createTask(t, s.Token, "Eat lunch")
	assert.False(t, task.Completed)
	assert.Equal(t, "Eat lunch", task.Description)

	// Only open tasks match completed=false.
	rec := a.do(t, http.MethodGet, "/tasks?completed=false", s.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var open []model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &open))
	require.Len(t, open, 1)

	// Complete it and the filter flips.
	rec = a.do(t, http.MethodPatch, fmt.Sprintf("/tasks/%d", task.ID), s.Token, echo.Map{"completed": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/tasks?completed=false", s.Token, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &open))
	assert.Empty(t, open)
	rec = a.do(t, http.MethodGet, "/tasks?completed=true", s.Token, nil)
	var done []model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &done))
	assert.Len(t, done, 1)

	// Delete answers with the removed task, then the id is gone.
	rec = a.do(t, http.MethodDelete, fmt.Sprintf("/tasks/%d", task.ID), s.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var deleted model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
	assert.Equal(t, task.ID, deleted.ID)

	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d", task.ID), s.Token, nil).Code)
}

func TestTaskListSortAndPagination(t *testing.T) {
	a := newApp(t)
	s := a.register(t, "Mike", "mike@example.com", "secret1")
	for _, d := range []string{"alpha", "bravo", "charlie"} {
		a.createTask(t, s.Token, d)
	}

	rec := a.do(t, http.MethodGet, "/tasks?sortBy=description:desc&limit=2", s.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, "charlie", tasks[0].Description)
	assert.Equal(t, "bravo", tasks[1].Description)

	rec = a.do(t, http.MethodGet, "/tasks?sortBy=description&skip=2", s.Token, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "charlie", tasks[0].Description)
}

func TestTasksAreInvisibleAcrossOwners(t *testing.T) {
	a := newApp(t)
	mike := a.register(t, "Mike", "mike@example.com", "secret1")
	anna := a.register(t, "Anna", "anna@example.com", "secret2")

	task := a.createTask(t, mike.Token, "Mike's errand")

	path := fmt.Sprintf("/tasks/%d", task.ID)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, path, anna.Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodPatch, path, anna.Token, echo.Map{"completed": true}).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodDelete, path, anna.Token, nil).Code)

	rec := a.do(t, http.MethodGet, "/tasks", anna.Token, nil)
	var tasks []model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	assert.Empty(t, tasks)

	// Nothing happened to the task itself.
	rec = a.do(t, http.MethodGet, path, mike.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProfileUpdate(t *testing.T) {
	a := newApp(t)
	s := a.register(t, "Mike", "mike@example.com", "secret1")

	rec := a.do(t, http.MethodPatch, "/users/me", s.Token, echo.Map{"age": 31, "name": "Michael"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var u model.PublicUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, 31, u.Age)
	assert.Equal(t, "Michael", u.Name)

	// Unknown keys reject the whole request.
	rec = a.do(t, http.MethodPatch, "/users/me", s.Token, echo.Map{"height": 180})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Changing the password takes effect on the next login.
	rec = a.do(t, http.MethodPatch, "/users/me", s.Token, echo.Map{"password": "newpass9"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusUnauthorized,
		a.do(t, http.MethodPost, "/users/login", "", echo.Map{"email": "mike@example.com", "password": "secret1"}).Code)
	assert.Equal(t, http.StatusOK,
		a.do(t, http.MethodPost, "/users/login", "", echo.Map{"email": "mike@example.com", "password": "newpass9"}).Code)
}

func TestDeleteAccount(t *testing.T) {
	a := newApp(t)
	s := a.register(t, "Mike", "mike@example.com", "secret1")
	a.createTask(t, s.Token, "stale errand")

	rec := a.do(t, http.MethodDelete, "/users/me", s.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var u model.PublicUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, "mike@example.com", u.Email)

	// The session died with the account.
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/users/me", s.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		a.do(t, http.MethodPost, "/users/login", "", echo.Map{"email": "mike@example.com", "password": "secret1"}).Code)

	// The address is free for a new account again.
	a.register(t, "Mike II", "mike@example.com", "secret1")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newApp(t)
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/users/me"},
		{http.MethodPatch, "/users/me"},
		{http.MethodDelete, "/users/me"},
		{http.MethodPost, "/users/logout"},
		{http.MethodGet, "/tasks"},
		{http.MethodPost, "/tasks"},
	} {
		rec := a.do(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

// multipartAvatar builds an upload request around a generated image.
func multipartAvatar(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("avatar", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func testImagePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 200, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (a *app) uploadAvatar(t *testing.T, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartAvatar(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/users/me/avatar", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func TestAvatarUploadFetchDelete(t *testing.T) {
	a := newApp(t)
	s := a.register(t, "Mike", "mike@example.com", "secret1")
	fetchPath := fmt.Sprintf("/users/%d/avatar", s.User.ID)

	// No avatar yet.
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, fetchPath, "", nil).Code)

	rec := a.uploadAvatar(t, s.Token, "me.png", testImagePNG(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Fetch is public and always answers a normalized PNG.
	rec = a.do(t, http.MethodGet, fetchPath, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 250, img.Bounds().Dx())
	assert.Equal(t, 250, img.Bounds().Dy())

	rec = a.do(t, http.MethodDelete, "/users/me/avatar", s.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, fetchPath, "", nil).Code)
}

func TestAvatarUploadRejectsBadFiles(t *testing.T) {
	a := newApp(t)
	s := a.register(t, "Mike", "mike@example.com", "secret1")

	// Wrong extension.
	rec := a.uploadAvatar(t, s.Token, "notes.txt", testImagePNG(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Right extension, not an image.
	rec = a.uploadAvatar(t, s.Token, "fake.png", []byte("not an image at all"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing file field.
	rec = a.do(t, http.MethodPost, "/users/me/avatar", s.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
