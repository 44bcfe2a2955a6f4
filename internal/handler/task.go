package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-manager-api/internal/middleware"
	"github.com/iliyamo/task-manager-api/internal/model"
	"github.com/iliyamo/task-manager-api/internal/service"
)

// TaskHandler serves the owner-scoped task CRUD endpoints. All routes are
// behind the auth gate, so the owner is always the session user.
type TaskHandler struct {
	Tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	if tasks == nil {
		panic("nil service passed to NewTaskHandler")
	}
	return &TaskHandler{Tasks: tasks}
}

type createTaskReq struct {
	Description string `json:"description" validate:"required"`
	Completed   bool   `json:"completed"`
}

// Create stores a new task owned by the caller.
func (h *TaskHandler) Create(c echo.Context) error {
	user, ok := middleware.SessionUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please authenticate"})
	}
	var req createTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description is required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.Tasks.Create(ctx, user.ID, req.Description, req.Completed)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// List returns the caller's tasks.
// GET /tasks?completed=true
// GET /tasks?limit=10&skip=20
// GET /tasks?sortBy=createdAt:desc
// Absent parameters impose no constraint: all tasks, unspecified order.
func (h *TaskHandler) List(c echo.Context) error {
	user, ok := middleware.SessionUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please authenticate"})
	}

	q := taskQueryFrom(c)

	ctx, cancel := reqCtx(c)
	defer cancel()
	tasks, err := h.Tasks.List(ctx, user.ID, q)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// Get fetches one of the caller's tasks by id. Someone else's task id
// answers 404, exactly like a task that does not exist.
func (h *TaskHandler) Get(c echo.Context) error {
	user, ok := middleware.SessionUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please authenticate"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.Tasks.Get(ctx, user.ID, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Update applies a partial update to one of the caller's tasks. The body
// is read as a key map so unknown keys reject the request.
func (h *TaskHandler) Update(c echo.Context) error {
	user, ok := middleware.SessionUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please authenticate"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.Tasks.Update(ctx, user.ID, id, fields)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Delete removes one of the caller's tasks and returns it.
func (h *TaskHandler) Delete(c echo.Context) error {
	user, ok := middleware.SessionUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please authenticate"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.Tasks.Delete(ctx, user.ID, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// taskQueryFrom reads the optional completed/sortBy/limit/skip query
// parameters. Values that do not parse are treated as absent.
func taskQueryFrom(c echo.Context) model.TaskQuery {
	var q model.TaskQuery

	if v := c.QueryParam("completed"); v != "" {
		b := v == "true"
		q.Completed = &b
	}
	if v := c.QueryParam("sortBy"); v != "" {
		parts := strings.SplitN(v, ":", 2)
		q.SortField = parts[0]
		q.SortDesc = len(parts) == 2 && parts[1] == "desc"
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Limit = n
		}
	}
	if v := c.QueryParam("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Skip = n
		}
	}
	return q
}
