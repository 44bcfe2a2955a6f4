package service

import (
	"context"
	"strings"

	"github.com/iliyamo/task-manager-api/internal/model"
)

// TaskService implements owner-scoped task CRUD. The owner is always the
// authenticated caller's identity, never client input, and a task id that
// belongs to someone else is indistinguishable from a missing one.
type TaskService struct {
	tasks TaskStore
}

func NewTaskService(tasks TaskStore) *TaskService {
	if tasks == nil {
		panic("nil store passed to NewTaskService")
	}
	return &TaskService{tasks: tasks}
}

// Create stores a new task for the owner. The description is trimmed and
// must be non-empty; completed defaults to false.
func (s *TaskService) Create(ctx context.Context, ownerID uint64, description string, completed bool) (model.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return model.Task{}, invalidf("description is required")
	}
	t := model.Task{OwnerID: ownerID, Description: description, Completed: completed}
	if _, err := s.tasks.Create(ctx, &t); err != nil {
		return model.Task{}, err
	}
	if fresh, err := s.tasks.GetByOwner(ctx, t.ID, ownerID); err == nil {
		t = fresh
	}
	return t, nil
}

// List returns the owner's tasks per the query. Absent filter, sort and
// pagination settings impose no constraint.
func (s *TaskService) List(ctx context.Context, ownerID uint64, q model.TaskQuery) ([]model.Task, error) {
	return s.tasks.List(ctx, ownerID, q)
}

// Get fetches one task by id, scoped to the owner.
func (s *TaskService) Get(ctx context.Context, ownerID, id uint64) (model.Task, error) {
	return s.tasks.GetByOwner(ctx, id, ownerID)
}

// taskFields is the set of keys a client may change on a task.
var taskFields = map[string]bool{"description": true, "completed": true}

// Update applies a partial update to an owned task. Keys outside the
// allowed set reject the whole request.
func (s *TaskService) Update(ctx context.Context, ownerID, id uint64, fields map[string]any) (model.Task, error) {
	for k := range fields {
		if !taskFields[k] {
			return model.Task{}, invalidf("invalid updates")
		}
	}
	t, err := s.tasks.GetByOwner(ctx, id, ownerID)
	if err != nil {
		return model.Task{}, err
	}
	if v, ok := fields["description"]; ok {
		str, ok := v.(string)
		if !ok {
			return model.Task{}, invalidf("description must be a string")
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return model.Task{}, invalidf("description is required")
		}
		t.Description = str
	}
	if v, ok := fields["completed"]; ok {
		b, ok := v.(bool)
		if !ok {
			return model.Task{}, invalidf("completed must be a boolean")
		}
		t.Completed = b
	}
	if err := s.tasks.Update(ctx, &t); err != nil {
		return model.Task{}, err
	}
	if fresh, err := s.tasks.GetByOwner(ctx, t.ID, ownerID); err == nil {
		t = fresh
	}
	return t, nil
}

// Delete removes one owned task.
func (s *TaskService) Delete(ctx context.Context, ownerID, id uint64) (model.Task, error) {
	t, err := s.tasks.GetByOwner(ctx, id, ownerID)
	if err != nil {
		return model.Task{}, err
	}
	if err := s.tasks.Delete(ctx, id, ownerID); err != nil {
		return model.Task{}, err
	}
	return t, nil
}
