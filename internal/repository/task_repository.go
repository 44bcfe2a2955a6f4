package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/iliyamo/task-manager-api/internal/model"
)

// TaskRepo persists tasks in the 'tasks' table. Every read and write is
// scoped by owner_id: a task id that belongs to another user behaves
// exactly like a missing row.
type TaskRepo struct{ DB *sql.DB }

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{DB: db} }

const taskColumns = "id,owner_id,description,completed,created_at,updated_at"

// sortColumns maps the public sort field names to their columns. Only
// fields listed here may appear in an ORDER BY clause.
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"description": "description",
	"completed":   "completed",
}

// Create inserts a task and returns its ID.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tasks (owner_id, description, completed) VALUES (?,?,?)",
		t.OwnerID, t.Description, t.Completed)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	t.ID = uint64(id)
	return t.ID, nil
}

// GetByOwner fetches a single task by id constrained to the owner.
func (r *TaskRepo) GetByOwner(ctx context.Context, id, ownerID uint64) (model.Task, error) {
	var t model.Task
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id=? AND owner_id=? LIMIT 1",
		id, ownerID).Scan(&t.ID, &t.OwnerID, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrTaskNotFound
	}
	return t, err
}

// List returns the owner's tasks filtered, sorted and paginated per the
// query. Unset query fields impose no constraint. The WHERE/ORDER BY
// clauses are assembled from fixed fragments; only values travel as
// placeholders.
func (r *TaskRepo) List(ctx context.Context, ownerID uint64, q model.TaskQuery) ([]model.Task, error) {
	sqlStr := "SELECT " + taskColumns + " FROM tasks WHERE owner_id=?"
	args := []any{ownerID}

	if q.Completed != nil {
		sqlStr += " AND completed=?"
		args = append(args, *q.Completed)
	}
	if col, ok := sortColumns[q.SortField]; ok {
		sqlStr += " ORDER BY " + col
		if q.SortDesc {
			sqlStr += " DESC"
		} else {
			sqlStr += " ASC"
		}
	}
	if q.Limit > 0 {
		sqlStr += " LIMIT ?"
		args = append(args, q.Limit)
		if q.Skip > 0 {
			sqlStr += " OFFSET ?"
			args = append(args, q.Skip)
		}
	} else if q.Skip > 0 {
		// MySQL has no OFFSET without LIMIT; use the documented huge limit.
		sqlStr += " LIMIT " + strconv.FormatUint(1<<62, 10) + " OFFSET ?"
		args = append(args, q.Skip)
	}

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update writes the mutable task columns back to the row, still scoped by
// owner so a foreign task cannot be touched.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE tasks SET description=?, completed=? WHERE id=? AND owner_id=?",
		t.Description, t.Completed, t.ID, t.OwnerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a no-op update from a missing/foreign row.
		if _, err := r.GetByOwner(ctx, t.ID, t.OwnerID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a task by id constrained to the owner.
func (r *TaskRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM tasks WHERE id=? AND owner_id=?", id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteAllForOwner removes every task owned by the user. Used as the
// explicit cascade step when an account is deleted.
func (r *TaskRepo) DeleteAllForOwner(ctx context.Context, ownerID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM tasks WHERE owner_id=?", ownerID)
	return err
}
