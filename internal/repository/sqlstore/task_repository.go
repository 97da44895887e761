package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/repository"
)

var createTasksTable = map[Dialect]string{
	DialectSQLite: `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NULL,
	completed BOOLEAN NOT NULL DEFAULT 0,
	user_id INTEGER NULL REFERENCES users(id) ON DELETE SET NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
`,
	DialectPostgres: `
CREATE TABLE IF NOT EXISTS tasks (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NULL,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	user_id BIGINT NULL REFERENCES users(id) ON DELETE SET NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
`,
}

const selectTaskColumns = `SELECT id, title, description, completed, user_id, created_at, updated_at FROM tasks`

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) repository.TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTasksTable[r.db.dialect]); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (int64, error) {
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	var id int64
	err := r.db.queryRow(ctx, `
INSERT INTO tasks (title, description, completed, user_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`,
		task.Title,
		nullString(task.Description),
		task.Completed,
		nullInt64(task.UserID),
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	task.ID = id
	return id, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now().UTC()
	res, err := r.db.exec(ctx, `
UPDATE tasks
SET title=?, description=?, completed=?, updated_at=?
WHERE id=?`,
		task.Title,
		nullString(task.Description),
		task.Completed,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireAffected(res, "task update")
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.exec(ctx, `DELETE FROM tasks WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(res, "task delete")
}

func (r *TaskRepository) Get(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.queryRow(ctx, selectTaskColumns+` WHERE id=?`, id)
	return scanTask(row)
}

func (r *TaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.query(ctx, selectTaskColumns+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	return collectTasks(rows)
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Task, error) {
	rows, err := r.db.query(ctx, selectTaskColumns+` WHERE user_id=? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query user tasks: %w", err)
	}
	return collectTasks(rows)
}

// Stats counts both figures in one statement so pending never goes negative
// against a concurrent write.
func (r *TaskRepository) Stats(ctx context.Context) (domain.TaskStats, error) {
	var stats domain.TaskStats
	err := r.db.queryRow(ctx, `
SELECT COUNT(*), COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0)
FROM tasks`).Scan(&stats.Total, &stats.Completed)
	if err != nil {
		return domain.TaskStats{}, fmt.Errorf("count tasks: %w", err)
	}
	stats.Pending = stats.Total - stats.Completed
	return stats, nil
}

func collectTasks(rows *sql.Rows) ([]domain.Task, error) {
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		userID      sql.NullInt64
	)

	if err := scanner.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.Completed,
		&userID,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	if description.Valid {
		v := description.String
		task.Description = &v
	}
	if userID.Valid {
		v := userID.Int64
		task.UserID = &v
	}
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()

	return &task, nil
}

func requireAffected(res sql.Result, op string) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if aff == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
