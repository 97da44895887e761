package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"task-tracker/internal/domain"
	"task-tracker/internal/repository"
)

// TaskService coordinates task level operations backed by repositories.
type TaskService interface {
	CreateTask(ctx context.Context, title string, description *string, ownerID *int64) (*domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
	UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	Stats(ctx context.Context) (domain.TaskStats, error)
}

type taskService struct {
	tasks repository.TaskRepository
}

func NewTaskService(tasks repository.TaskRepository) TaskService {
	return &taskService{tasks: tasks}
}

func (s *taskService) CreateTask(ctx context.Context, title string, description *string, ownerID *int64) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalid("Title is required")
	}
	if description != nil && *description == "" {
		description = nil
	}

	task := &domain.Task{
		Title:       title,
		Description: description,
		UserID:      ownerID,
	}
	if _, err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "task %d", id)
	}
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return s.tasks.List(ctx)
}

func (s *taskService) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, invalid("Title cannot be empty")
		}
		patch.Title = &title
	}

	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "task %d", id)
	}
	if patch.Empty() {
		return task, nil
	}

	patch.Apply(task)
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, translate(err, "task %d", id)
	}
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, id int64) error {
	return translate(s.tasks.Delete(ctx, id), "task %d", id)
}

func (s *taskService) Stats(ctx context.Context) (domain.TaskStats, error) {
	return s.tasks.Stats(ctx)
}

// translate maps repository sentinels onto the service taxonomy.
func translate(err error, format string, args ...any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
	default:
		return err
	}
}
