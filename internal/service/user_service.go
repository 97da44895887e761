package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"task-tracker/internal/auth"
	"task-tracker/internal/domain"
	"task-tracker/internal/repository"
)

// MinPasswordLength is the shortest password accepted at registration and on
// password change.
const MinPasswordLength = 6

// ProfileUpdate carries the optional changes of a profile update. Empty
// strings mean "not supplied".
type ProfileUpdate struct {
	Email           string
	CurrentPassword string
	NewPassword     string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	Profile(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
	tasks repository.TaskRepository
}

func NewUserService(users repository.UserRepository, tasks repository.TaskRepository) UserService {
	return &userService{
		users: users,
		tasks: tasks,
	}
}

func (s *userService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalid("Email and password are required")
	}
	if len(password) < MinPasswordLength {
		return nil, invalid(fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}

	// Fast path only: two concurrent registrations can both get past this
	// check, the unique index on users.email decides the winner.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("register %q: %w", email, ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, translate(err, "register %q", email)
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalid("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) Profile(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user %d", id)
	}

	tasks, err := s.tasks.ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}

	clean := sanitizeUser(user)
	clean.Tasks = tasks
	return clean, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user %d", id)
	}

	changed := false

	email := strings.TrimSpace(update.Email)
	if email != "" && email != user.Email {
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			return nil, fmt.Errorf("change email to %q: %w", email, ErrConflict)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		user.Email = email
		changed = true
	}

	if update.NewPassword != "" {
		if update.CurrentPassword == "" {
			return nil, invalid("Current password is required to change password")
		}
		ok, err := auth.CheckPassword(user.PasswordHash, update.CurrentPassword)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrIncorrectPassword
		}
		if len(update.NewPassword) < MinPasswordLength {
			return nil, invalid(fmt.Sprintf("New password must be at least %d characters long", MinPasswordLength))
		}

		hash, err := auth.HashPassword(update.NewPassword)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		changed = true
	}

	if changed {
		if err := s.users.Update(ctx, user); err != nil {
			return nil, translate(err, "user %d", id)
		}
	}

	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
