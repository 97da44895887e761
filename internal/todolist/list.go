// Package todolist holds the state behind the to-do list view: the loaded
// tasks, the pending input text and the load status. Every change goes
// through the API and local state follows the server's answer.
package todolist

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"task-tracker/internal/client"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrUnknownTask is returned when an action names a task that is not loaded.
var ErrUnknownTask = errors.New("task not in list")

// API is the subset of the HTTP client the list needs.
type API interface {
	ListTasks(ctx context.Context) ([]client.Task, error)
	CreateTask(ctx context.Context, title string, description *string) (*client.Task, error)
	UpdateTask(ctx context.Context, id int64, update client.TaskUpdate) (*client.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// State is a copy of the list at one point in time.
type State struct {
	Status Status
	Tasks  []client.Task
	Input  string
	Err    error
}

// Remaining counts tasks not yet completed.
func (s State) Remaining() int {
	n := 0
	for _, t := range s.Tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

type List struct {
	api    API
	logger *logrus.Logger

	mu     sync.Mutex
	status Status
	tasks  []client.Task
	input  string
	err    error
}

func New(api API, logger *logrus.Logger) *List {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &List{api: api, logger: logger}
}

func (l *List) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	tasks := make([]client.Task, len(l.tasks))
	copy(tasks, l.tasks)
	return State{Status: l.status, Tasks: tasks, Input: l.input, Err: l.err}
}

func (l *List) SetInput(text string) {
	l.mu.Lock()
	l.input = text
	l.mu.Unlock()
}

// Load replaces local state with the server's task list.
func (l *List) Load(ctx context.Context) error {
	l.mu.Lock()
	l.status = StatusLoading
	l.err = nil
	l.mu.Unlock()

	tasks, err := l.api.ListTasks(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.status = StatusFailed
		l.err = err
		l.logger.WithError(err).Error("failed to load tasks")
		return err
	}
	if tasks == nil {
		tasks = []client.Task{}
	}
	l.tasks = tasks
	l.status = StatusReady
	return nil
}

// Submit adds the current input as a new task. The input is cleared before
// the request is sent.
func (l *List) Submit(ctx context.Context) error {
	l.mu.Lock()
	text := l.input
	l.input = ""
	l.mu.Unlock()
	return l.Add(ctx, text)
}

// Add creates a task from text. Blank text is ignored.
func (l *List) Add(ctx context.Context, text string) error {
	title := strings.TrimSpace(text)
	if title == "" {
		return nil
	}

	task, err := l.api.CreateTask(ctx, title, nil)
	if err != nil {
		return l.fail(err, "failed to add task", logrus.Fields{"title": title})
	}

	l.mu.Lock()
	l.tasks = append([]client.Task{*task}, l.tasks...)
	l.err = nil
	l.mu.Unlock()
	return nil
}

// Toggle flips the completed flag of a loaded task.
func (l *List) Toggle(ctx context.Context, id int64) error {
	l.mu.Lock()
	idx := l.indexOf(id)
	if idx < 0 {
		l.mu.Unlock()
		return ErrUnknownTask
	}
	completed := !l.tasks[idx].Completed
	l.mu.Unlock()

	task, err := l.api.UpdateTask(ctx, id, client.TaskUpdate{Completed: &completed})
	if err != nil {
		return l.fail(err, "failed to update task", logrus.Fields{"task_id": id})
	}

	l.mu.Lock()
	if idx := l.indexOf(id); idx >= 0 {
		l.tasks[idx] = *task
	}
	l.err = nil
	l.mu.Unlock()
	return nil
}

// Delete removes a task on the server and then from the list.
func (l *List) Delete(ctx context.Context, id int64) error {
	l.mu.Lock()
	known := l.indexOf(id) >= 0
	l.mu.Unlock()
	if !known {
		return ErrUnknownTask
	}

	if err := l.api.DeleteTask(ctx, id); err != nil {
		return l.fail(err, "failed to delete task", logrus.Fields{"task_id": id})
	}

	l.mu.Lock()
	if idx := l.indexOf(id); idx >= 0 {
		l.tasks = append(l.tasks[:idx], l.tasks[idx+1:]...)
	}
	l.err = nil
	l.mu.Unlock()
	return nil
}

// indexOf must be called with mu held.
func (l *List) indexOf(id int64) int {
	for i := range l.tasks {
		if l.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// fail records an action error. Local tasks are left as they were.
func (l *List) fail(err error, msg string, fields logrus.Fields) error {
	l.logger.WithFields(fields).WithError(err).Error(msg)
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
	return err
}
