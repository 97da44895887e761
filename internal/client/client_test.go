package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/auth"
	api "task-tracker/internal/http"
	"task-tracker/internal/repository/sqlstore"
	"task-tracker/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlstore.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := sqlstore.NewUserRepository(db)
	tasks := sqlstore.NewTaskRepository(db)
	require.NoError(t, users.Init(ctx))
	require.NoError(t, tasks.Init(ctx))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	router := gin.New()
	api.NewHandler(api.Options{
		Tasks:       service.NewTaskService(tasks),
		Users:       service.NewUserService(users, tasks),
		Exports:     service.NewExportService(tasks, nil, service.ExportConfig{}),
		Tokens:      auth.NewIssuer("client-secret", time.Hour),
		Logger:      logger,
		Environment: "test",
	}).RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestTaskLifecycle(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL+"/", WithHTTPClient(srv.Client()))
	ctx := context.Background()

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OK", health.Status)

	tasks, err := c.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	desc := "two litres"
	created, err := c.CreateTask(ctx, "  Buy milk  ", &desc)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", created.Title)
	require.NotNil(t, created.Description)
	assert.Equal(t, desc, *created.Description)
	assert.False(t, created.Completed)
	assert.Nil(t, created.UserID)
	assert.False(t, created.CreatedAt.IsZero())

	done := true
	updated, err := c.UpdateTask(ctx, created.ID, TaskUpdate{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Title)

	fetched, err := c.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Completed)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Completed: 1, Pending: 0}, *stats)

	require.NoError(t, c.DeleteTask(ctx, created.ID))

	_, err = c.GetTask(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Task not found", apiErr.Message)
}

func TestCreateTaskValidationError(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, WithHTTPClient(srv.Client()))

	_, err := c.CreateTask(context.Background(), "   ", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Title is required", apiErr.Message)
}

func TestAccountFlow(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, WithHTTPClient(srv.Client()))
	ctx := context.Background()

	user, err := c.Register(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)

	_, err = c.Register(ctx, "ada@example.com", "secret1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)

	_, err = c.Profile(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Access token required", apiErr.Message)

	session, err := c.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	owned, err := c.CreateTask(ctx, "Mine", nil)
	require.NoError(t, err)
	require.NotNil(t, owned.UserID)
	assert.Equal(t, user.ID, *owned.UserID)

	profile, err := c.Profile(ctx)
	require.NoError(t, err)
	require.Len(t, profile.Tasks, 1)
	assert.Equal(t, "Mine", profile.Tasks[0].Title)

	updated, err := c.UpdateProfile(ctx, ProfileUpdate{
		CurrentPassword: "secret1",
		NewPassword:     "secret2",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", updated.Email)

	_, err = c.Export(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)

	require.NoError(t, c.Logout(ctx))
	_, err = c.Profile(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	_, err = c.Login(ctx, "ada@example.com", "secret2")
	require.NoError(t, err)
}

func TestDecodeErrorFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListTasks(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestUpdateTaskClearsDescription(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, WithHTTPClient(srv.Client()))
	ctx := context.Background()

	desc := "notes"
	created, err := c.CreateTask(ctx, "Read", &desc)
	require.NoError(t, err)
	require.NotNil(t, created.Description)

	updated, err := c.UpdateTask(ctx, created.ID, TaskUpdate{ClearDescription: true})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
	assert.Equal(t, "Read", updated.Title)
}

func TestTaskUpdateJSON(t *testing.T) {
	title, desc, done := "t", "d", false

	for name, tc := range map[string]struct {
		update TaskUpdate
		want   string
	}{
		"empty":      {TaskUpdate{}, `{}`},
		"all fields": {TaskUpdate{Title: &title, Description: &desc, Completed: &done}, `{"title":"t","description":"d","completed":false}`},
		"clear":      {TaskUpdate{ClearDescription: true}, `{"description":null}`},
		"clear wins": {TaskUpdate{Description: &desc, ClearDescription: true}, `{"description":null}`},
	} {
		t.Run(name, func(t *testing.T) {
			raw, err := json.Marshal(tc.update)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(raw))
		})
	}
}

func TestTokenConcurrentUse(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, WithHTTPClient(srv.Client()), WithToken("initial"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.SetToken("token-" + strconv.Itoa(i))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = c.Health(context.Background())
		}()
	}
	wg.Wait()
	assert.Contains(t, c.Token(), "token-")
}
