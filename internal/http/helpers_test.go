package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/auth"
	"task-tracker/internal/repository/sqlstore"
	"task-tracker/internal/service"
	"task-tracker/internal/storage"
)

const testSecret = "test-secret"

type testEnv struct {
	router *gin.Engine
	tokens *auth.Issuer
	store  *memoryStorage
}

type envOption func(*Options, *service.ExportConfig)

func production() envOption {
	return func(o *Options, _ *service.ExportConfig) {
		o.Development = false
		o.Environment = "production"
	}
}

func withBucket(bucket string) envOption {
	return func(_ *Options, cfg *service.ExportConfig) {
		cfg.Bucket = bucket
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
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

	store := &memoryStorage{objects: map[string][]byte{}}
	tokens := auth.NewIssuer(testSecret, time.Hour)
	handlerOpts := Options{
		Tasks:       service.NewTaskService(tasks),
		Users:       service.NewUserService(users, tasks),
		Tokens:      tokens,
		Logger:      logger,
		Environment: "development",
		Development: true,
	}
	exportCfg := service.ExportConfig{KeyPrefix: "exports"}
	for _, opt := range opts {
		opt(&handlerOpts, &exportCfg)
	}
	handlerOpts.Exports = service.NewExportService(tasks, store, exportCfg)

	router := gin.New()
	NewHandler(handlerOpts).RegisterRoutes(router)
	return &testEnv{router: router, tokens: tokens, store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin creates an account and returns its bearer token.
func (e *testEnv) registerAndLogin(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/users/register", gin.H{"email": email, "password": password}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/users/login", gin.H{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryStorage) Put(_ context.Context, body io.Reader, opts storage.PutOptions) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[opts.Key] = data
	return "s3://" + opts.Bucket + "/" + opts.Key, nil
}

func (m *memoryStorage) ListObjects(_ context.Context, _, prefix string) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.ObjectInfo
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (m *memoryStorage) GetObjectURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://" + bucket + ".example.com/" + key, nil
}
