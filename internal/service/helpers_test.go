package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"task-tracker/internal/repository"
	"task-tracker/internal/repository/sqlstore"
	"task-tracker/internal/storage"
)

func newTestRepos(t *testing.T) (repository.TaskRepository, repository.UserRepository) {
	t.Helper()

	db, err := sqlstore.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := sqlstore.NewUserRepository(db)
	tasks := sqlstore.NewTaskRepository(db)
	require.NoError(t, users.Init(ctx))
	require.NoError(t, tasks.Init(ctx))
	return tasks, users
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
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
	now := time.Now()
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data)), LastModified: &now})
		}
	}
	return out, nil
}

func (m *memoryStorage) GetObjectURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://" + bucket + ".example.com/" + key + "?signed", nil
}

func (m *memoryStorage) get(key string) *bytes.Reader {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bytes.NewReader(m.objects[key])
}

func ptr[T any](v T) *T { return &v }
