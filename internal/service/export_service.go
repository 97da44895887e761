package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"task-tracker/internal/domain"
	"task-tracker/internal/repository"
	"task-tracker/internal/storage"
)

// Export describes a snapshot written to object storage.
type Export struct {
	Key       string
	Location  string
	URL       string
	Size      int64
	CreatedAt time.Time
}

// ExportService writes JSON snapshots of the task list to object storage.
type ExportService interface {
	Export(ctx context.Context, ownerID int64) (*Export, error)
	ListExports(ctx context.Context, ownerID int64) ([]Export, error)
}

// ExportConfig selects where snapshots go.
type ExportConfig struct {
	Bucket    string
	KeyPrefix string
	URLExpiry time.Duration
}

type exportService struct {
	tasks   repository.TaskRepository
	storage storage.Service
	cfg     ExportConfig
	now     func() time.Time
}

// NewExportService returns a service that reports ErrStorageUnavailable for
// every call when store is nil or no bucket is configured.
func NewExportService(tasks repository.TaskRepository, store storage.Service, cfg ExportConfig) ExportService {
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 15 * time.Minute
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &exportService{
		tasks:   tasks,
		storage: store,
		cfg:     cfg,
		now:     time.Now,
	}
}

type snapshot struct {
	ExportedAt string         `json:"exportedAt"`
	ExportedBy int64          `json:"exportedBy"`
	Stats      snapshotStats  `json:"stats"`
	Tasks      []snapshotTask `json:"tasks"`
}

type snapshotStats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
}

type snapshotTask struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	UserID      *int64  `json:"userId"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func (s *exportService) available() bool {
	return s.storage != nil && s.cfg.Bucket != ""
}

func (s *exportService) ownerPrefix(ownerID int64) string {
	return path.Join(s.cfg.KeyPrefix, strconv.FormatInt(ownerID, 10)) + "/"
}

func (s *exportService) Export(ctx context.Context, ownerID int64) (*Export, error) {
	if !s.available() {
		return nil, ErrStorageUnavailable
	}

	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.tasks.Stats(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	snap := snapshot{
		ExportedAt: now.Format(time.RFC3339),
		ExportedBy: ownerID,
		Stats:      snapshotStats{Total: stats.Total, Completed: stats.Completed, Pending: stats.Pending},
		Tasks:      make([]snapshotTask, len(tasks)),
	}
	for i, t := range tasks {
		snap.Tasks[i] = toSnapshotTask(t)
	}

	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	key := s.ownerPrefix(ownerID) + fmt.Sprintf("%s-%s.json", now.Format("20060102T150405Z"), uuid.NewString())
	location, err := s.storage.Put(ctx, bytes.NewReader(body), storage.PutOptions{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		ContentType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	url, err := s.storage.GetObjectURL(ctx, s.cfg.Bucket, key, s.cfg.URLExpiry)
	if err != nil {
		return nil, err
	}

	return &Export{
		Key:       key,
		Location:  location,
		URL:       url,
		Size:      int64(len(body)),
		CreatedAt: now,
	}, nil
}

func (s *exportService) ListExports(ctx context.Context, ownerID int64) ([]Export, error) {
	if !s.available() {
		return nil, ErrStorageUnavailable
	}

	objects, err := s.storage.ListObjects(ctx, s.cfg.Bucket, s.ownerPrefix(ownerID))
	if err != nil {
		return nil, err
	}

	exports := make([]Export, 0, len(objects))
	for _, obj := range objects {
		exp := Export{
			Key:      obj.Key,
			Location: fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, obj.Key),
			Size:     obj.Size,
		}
		if obj.LastModified != nil {
			exp.CreatedAt = obj.LastModified.UTC()
		}
		exports = append(exports, exp)
	}
	sort.SliceStable(exports, func(i, j int) bool {
		return exports[i].Key > exports[j].Key
	})
	return exports, nil
}

func toSnapshotTask(t domain.Task) snapshotTask {
	return snapshotTask{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339Nano),
	}
}
