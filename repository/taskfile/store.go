package taskfile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tasktracker/backend/domain"
	appLogger "github.com/tasktracker/backend/pkg/logger"
	"github.com/tasktracker/backend/repository"
)

// Store persists the whole task collection as one JSON array in one
// file. Every mutation is load, modify in memory, save, all under a
// single lock, so concurrent requests cannot lose writes to each other.
type Store struct {
	path   string
	logger *zap.Logger

	mu sync.Mutex
}

// New creates a file-backed task store. The file and its parent
// directories are created lazily on first save.
func New(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

var _ repository.TaskRepository = (*Store)(nil)

// Load reads the full collection. A missing or zero-byte file is an
// empty collection, not an error. A file that exists but does not parse
// is reported as corruption; treating it as empty would lose the data
// on the next save.
func (s *Store) Load(ctx context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Save overwrites the file with the full serialized collection,
// creating parent directories when needed. The write goes through a
// temp file and rename so a crash mid-write cannot leave a half
// document behind.
func (s *Store) Save(ctx context.Context, tasks []domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(tasks)
}

// List returns the collection unmodified, in storage order. The result
// is never nil so it serializes as [] rather than null.
func (s *Store) List(ctx context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// Create appends a new task and persists the whole collection. The id
// is assigned once at creation and never changes.
func (s *Store) Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	task := domain.Task{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.StatusPending,
		Priority:    input.Priority,
		CreatedAt:   time.Now().Format(domain.TimeFormat),
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}

	tasks = append(tasks, task)
	if err := s.saveLocked(tasks); err != nil {
		return nil, err
	}

	appLogger.WithRequestID(ctx, s.logger).Info("task created", zap.String("task_id", task.ID))
	return &task, nil
}

// Update merges the patch into the first task with a matching id
// (storage order) and persists the collection. An empty patch returns
// the task without rewriting the file; when no task matches, the file
// is left untouched either way.
func (s *Store) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		if patch.IsZero() {
			found := tasks[i]
			return &found, nil
		}
		tasks[i].Apply(patch)
		if err := s.saveLocked(tasks); err != nil {
			return nil, err
		}
		updated := tasks[i]
		return &updated, nil
	}

	return nil, domain.ErrTaskNotFound
}

func (s *Store) loadLocked() ([]domain.Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		// Interrupted first save, not corruption.
		return nil, nil
	}

	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, domain.WrapError(domain.ErrCodeCorrupt, "task file corrupted", err)
	}
	return tasks, nil
}

func (s *Store) saveLocked(tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, data, 0o644)
}

// writeFileAtomic replaces path via a temp file in the same directory
// followed by a rename, syncing the contents before the swap.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
