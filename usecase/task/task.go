package task

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/tasktracker/backend/domain"
	"github.com/tasktracker/backend/repository"
)

type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

// ListTasks returns every stored task in storage order. Callers always
// get a non-nil slice so the JSON rendering of an empty store is [].
func (uc *UseCase) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := uc.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (uc *UseCase) CreateTask(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, domain.ErrTitleRequired
	}
	return uc.tasks.Create(ctx, input)
}

func (uc *UseCase) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	return uc.tasks.Update(ctx, id, patch)
}
