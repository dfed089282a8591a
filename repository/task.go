package repository

import (
	"context"

	"github.com/tasktracker/backend/domain"
)

// TaskRepository is the task store contract consumed by the use case
// layer. There is deliberately no delete and no filtering: the
// collection is one shared, append-and-update-only list returned in
// storage order.
type TaskRepository interface {
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error)
	Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
}
