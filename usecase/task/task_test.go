package task

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/tasktracker/backend/domain"
	"github.com/tasktracker/backend/repository/taskfile"
)

func newTestUseCase(t *testing.T) *UseCase {
	t.Helper()
	store := taskfile.New(filepath.Join(t.TempDir(), "tasks.json"), zap.NewNop())
	return New(store, zap.NewNop())
}

func TestListEmptyStoreReturnsEmptySlice(t *testing.T) {
	uc := newTestUseCase(t)

	tasks, err := uc.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if tasks == nil {
		t.Fatal("got nil slice, want empty slice")
	}
	if len(tasks) != 0 {
		t.Fatalf("got %d tasks, want 0", len(tasks))
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	for name, title := range map[string]string{
		"empty":      "",
		"whitespace": "   ",
	} {
		if _, err := uc.CreateTask(ctx, domain.TaskInput{Title: title}); !errors.Is(err, domain.ErrTitleRequired) {
			t.Errorf("%s title returned %v, want %v", name, err, domain.ErrTitleRequired)
		}
	}

	tasks, err := uc.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("rejected creates still stored %d tasks", len(tasks))
	}
}

func TestCreateThenList(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	created, err := uc.CreateTask(ctx, domain.TaskInput{Title: "write report", Description: "q3 numbers"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if created.Status != domain.StatusPending {
		t.Errorf("got status %q, want %q", created.Status, domain.StatusPending)
	}

	tasks, err := uc.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != created.ID {
		t.Fatalf("list returned %+v, want the created task", tasks)
	}
}

func TestUpdateDelegatesNotFound(t *testing.T) {
	uc := newTestUseCase(t)

	status := domain.StatusCompleted
	_, err := uc.UpdateTask(context.Background(), "doesnotexist", domain.TaskPatch{Status: &status})
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("got %v, want %v", err, domain.ErrTaskNotFound)
	}
}
