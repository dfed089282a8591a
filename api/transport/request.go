package transport

import "github.com/tasktracker/backend/domain"

// TaskCreateRequest is the JSON body accepted by POST /api/tasks.
type TaskCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func (r TaskCreateRequest) Input() domain.TaskInput {
	return domain.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
	}
}

// TaskUpdateRequest is the JSON body accepted by PUT /api/tasks/{id}.
// Pointer fields distinguish absent from set-to-empty, so only the
// fields present in the body touch the stored task.
type TaskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
}

func (r TaskUpdateRequest) Patch() domain.TaskPatch {
	return domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
	}
}
