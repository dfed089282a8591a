package domain

// TimeFormat is the timestamp layout used for task records and the
// health endpoint. It matches the format produced by earlier
// deployments, so existing task files keep loading unchanged.
const TimeFormat = "2006-01-02 15:04:05"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"

	PriorityMedium = "medium"
)

// Task is one element of the shared task collection. The JSON field set
// is both the on-disk format and the API representation: every field is
// always present, as a string.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	CreatedAt   string `json:"created_at"`
}

func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// TaskInput carries the client-supplied fields for task creation.
// Everything else (id, status, created_at) is assigned by the store.
type TaskInput struct {
	Title       string
	Description string
	Priority    string
}

// TaskPatch is a partial update: nil fields are left untouched. The id
// and created_at fields are assigned once at creation and are not
// patchable.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
}

// IsZero reports whether the patch carries no fields at all.
func (p TaskPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil
}

// Apply merges the patch into the task. Fields the patch carries
// overwrite; everything else is retained.
func (t *Task) Apply(patch TaskPatch) {
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
}
