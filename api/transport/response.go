package transport

// ErrorResponse is the error body of the JSON API: a single
// human-readable message under the "error" key. Task and task-list
// responses carry the domain objects bare, without a wrapper.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewError builds an error body from a message.
func NewError(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}
