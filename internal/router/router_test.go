package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap"

	apiHandler "github.com/tasktracker/backend/api/handler"
	"github.com/tasktracker/backend/domain"
	boltinfra "github.com/tasktracker/backend/internal/infrastructure/bolt"
	sqliteinfra "github.com/tasktracker/backend/internal/infrastructure/sqlite"
	"github.com/tasktracker/backend/internal/middleware"
	boltrepo "github.com/tasktracker/backend/repository/bolt"
	sqliterepo "github.com/tasktracker/backend/repository/sqlite"
	"github.com/tasktracker/backend/repository/taskfile"
	authUC "github.com/tasktracker/backend/usecase/auth"
	taskUC "github.com/tasktracker/backend/usecase/task"
	"github.com/tasktracker/backend/web"
)

const testBase = "http://tasktracker.test"

// testApp wires the full application against embedded stores and
// serves it over an in-memory listener, so requests exercise the real
// router, middleware, and handlers without a TCP port.
type testApp struct {
	listener *fasthttputil.InmemoryListener
}

func startApp(t *testing.T) *testApp {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()
	logger := zap.NewNop()

	pool, err := sqliteinfra.NewPool(sqliteinfra.Config{
		Path:     filepath.Join(dir, "users.db"),
		PoolSize: 2,
	}, logger)
	if err != nil {
		t.Fatalf("open sqlite pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	users, err := sqliterepo.NewUserRepository(ctx, pool)
	if err != nil {
		t.Fatalf("create user repository: %v", err)
	}

	db, err := boltinfra.Open(filepath.Join(dir, "sessions.db"))
	if err != nil {
		t.Fatalf("open bolt database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sessions, err := boltrepo.NewSessionRepository(db, time.Hour)
	if err != nil {
		t.Fatalf("create session repository: %v", err)
	}

	tasks := taskfile.New(filepath.Join(dir, "tasks.json"), logger)

	authUseCase := authUC.New(users, sessions, "test-secret", time.Hour, logger)
	taskUseCase := taskUC.New(tasks, logger)

	renderer, err := web.NewRenderer(logger)
	if err != nil {
		t.Fatalf("create renderer: %v", err)
	}

	gate := middleware.NewSessionGate(authUseCase, nil, "session", logger)

	handlers := Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, renderer, nil, logger, "session"),
		Pages:  apiHandler.NewPageHandler(taskUseCase, renderer, nil, logger, "Task Tracker"),
		Task:   apiHandler.NewTaskHandler(taskUseCase, nil, logger),
		Health: apiHandler.NewHealthHandler(nil, logger),
	}

	r := New(handlers, gate)

	listener := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: r.Handler}
	go func() {
		// Serve returns once the listener closes during cleanup.
		_ = server.Serve(listener)
	}()
	t.Cleanup(func() { listener.Close() })

	return &testApp{listener: listener}
}

// client returns an HTTP client with its own cookie jar that dials the
// in-memory listener and does not follow redirects, so tests can
// assert on 302 responses directly.
func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return a.listener.Dial()
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, client *http.Client, path string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(testBase + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func postForm(t *testing.T, client *http.Client, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := client.Post(testBase+path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func sendJSON(t *testing.T, client *http.Client, method, path string, payload interface{}) (*http.Response, string) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req, err := http.NewRequest(method, testBase+path, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build %s %s: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func register(t *testing.T, client *http.Client, username, email, password string) *http.Response {
	t.Helper()
	resp, _ := postForm(t, client, "/register", url.Values{
		"username": {username},
		"email":    {email},
		"password": {password},
	})
	return resp
}

func login(t *testing.T, client *http.Client, username, password string) *http.Response {
	t.Helper()
	resp, _ := postForm(t, client, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	app := startApp(t)
	client := app.client(t)

	resp, body := get(t, client, "/api/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status    string `json:"status"`
		Version   string `json:"version"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal([]byte(body), &health); err != nil {
		t.Fatalf("unmarshal health body %q: %v", body, err)
	}
	if health.Status != "healthy" {
		t.Errorf("got status %q, want %q", health.Status, "healthy")
	}
	if health.Version != "1.0.0" {
		t.Errorf("got version %q, want %q", health.Version, "1.0.0")
	}
	if _, err := time.Parse(domain.TimeFormat, health.Timestamp); err != nil {
		t.Errorf("timestamp %q not in expected format: %v", health.Timestamp, err)
	}
}

func TestRegisterLoginTaskJourney(t *testing.T) {
	app := startApp(t)
	client := app.client(t)

	// Register and land on the login page with the success notice.
	resp := register(t, client, "alice", "alice@example.com", "s3cret")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("register: got status %d, want %d", resp.StatusCode, http.StatusFound)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Fatalf("register redirected to %q, want %q", loc, "/login")
	}
	if _, body := get(t, client, "/login"); !strings.Contains(body, "Registration successful!") {
		t.Error("login page missing registration notice")
	}

	// Login and reach the home page.
	resp = login(t, client, "alice", "s3cret")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login: got status %d, want %d", resp.StatusCode, http.StatusFound)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("login redirected to %q, want %q", loc, "/")
	}

	resp, body := get(t, client, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("home: got status %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, "Task Tracker") {
		t.Error("home page missing app branding")
	}
	if !strings.Contains(body, "alice") {
		t.Error("home page missing the logged-in username")
	}

	// Create a task through the API.
	resp, body = sendJSON(t, client, http.MethodPost, "/api/tasks", map[string]string{
		"title":       "write report",
		"description": "q3 numbers",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create task: got status %d, want %d (body %s)", resp.StatusCode, http.StatusCreated, body)
	}

	var created domain.Task
	if err := json.Unmarshal([]byte(body), &created); err != nil {
		t.Fatalf("unmarshal created task %q: %v", body, err)
	}
	if created.ID == "" {
		t.Fatal("created task has no id")
	}
	if created.Status != domain.StatusPending {
		t.Errorf("got status %q, want %q", created.Status, domain.StatusPending)
	}
	if created.Priority != domain.PriorityMedium {
		t.Errorf("got priority %q, want %q", created.Priority, domain.PriorityMedium)
	}

	// The task shows up in the list.
	resp, body = get(t, client, "/api/tasks")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list tasks: got status %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var listed []domain.Task
	if err := json.Unmarshal([]byte(body), &listed); err != nil {
		t.Fatalf("unmarshal task list %q: %v", body, err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("list returned %+v, want the created task", listed)
	}

	// Complete the task; untouched fields survive the update.
	resp, body = sendJSON(t, client, http.MethodPut, "/api/tasks/"+created.ID, map[string]string{
		"status": "completed",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update task: got status %d, want %d (body %s)", resp.StatusCode, http.StatusOK, body)
	}
	var updated domain.Task
	if err := json.Unmarshal([]byte(body), &updated); err != nil {
		t.Fatalf("unmarshal updated task %q: %v", body, err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Errorf("got status %q, want %q", updated.Status, domain.StatusCompleted)
	}
	if updated.Title != "write report" || updated.Description != "q3 numbers" {
		t.Errorf("update clobbered untouched fields: %+v", updated)
	}

	// Logout kills the session.
	resp, _ = get(t, client, "/logout")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("logout: got status %d, want %d", resp.StatusCode, http.StatusFound)
	}
	resp, _ = get(t, client, "/")
	if resp.StatusCode != http.StatusFound {
		t.Errorf("home after logout: got status %d, want %d", resp.StatusCode, http.StatusFound)
	}
}

func TestUpdateUnknownTask(t *testing.T) {
	app := startApp(t)
	client := app.client(t)

	register(t, client, "alice", "alice@example.com", "pw")
	login(t, client, "alice", "pw")

	resp, body := sendJSON(t, client, http.MethodPut, "/api/tasks/doesnotexist", map[string]string{
		"status": "completed",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("got status %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	var errBody struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &errBody); err != nil {
		t.Fatalf("unmarshal error body %q: %v", body, err)
	}
	if errBody.Error != "Task not found" {
		t.Errorf("got error %q, want %q", errBody.Error, "Task not found")
	}
}

func TestAnonymousAccess(t *testing.T) {
	app := startApp(t)
	client := app.client(t)

	// Pages bounce to the login form.
	for _, path := range []string{"/", "/logout"} {
		resp, _ := get(t, client, path)
		if resp.StatusCode != http.StatusFound {
			t.Errorf("GET %s: got status %d, want %d", path, resp.StatusCode, http.StatusFound)
		}
		if loc := resp.Header.Get("Location"); loc != "/login" {
			t.Errorf("GET %s redirected to %q, want %q", path, loc, "/login")
		}
	}

	// The API answers 401 with a JSON error.
	resp, body := get(t, client, "/api/tasks")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	var errBody struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &errBody); err != nil {
		t.Fatalf("unmarshal error body %q: %v", body, err)
	}
	if errBody.Error != "authentication required" {
		t.Errorf("got error %q, want %q", errBody.Error, "authentication required")
	}

	// The about page and health check stay public.
	for _, path := range []string{"/about", "/api/health"} {
		resp, _ := get(t, client, path)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: got status %d, want %d", path, resp.StatusCode, http.StatusOK)
		}
	}
}

func TestLoginFailures(t *testing.T) {
	app := startApp(t)
	client := app.client(t)

	register(t, client, "alice", "alice@example.com", "s3cret")

	resp, body := postForm(t, client, "/login", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, "Invalid username or password") {
		t.Error("login page missing the invalid-credentials notice")
	}

	// A failed login leaves no session behind.
	resp, _ = get(t, client, "/")
	if resp.StatusCode != http.StatusFound {
		t.Errorf("home after failed login: got status %d, want %d", resp.StatusCode, http.StatusFound)
	}
}

func TestRegisterValidationFlashes(t *testing.T) {
	app := startApp(t)
	client := app.client(t)

	// Missing fields bounce back to the registration form.
	resp, _ := postForm(t, client, "/register", url.Values{
		"username": {"alice"},
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("got status %d, want %d", resp.StatusCode, http.StatusFound)
	}
	if loc := resp.Header.Get("Location"); loc != "/register" {
		t.Fatalf("redirected to %q, want %q", loc, "/register")
	}
	if _, body := get(t, client, "/register"); !strings.Contains(body, "All fields are required") {
		t.Error("register page missing the required-fields notice")
	}

	// Duplicate username.
	register(t, client, "alice", "alice@example.com", "pw")
	register(t, client, "alice", "other@example.com", "pw")
	if _, body := get(t, client, "/register"); !strings.Contains(body, "Username already exists") {
		t.Error("register page missing the duplicate-username notice")
	}

	// Duplicate email.
	register(t, client, "bob", "alice@example.com", "pw")
	if _, body := get(t, client, "/register"); !strings.Contains(body, "Email already registered") {
		t.Error("register page missing the duplicate-email notice")
	}
}
