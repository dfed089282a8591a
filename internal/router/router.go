package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/tasktracker/backend/api/handler"
	"github.com/tasktracker/backend/internal/middleware"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Pages  *apiHandler.PageHandler
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, gate *middleware.SessionGate) *router.Router {
	r := router.New()

	r.GET("/api/health", handlers.Health.Check)

	// Auth routes
	r.GET("/register", handlers.Auth.RegisterPage)
	r.POST("/register", handlers.Auth.Register)
	r.GET("/login", handlers.Auth.LoginPage)
	r.POST("/login", handlers.Auth.Login)
	r.GET("/logout", gate.Page(handlers.Auth.Logout))

	// Pages
	r.GET("/", gate.Page(handlers.Pages.Home))
	r.GET("/about", handlers.Pages.About)

	// Task API
	r.GET("/api/tasks", gate.API(handlers.Task.GetTasks))
	r.POST("/api/tasks", gate.API(handlers.Task.CreateTask))
	r.PUT("/api/tasks/{id}", gate.API(handlers.Task.UpdateTask))

	return r
}
