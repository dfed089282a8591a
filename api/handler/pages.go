package handler

import (
	"net/http"
	"os"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasktracker/backend/domain"
	"github.com/tasktracker/backend/internal/middleware"
	"github.com/tasktracker/backend/pkg/httpcontext"
	taskUC "github.com/tasktracker/backend/usecase/task"
	"github.com/tasktracker/backend/web"
)

type PageHandler struct {
	baseHandler
	tasks    *taskUC.UseCase
	renderer *web.Renderer
	appName  string
}

func NewPageHandler(tasks *taskUC.UseCase, renderer *web.Renderer, adapter *httpcontext.Adapter, logger *zap.Logger, appName string) *PageHandler {
	if appName == "" {
		appName = "Task Tracker"
	}
	return &PageHandler{
		baseHandler: newBaseHandler(adapter, logger),
		tasks:       tasks,
		renderer:    renderer,
		appName:     appName,
	}
}

// @Summary Task overview
// @Tags pages
// @Router / [get]
func (h *PageHandler) Home(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.tasks.ListTasks(stdCtx)
	if err != nil {
		h.logger.Error("task listing failed", zap.Error(err))
		ctx.Error("internal server error", fasthttp.StatusInternalServerError)
		return
	}

	var username string
	if user := middleware.UserFrom(ctx); user != nil {
		username = user.Username
	}

	h.renderer.Render(ctx, http.StatusOK, "index.html", web.HomePage{
		Username: username,
		Tasks:    tasks,
		System:   systemInfo(),
	})
}

// @Summary About page
// @Tags pages
// @Router /about [get]
func (h *PageHandler) About(ctx *fasthttp.RequestCtx) {
	h.renderer.Render(ctx, http.StatusOK, "about.html", web.AboutPage{
		AppName: h.appName,
		Version: Version,
	})
}

func systemInfo() web.SystemInfo {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}
	return web.SystemInfo{
		Hostname:   hostname,
		ServerTime: time.Now().Format(domain.TimeFormat),
		User:       user,
	}
}
