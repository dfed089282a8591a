package web

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasktracker/backend/domain"
)

//go:embed templates/*.html
var templateFiles embed.FS

// SystemInfo is the server snapshot shown on rendered pages.
type SystemInfo struct {
	Hostname   string
	ServerTime string
	User       string
}

// AuthPage feeds the login and registration templates.
type AuthPage struct {
	Flash string
}

// HomePage feeds the task overview template.
type HomePage struct {
	Username string
	Tasks    []domain.Task
	System   SystemInfo
}

// AboutPage feeds the about template.
type AboutPage struct {
	AppName string
	Version string
}

// Renderer parses the embedded page templates once at startup and
// writes rendered pages into fasthttp responses.
type Renderer struct {
	templates *template.Template
	logger    *zap.Logger
}

func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	templates, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: templates, logger: logger}, nil
}

// Render executes the named template into a buffer first, so a template
// failure produces a clean 500 instead of a half-written page.
func (r *Renderer) Render(ctx *fasthttp.RequestCtx, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("template render failed", zap.String("template", name), zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString("internal server error")
		return
	}
	ctx.Response.Header.SetContentType("text/html; charset=utf-8")
	ctx.SetStatusCode(status)
	ctx.SetBody(buf.Bytes())
}
