package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasktracker/backend/api/transport"
	"github.com/tasktracker/backend/domain"
	"github.com/tasktracker/backend/pkg/httpcontext"
)

// Version is reported by the health endpoint and the about page.
const Version = "1.0.0"

type HealthHandler struct {
	baseHandler
}

func NewHealthHandler(adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
	}
}

// @Summary Health check
// @Tags health
// @Router /api/health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	h.respondJSON(ctx, http.StatusOK, transport.HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(domain.TimeFormat),
	})
}
