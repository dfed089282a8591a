// Package httpcontext bridges fasthttp requests and the stdlib
// contexts the use-case layer expects: every request gets a deadline,
// a request id (honoring X-Request-ID from the caller), and the client
// metadata the logs care about.
package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/tasktracker/backend/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

type ctxKey string

const (
	keyRemoteAddr ctxKey = "remote_addr"
	keyUserAgent  ctxKey = "user_agent"
)

// Adapter derives deadline'd stdlib contexts from fasthttp requests.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs an Adapter applying the given per-request
// timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach builds the context for one request: a timeout, the request id
// (generated when the caller sent none, echoed on the response either
// way), and the remote address and user agent for log enrichment.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := requestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set(requestIDHeader, reqID)

	if addr := ctx.RemoteAddr(); addr != nil {
		stdCtx = context.WithValue(stdCtx, keyRemoteAddr, addr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, keyUserAgent, ua)
	}

	return stdCtx, cancel
}

// RemoteAddrFrom returns the client address recorded by Attach, or "".
func RemoteAddrFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	addr, _ := ctx.Value(keyRemoteAddr).(string)
	return addr
}

// UserAgentFrom returns the client user agent recorded by Attach, or "".
func UserAgentFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ua, _ := ctx.Value(keyUserAgent).(string)
	return ua
}

func requestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if header := strings.TrimSpace(string(ctx.Request.Header.Peek(requestIDHeader))); header != "" {
		return header
	}
	return uuid.NewString()
}
