package middleware

import (
	"context"
	"encoding/json"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasktracker/backend/api/transport"
	"github.com/tasktracker/backend/domain"
	"github.com/tasktracker/backend/pkg/httpcontext"
	authUC "github.com/tasktracker/backend/usecase/auth"
)

const userKey = "auth_user"

// SessionGate resolves the session cookie to a user before protected
// handlers run. Browser pages bounce anonymous visitors to the login
// form; API endpoints answer with 401 and a JSON body.
type SessionGate struct {
	auth    *authUC.UseCase
	adapter *httpcontext.Adapter
	cookie  string
	logger  *zap.Logger
}

func NewSessionGate(auth *authUC.UseCase, adapter *httpcontext.Adapter, cookieName string, logger *zap.Logger) *SessionGate {
	if cookieName == "" {
		cookieName = "session"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionGate{
		auth:    auth,
		adapter: adapter,
		cookie:  cookieName,
		logger:  logger,
	}
}

// Page guards server-rendered routes.
func (g *SessionGate) Page(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := g.resolve(ctx)
		if !ok {
			ctx.Redirect("/login", fasthttp.StatusFound)
			return
		}
		ctx.SetUserValue(userKey, user)
		next(ctx)
	}
}

// API guards JSON routes.
func (g *SessionGate) API(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := g.resolve(ctx)
		if !ok {
			ctx.Response.Header.SetContentType("application/json")
			ctx.SetStatusCode(fasthttp.StatusUnauthorized)
			body, _ := json.Marshal(transport.NewError(domain.ErrUnauthorized.Message))
			ctx.SetBody(body)
			return
		}
		ctx.SetUserValue(userKey, user)
		next(ctx)
	}
}

// UserFrom returns the user attached by the gate, or nil on
// unprotected routes.
func UserFrom(ctx *fasthttp.RequestCtx) *domain.User {
	user, _ := ctx.UserValue(userKey).(*domain.User)
	return user
}

func (g *SessionGate) resolve(ctx *fasthttp.RequestCtx) (*domain.User, bool) {
	token := string(ctx.Request.Header.Cookie(g.cookie))
	if token == "" {
		return nil, false
	}

	stdCtx, cancel := g.sessionContext(ctx)
	defer cancel()

	user, err := g.auth.CurrentUser(stdCtx, token)
	if err != nil {
		g.logger.Debug("session rejected",
			zap.String("remote_addr", httpcontext.RemoteAddrFrom(stdCtx)),
			zap.Error(err))
		return nil, false
	}
	return user, true
}

func (g *SessionGate) sessionContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if g.adapter != nil {
		return g.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}
