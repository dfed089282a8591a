package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasktracker/backend/domain"
	"github.com/tasktracker/backend/pkg/httpcontext"
	authUC "github.com/tasktracker/backend/usecase/auth"
	"github.com/tasktracker/backend/web"
)

type AuthHandler struct {
	baseHandler
	uc       *authUC.UseCase
	renderer *web.Renderer
	cookie   string
}

func NewAuthHandler(uc *authUC.UseCase, renderer *web.Renderer, adapter *httpcontext.Adapter, logger *zap.Logger, cookieName string) *AuthHandler {
	if cookieName == "" {
		cookieName = "session"
	}
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		renderer:    renderer,
		cookie:      cookieName,
	}
}

// @Summary Registration form
// @Tags auth
// @Router /register [get]
func (h *AuthHandler) RegisterPage(ctx *fasthttp.RequestCtx) {
	h.renderer.Render(ctx, http.StatusOK, "register.html", web.AuthPage{Flash: takeFlash(ctx)})
}

// @Summary Create an account
// @Tags auth
// @Router /register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	args := ctx.PostArgs()
	username := string(args.Peek("username"))
	email := string(args.Peek("email"))
	password := string(args.Peek("password"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if _, err := h.uc.Register(stdCtx, username, email, password); err != nil {
		notice := registrationNotice(err)
		if notice == registrationFallback {
			h.logger.Error("registration failed", zap.Error(err))
		}
		setFlash(ctx, notice)
		ctx.Redirect("/register", fasthttp.StatusFound)
		return
	}

	setFlash(ctx, "Registration successful!")
	ctx.Redirect("/login", fasthttp.StatusFound)
}

// @Summary Login form
// @Tags auth
// @Router /login [get]
func (h *AuthHandler) LoginPage(ctx *fasthttp.RequestCtx) {
	h.renderer.Render(ctx, http.StatusOK, "login.html", web.AuthPage{Flash: takeFlash(ctx)})
}

// @Summary Authenticate and start a session
// @Tags auth
// @Router /login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	args := ctx.PostArgs()
	username := string(args.Peek("username"))
	password := string(args.Peek("password"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.Authenticate(stdCtx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.logger.Debug("login rejected",
				zap.String("remote_addr", httpcontext.RemoteAddrFrom(stdCtx)),
				zap.String("user_agent", httpcontext.UserAgentFrom(stdCtx)))
			h.renderer.Render(ctx, http.StatusOK, "login.html", web.AuthPage{Flash: domain.ErrInvalidCredentials.Message})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		h.renderer.Render(ctx, http.StatusInternalServerError, "login.html", web.AuthPage{Flash: "An error occurred during login"})
		return
	}

	token, session, err := h.uc.EstablishSession(stdCtx, user)
	if err != nil {
		h.logger.Error("session setup failed", zap.Error(err))
		h.renderer.Render(ctx, http.StatusInternalServerError, "login.html", web.AuthPage{Flash: "An error occurred during login"})
		return
	}

	h.setSessionCookie(ctx, token, session.ExpiresAt)
	ctx.Redirect("/", fasthttp.StatusFound)
}

// @Summary End the session
// @Tags auth
// @Router /logout [get]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	token := string(ctx.Request.Header.Cookie(h.cookie))
	if err := h.uc.EndSession(stdCtx, token); err != nil {
		h.logger.Warn("session revocation failed", zap.Error(err))
	}

	h.clearSessionCookie(ctx)
	ctx.Redirect("/login", fasthttp.StatusFound)
}

func (h *AuthHandler) setSessionCookie(ctx *fasthttp.RequestCtx, token string, expires time.Time) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)

	c.SetKey(h.cookie)
	c.SetValue(token)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	c.SetExpire(expires)
	ctx.Response.Header.SetCookie(c)
}

func (h *AuthHandler) clearSessionCookie(ctx *fasthttp.RequestCtx) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)

	c.SetKey(h.cookie)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetExpire(fasthttp.CookieExpireDelete)
	ctx.Response.Header.SetCookie(c)
}

const registrationFallback = "An error occurred during registration"

// registrationNotice picks the flash shown after a failed registration.
// Validation and conflict messages are user-facing; anything else is
// reported generically.
func registrationNotice(err error) string {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		switch dErr.Code {
		case domain.ErrCodeInvalid, domain.ErrCodeConflict:
			return dErr.Message
		}
	}
	return registrationFallback
}
