package handler

import (
	"net/url"

	"github.com/valyala/fasthttp"
)

const flashCookieName = "flash"

// setFlash stores a one-shot notice shown by the next rendered page.
// The value is query-escaped so messages with spaces survive the
// cookie round trip.
func setFlash(ctx *fasthttp.RequestCtx, message string) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)

	c.SetKey(flashCookieName)
	c.SetValue(url.QueryEscape(message))
	c.SetPath("/")
	c.SetHTTPOnly(true)
	ctx.Response.Header.SetCookie(c)
}

// takeFlash returns the pending notice, if any, and expires its cookie.
func takeFlash(ctx *fasthttp.RequestCtx) string {
	raw := ctx.Request.Header.Cookie(flashCookieName)
	if len(raw) == 0 {
		return ""
	}

	expired := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(expired)
	expired.SetKey(flashCookieName)
	expired.SetPath("/")
	expired.SetExpire(fasthttp.CookieExpireDelete)
	ctx.Response.Header.SetCookie(expired)

	message, err := url.QueryUnescape(string(raw))
	if err != nil {
		return ""
	}
	return message
}
