package httpcontext

import (
	"testing"
	"time"

	"github.com/valyala/fasthttp"
)

func TestAttachEchoesProvidedRequestID(t *testing.T) {
	a := NewAdapter(time.Second)
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set("X-Request-ID", "req-123")

	stdCtx, cancel := a.Attach(&ctx)
	defer cancel()

	if got := string(ctx.Response.Header.Peek("X-Request-ID")); got != "req-123" {
		t.Errorf("echoed id = %q, want %q", got, "req-123")
	}
	if _, ok := stdCtx.Deadline(); !ok {
		t.Error("context has no deadline")
	}
}

func TestAttachGeneratesRequestID(t *testing.T) {
	a := NewAdapter(time.Second)
	var ctx fasthttp.RequestCtx

	_, cancel := a.Attach(&ctx)
	defer cancel()

	if got := string(ctx.Response.Header.Peek("X-Request-ID")); got == "" {
		t.Error("no request id generated")
	}
}

func TestAttachRecordsClientMetadata(t *testing.T) {
	a := NewAdapter(time.Second)
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetUserAgent("tester/1.0")

	stdCtx, cancel := a.Attach(&ctx)
	defer cancel()

	if got := UserAgentFrom(stdCtx); got != "tester/1.0" {
		t.Errorf("user agent = %q, want %q", got, "tester/1.0")
	}
}
