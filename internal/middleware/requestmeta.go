package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jaevor/go-nanoid"

	"github.com/bcc32/bcc32.com-2018/internal/handlers"
)

const (
	visitorCookie   = "visitor"
	visitorIDLength = 16
)

// RequestMeta is a middleware that attaches client IP, user agent, referrer,
// and the anonymous visitor id to the request context. A visitor without the
// id cookie gets a fresh nanoid and a Set-Cookie on the way out.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	newVisitorID, _ := nanoid.Standard(visitorIDLength)

	return func(ctx huma.Context, next func(huma.Context)) {
		meta := handlers.RequestMeta{
			VisitorID: visitorID(ctx, newVisitorID),
			ClientIP:  clientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		ctx = huma.WithContext(ctx, handlers.ContextWithRequestMeta(ctx.Context(), meta))

		next(ctx)
	}
}

func visitorID(ctx huma.Context, newVisitorID func() string) string {
	if cookie, err := huma.ReadCookie(ctx, visitorCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := newVisitorID()

	cookie := http.Cookie{
		Name:     visitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
	}
	ctx.AppendHeader("Set-Cookie", cookie.String())

	return id
}

// clientIP extracts the client IP from the request, considering proxies.
func clientIP(ctx huma.Context) string {
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		// First IP is the original client.
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	host := ctx.Host()

	ip, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}

	return ip
}
