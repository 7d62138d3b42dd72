package middleware

import (
	"slices"

	"github.com/valyala/fasthttp"
)

const (
	corsAllowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, X-Request-ID"
)

// CORS answers preflight requests and decorates responses for the allowed
// origins. A "*" entry allows any origin.
func CORS(allowedOrigins []string) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	allowAll := slices.Contains(allowedOrigins, "*")

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			origin := string(ctx.Request.Header.Peek("Origin"))
			allowed := origin != "" && (allowAll || slices.Contains(allowedOrigins, origin))

			if allowed {
				h := &ctx.Response.Header
				if allowAll {
					h.Set("Access-Control-Allow-Origin", "*")
				} else {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
				h.Set("Access-Control-Expose-Headers", "X-Request-ID")
			}

			if ctx.IsOptions() && len(ctx.Request.Header.Peek("Access-Control-Request-Method")) > 0 {
				if allowed {
					ctx.Response.Header.Set("Access-Control-Allow-Methods", corsAllowMethods)
					ctx.Response.Header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
					ctx.Response.Header.Set("Access-Control-Max-Age", "600")
				}
				ctx.SetStatusCode(fasthttp.StatusNoContent)
				return
			}

			next(ctx)
		}
	}
}
