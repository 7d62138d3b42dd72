package middleware_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/todolist/internal/middleware"
	"github.com/fastygo/todolist/pkg/httpcontext"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func okHandler(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	if sub, ok := ctx.UserValue(string(httpcontext.KeySubject)).(string); ok {
		ctx.SetBodyString(sub)
	}
}

func TestJWTAuth(t *testing.T) {
	valid := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
		"sub": "cli",
		"iss": "todolist",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	expired := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
		"sub": "cli",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "cli"})
	unsigned := sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"sub": "cli"})

	tests := []struct {
		name     string
		issuer   string
		header   string
		wantCode int
		wantBody string
	}{
		{name: "valid bearer", header: "Bearer " + valid, wantCode: fasthttp.StatusOK, wantBody: "cli"},
		{name: "bare token", header: valid, wantCode: fasthttp.StatusOK, wantBody: "cli"},
		{name: "issuer checked", issuer: "todolist", header: "bearer " + valid, wantCode: fasthttp.StatusOK, wantBody: "cli"},
		{name: "issuer mismatch", issuer: "someone-else", header: "Bearer " + valid, wantCode: fasthttp.StatusUnauthorized},
		{name: "missing", wantCode: fasthttp.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantCode: fasthttp.StatusUnauthorized},
		{name: "wrong key", header: "Bearer " + wrongKey, wantCode: fasthttp.StatusUnauthorized},
		{name: "alg none", header: "Bearer " + unsigned, wantCode: fasthttp.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctx fasthttp.RequestCtx
			ctx.Request.Header.SetMethod(fasthttp.MethodGet)
			if tt.header != "" {
				ctx.Request.Header.Set("Authorization", tt.header)
			}

			middleware.JWTAuth(secret, tt.issuer, nil)(okHandler)(&ctx)

			assert.Equal(t, tt.wantCode, ctx.Response.StatusCode())
			if tt.wantCode == fasthttp.StatusOK {
				assert.Equal(t, tt.wantBody, string(ctx.Response.Body()))
			} else {
				assert.Contains(t, string(ctx.Response.Body()), `"code":"UNAUTHORIZED"`)
			}
		})
	}
}

func TestJWTAuth_PreflightPassesThrough(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodOptions)

	middleware.JWTAuth(secret, "", nil)(okHandler)(&ctx)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
}

func TestCORS(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		var ctx fasthttp.RequestCtx
		ctx.Request.Header.SetMethod(fasthttp.MethodGet)
		ctx.Request.Header.Set("Origin", "http://localhost:3000")

		middleware.CORS([]string{"*"})(okHandler)(&ctx)

		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.Equal(t, "*", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
	})

	t.Run("listed origin", func(t *testing.T) {
		var ctx fasthttp.RequestCtx
		ctx.Request.Header.SetMethod(fasthttp.MethodGet)
		ctx.Request.Header.Set("Origin", "https://todo.example.com")

		middleware.CORS([]string{"https://todo.example.com"})(okHandler)(&ctx)

		assert.Equal(t, "https://todo.example.com", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
	})

	t.Run("unlisted origin", func(t *testing.T) {
		var ctx fasthttp.RequestCtx
		ctx.Request.Header.SetMethod(fasthttp.MethodGet)
		ctx.Request.Header.Set("Origin", "https://evil.example.com")

		middleware.CORS([]string{"https://todo.example.com"})(okHandler)(&ctx)

		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.Empty(t, ctx.Response.Header.Peek("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		var ctx fasthttp.RequestCtx
		ctx.Request.Header.SetMethod(fasthttp.MethodOptions)
		ctx.Request.Header.Set("Origin", "http://localhost:3000")
		ctx.Request.Header.Set("Access-Control-Request-Method", "PATCH")

		called := false
		middleware.CORS([]string{"*"})(func(*fasthttp.RequestCtx) { called = true })(&ctx)

		assert.False(t, called)
		assert.Equal(t, fasthttp.StatusNoContent, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Header.Peek("Access-Control-Allow-Methods")), "PATCH")
	})
}
