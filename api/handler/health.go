package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todolist/api/transport"
	"github.com/fastygo/todolist/internal/infrastructure/monitor"
	"github.com/fastygo/todolist/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
	banner  string
}

// NewHealthHandler serves / and /health. An empty banner uses the default.
func NewHealthHandler(mon *monitor.Monitor, banner string, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	if banner == "" {
		banner = "Todo API is running"
	}
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		banner:      banner,
	}
}

// @Summary Liveness banner
// @Tags health
// @Router / [get]
func (h *HealthHandler) Root(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.SetContentType("text/plain; charset=utf-8")
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBodyString(h.banner)
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	if !status.Checked() {
		stdCtx, cancel := h.requestContext(ctx)
		status = h.monitor.Check(stdCtx)
		cancel()
	}

	payload := transport.Health{
		Store:     "down",
		Driver:    status.Driver,
		Tasks:     status.Tasks,
		LastCheck: status.LastCheck.UTC(),
		Error:     status.StoreError,
	}
	if !status.LastSave.IsZero() {
		saved := status.LastSave.UTC()
		payload.LastSave = &saved
	}

	if status.StoreOK {
		payload.Store = "up"
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "store unavailable", payload))
}
