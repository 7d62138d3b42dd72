package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todolist/api/transport"
	"github.com/fastygo/todolist/pkg/httpcontext"
	todoUC "github.com/fastygo/todolist/usecase/todo"
)

type SettingsHandler struct {
	baseHandler
	uc *todoUC.UseCase
}

// NewSettingsHandler serves the /api/settings routes.
func NewSettingsHandler(uc *todoUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Get theme preference
// @Tags settings
// @Router /api/settings/theme [get]
func (h *SettingsHandler) GetTheme(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, h.uc.Theme(stdCtx))
}

// @Summary Set theme preference
// @Tags settings
// @Router /api/settings/theme [put]
func (h *SettingsHandler) SetTheme(ctx *fasthttp.RequestCtx) {
	var req transport.ThemeRequest
	if !h.decodeBody(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	settings, err := h.uc.SetTheme(stdCtx, req.Theme)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, settings)
}
