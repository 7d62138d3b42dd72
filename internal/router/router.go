package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/todolist/api/handler"
)

type Handlers struct {
	Todo     *apiHandler.TodoHandler
	Settings *apiHandler.SettingsHandler
	Health   *apiHandler.HealthHandler
}

// Middleware wraps a handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// New registers every route. apiGuard, when non-nil, wraps the /api routes.
func New(handlers Handlers, apiGuard Middleware) *router.Router {
	if apiGuard == nil {
		apiGuard = func(next fasthttp.RequestHandler) fasthttp.RequestHandler { return next }
	}

	r := router.New()
	r.HandleOPTIONS = false

	r.GET("/", handlers.Health.Root)
	r.GET("/health", handlers.Health.Check)

	api := r.Group("/api")

	api.GET("/todos", apiGuard(handlers.Todo.ListTodos))
	api.POST("/todos", apiGuard(handlers.Todo.CreateTodo))
	api.GET("/todos/{id}", apiGuard(handlers.Todo.GetTodo))
	api.PUT("/todos/{id}", apiGuard(handlers.Todo.UpdateTodo))
	api.DELETE("/todos/{id}", apiGuard(handlers.Todo.DeleteTodo))
	api.PATCH("/todos/{id}/status", apiGuard(handlers.Todo.SetStatus))
	api.PATCH("/todos/{id}/toggle", apiGuard(handlers.Todo.ToggleFlag))

	api.GET("/settings/theme", apiGuard(handlers.Settings.GetTheme))
	api.PUT("/settings/theme", apiGuard(handlers.Settings.SetTheme))

	return r
}

// Chain applies middlewares so the first one listed runs first.
func Chain(h fasthttp.RequestHandler, mws ...Middleware) fasthttp.RequestHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
