// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers.
package router

import (
	"github.com/deppfellow/pixelmags/internal/handler"
	"github.com/deppfellow/pixelmags/internal/middleware"
	"github.com/deppfellow/pixelmags/internal/server"
	"github.com/deppfellow/pixelmags/internal/service"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance with the global middleware chain, the
// system routes and the versioned API.
//
// API routes require a Clerk session only when an auth secret key is set.
func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.RateLimit.Limit(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	api := router.Group("/api/v1")
	if services.Auth != nil && services.Auth.Enabled() {
		api.Use(middlewares.Auth.RequireAuth)
	}

	registerEntityRoutes(api, h)
	registerAdminRoutes(api, h)

	return router
}

func registerEntityRoutes(api *echo.Group, h *handler.Handlers) {
	searchGroup := api.Group("/_search")
	for _, resource := range h.Resources() {
		resource.Register(api, searchGroup)
	}
}

func registerAdminRoutes(api *echo.Group, h *handler.Handlers) {
	admin := api.Group("/admin")
	admin.POST("/reindex", h.Admin.Reindex())
	admin.POST("/reindex/:kind", h.Admin.Reindex())
}
