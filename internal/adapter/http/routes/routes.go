package routes

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"todoservice/internal/adapter/http/handler"
	"todoservice/internal/adapter/http/helper"
	"todoservice/internal/adapter/http/middleware"
	"todoservice/internal/adapter/i18n"
	"todoservice/internal/adapter/logger"
	"todoservice/internal/core/telemetry"
)

type HandlersConfig struct {
	TodoHandler   *handler.TodoHandler
	HealthHandler *handler.HealthHandler
}

type MiddlewareConfig struct {
	ServiceName    string
	AllowedOrigins []string
	Metrics        *telemetry.AppMetrics
	Logger         *logger.LokiLogger
	Responder      *helper.Responder
	Translator     *i18n.Translator
	HTTPSEnforcer  *middleware.HTTPSEnforcer
	RateLimiter    *middleware.RateLimiter
}

func SetupRouter(handlers HandlersConfig, mw MiddlewareConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(mw.Responder))
	router.Use(middleware.CurrentMiddleware())

	if mw.HTTPSEnforcer != nil {
		router.Use(mw.HTTPSEnforcer.HTTPSMiddleware())
	}

	router.Use(otelgin.Middleware(mw.ServiceName))
	router.Use(middleware.CORSMiddleware(mw.AllowedOrigins))
	router.Use(middleware.LanguageMiddleware(mw.Translator))
	router.Use(middleware.LoggingMiddleware(mw.Logger))

	if mw.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(mw.Metrics))
	}

	if mw.RateLimiter != nil {
		router.Use(mw.RateLimiter.RateLimitMiddleware())
	}

	registerRoutes(router, handlers, mw.Responder)

	return router
}

// SetupRouterForTests wires the routes behind the middleware the handlers
// depend on, without telemetry, logging or rate limiting.
func SetupRouterForTests(handlers HandlersConfig, responder *helper.Responder, translator *i18n.Translator) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(responder))
	router.Use(middleware.CurrentMiddleware())
	router.Use(middleware.LanguageMiddleware(translator))

	registerRoutes(router, handlers, responder)

	return router
}

func registerRoutes(router *gin.Engine, handlers HandlersConfig, responder *helper.Responder) {
	if handlers.HealthHandler != nil {
		setupHealthRoutes(router, handlers.HealthHandler)
	}

	if handlers.TodoHandler != nil {
		setupTodoRoutes(router, handlers.TodoHandler)
	}

	router.NoRoute(responder.SendRouteNotFound)
}

func setupHealthRoutes(router *gin.Engine, healthHandler *handler.HealthHandler) {
	health := router.Group("/health")
	{
		health.GET("", healthHandler.Health)
		health.GET("/detailed", healthHandler.Detailed)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/live", healthHandler.Live)
	}
}

// Static segments are registered before the :id routes they sit beside.
func setupTodoRoutes(router *gin.Engine, todoHandler *handler.TodoHandler) {
	todos := router.Group("/todos")
	{
		todos.GET("", todoHandler.ListTodos)
		todos.POST("", todoHandler.CreateTodo)

		todos.GET("/stats", todoHandler.GetStats)
		todos.GET("/due-soon", todoHandler.GetDueSoon)
		todos.PATCH("/bulk", todoHandler.BulkUpdate)
		todos.DELETE("/bulk", todoHandler.BulkDelete)

		todos.GET("/:id", todoHandler.GetTodo)
		todos.PUT("/:id", todoHandler.UpdateTodo)
		todos.DELETE("/:id", todoHandler.DeleteTodo)
		todos.PATCH("/:id/toggle", todoHandler.ToggleTodo)
	}
}
