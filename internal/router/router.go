package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/muandane/special-stack/memes/internal/handlers"
	"github.com/muandane/special-stack/memes/internal/middleware"
)

const publicCacheControl = "public, max-age=86400"

type Router struct {
	engine *gin.Engine
	logger zerolog.Logger
}

func NewRouter(logger zerolog.Logger) *Router {
	return &Router{
		engine: gin.New(),
		logger: logger,
	}
}

// Setup registers routes and the middleware chain. publicDir is served
// under /public when non-empty.
func (r *Router) Setup(memeHandler *handlers.MemeHandler, statsHandler *handlers.StatsHandler, publicDir string) http.Handler {
	metricsMiddleware := middleware.NewMetricsMiddleware()

	r.engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.WithLogging(r.logger),
		metricsMiddleware.WithMetrics(),
		cors.Default(),
		middleware.WithCompression(),
	)

	r.engine.GET("/health", handlers.HealthCheck)
	r.engine.GET("/metrics", metricsMiddleware.Handler)
	r.engine.GET("/stats", statsHandler.ServeHTTP)

	memes := r.engine.Group("/memes")
	memes.GET("/random", middleware.WithDimensions("width", "height"), memeHandler.Random)
	memes.GET("/count", memeHandler.Count)

	if publicDir != "" {
		public := r.engine.Group("/public", func(c *gin.Context) {
			c.Header("Cache-Control", publicCacheControl)
		})
		public.Static("/", publicDir)
	}

	return r.engine
}
