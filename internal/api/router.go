package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pable/go-match-stats/internal/logging"
	"github.com/pable/go-match-stats/internal/tracker"
)

// NewRouter builds the gin engine serving the API under /api.
func NewRouter(svc *tracker.Service, logger *logging.Logger, recentLimit int) *gin.Engine {
	if logger == nil {
		logger = logging.Default()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), cors.Default())

	NewHTTPHandler(HTTPOptions{
		Service:     svc,
		Router:      router.Group("/api"),
		Logger:      logger,
		RecentLimit: recentLimit,
	})
	return router
}

func requestLogger(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
