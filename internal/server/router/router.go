package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/boq/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(reports *handlers.ReportHandler, projects *handlers.ProjectHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/project", reports.Summary)
	r.GET("/project/budget", reports.Budget)
	r.GET("/project/document", projects.Document)

	r.GET("/chapters", reports.ChapterAt)
	r.GET("/chapters/:code", reports.Chapter)

	r.GET("/prices/:code", reports.Price)
	r.GET("/prices/:code/justification", reports.Justification)

	reportsGroup := r.Group("/reports")
	reportsGroup.GET("/quantities", reports.Quantities)
	reportsGroup.GET("/elementary", reports.ElementaryQuantities)
	reportsGroup.GET("/employed", reports.EmployedPrices)

	r.POST("/snapshots", projects.Snapshot)
	r.POST("/snapshots/:code/restore", projects.Restore)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
