package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tomz197/hashgrid/internal/sim"
)

// newRouter exposes the simulation snapshots over HTTP. metrics may be nil
// when no prometheus exporter is installed.
func newRouter(src sim.Source, metrics http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware("hashgrid-web"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "step": src.Snapshot().Step})
	})

	router.GET("/snapshot", func(c *gin.Context) {
		c.JSON(http.StatusOK, src.Snapshot())
	})

	router.GET("/grids", func(c *gin.Context) {
		c.JSON(http.StatusOK, src.Snapshot().Grids)
	})

	router.GET("/grids/:name/stats", func(c *gin.Context) {
		name := c.Param("name")
		g, ok := src.Snapshot().Grid(name)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown grid", "name": name})
			return
		}
		c.JSON(http.StatusOK, g.Stats)
	})

	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	return router
}
