package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers all routes of the service.
func RegisterRoutes(router *gin.Engine, api *API) {
	group := router.Group("/api")
	{
		group.GET("/status", api.StatusHandler)
		group.POST("/upload", api.UploadHandler)
		group.GET("/upload-status/:id", api.UploadStatusHandler)
		group.POST("/query", api.QueryHandler)
		group.POST("/remove-file", api.RemoveFileHandler)
		group.POST("/clear", api.ClearHandler)
		group.GET("/config", api.ConfigHandler)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
