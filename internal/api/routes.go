package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.Use(cors.Default())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/properties", handler.GetProperties)
		api.GET("/deals", handler.GetDeals)
		api.GET("/deals/geojson", handler.GetDealsGeoJSON)
		api.GET("/runs", handler.GetAnalysisRuns)
		api.GET("/market", handler.GetMarketTrends)
		api.POST("/analyze", handler.RunAnalysis)
	}
}
