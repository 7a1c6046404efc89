// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/prepflow/inventory-intel/internal/api/handlers"
	"github.com/prepflow/inventory-intel/internal/api/middleware"
	"github.com/prepflow/inventory-intel/internal/service"
)

type Services struct {
	ForecastService *service.ForecastService
	VarianceService *service.VarianceService
	SyncService     *service.SyncService

	// DefaultHorizonHours backs forecast requests that omit horizon_hours.
	DefaultHorizonHours float64
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.ForecastService != nil {
			forecastHandler := handlers.NewForecastHandler(services.ForecastService, services.DefaultHorizonHours)
			forecastGroup := apiGroup.Group("/forecast")
			{
				forecastGroup.GET("", forecastHandler.GetAllForecasts)
				forecastGroup.GET("/:item_id", forecastHandler.GetForecast)
				forecastGroup.POST("/:item_id", forecastHandler.PostForecast)
			}

			wasteGroup := apiGroup.Group("/waste")
			{
				wasteGroup.GET("", forecastHandler.GetAllWastePredictions)
				wasteGroup.GET("/:item_id", forecastHandler.GetWastePrediction)
			}
		}

		if services.VarianceService != nil {
			varianceHandler := handlers.NewVarianceHandler(services.VarianceService)
			varianceGroup := apiGroup.Group("/variance")
			{
				varianceGroup.POST("/report", varianceHandler.BuildReport)
				varianceGroup.POST("/export", varianceHandler.ExportReport)
			}
		}

		if services.SyncService != nil {
			syncHandler := handlers.NewSyncHandler(services.SyncService)
			syncGroup := apiGroup.Group("/sync")
			{
				syncGroup.POST("/run", syncHandler.RunCycle)
				syncGroup.GET("/resolutions", syncHandler.ListResolutions)
				syncGroup.GET("/integrity/:item_id", syncHandler.CheckIntegrity)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
