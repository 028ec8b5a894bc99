package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/domain/export"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/domain/itinerary"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/domain/places"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/domain/weather"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/middleware"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AppHandlers groups the HTTP handlers of every domain.
type AppHandlers struct {
	Places    *places.Handler
	Weather   *weather.Handler
	Itinerary *itinerary.Handler
	Export    *export.Handler
}

// Setup registers the health probe and the versioned API on r. Itinerary
// routes require a JWT.
func Setup(r *gin.Engine, h *AppHandlers, db Pinger, jwtCfg middleware.JWTConfig, log *zap.Logger) {
	r.GET("/healthz", healthz(db, log))

	api := r.Group("/api/v1")
	{
		api.GET("/places", h.Places.ListPlaces)
		api.GET("/places/resolve", h.Places.ResolvePlace)
		api.GET("/weather", h.Weather.GetWeather)
	}

	protected := api.Group("/itineraries")
	protected.Use(middleware.JWTAuthMiddleware(jwtCfg))
	{
		protected.POST("", h.Itinerary.CreateItinerary)
		protected.GET("", h.Itinerary.ListItineraries)
		protected.GET("/:id", h.Itinerary.GetItinerary)
		protected.PUT("/:id", h.Itinerary.UpdateItinerary)
		protected.DELETE("/:id", h.Itinerary.DeleteItinerary)
		protected.GET("/:id/map", h.Itinerary.GetMap)
		protected.GET("/:id/export", h.Export.ExportRendered)
		protected.POST("/:id/export", h.Export.ExportUploaded)
	}
}

func healthz(db Pinger, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			log.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	}
}
