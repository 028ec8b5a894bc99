package server

import (
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/middleware"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/pkg/config"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/routes"
)

// SetupRouter configures and returns the Gin router with all middleware and routes
func SetupRouter(cfg *config.Config, h *routes.AppHandlers, db routes.Pinger, logger *zap.Logger) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	r.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		UTC:        true,
		TimeFormat: time.RFC3339,
		SkipPaths:  []string{"/healthz"},
		Context:    zapContextFunc(),
	}))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigin))
	r.Use(middleware.SecurityMiddleware())

	routes.Setup(r, h, db, middleware.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		Issuer:          cfg.JWT.Issuer,
		TokenExpiration: cfg.JWT.Expiration,
		Logger:          logger,
	}, logger)

	return r
}

// zapContextFunc adds the request and trace identifiers to every access log
// line. Bodies are not logged; uploads can be many megabytes.
func zapContextFunc() ginzap.Fn {
	return func(c *gin.Context) []zapcore.Field {
		fields := []zapcore.Field{}

		if requestID := c.Writer.Header().Get("X-Request-ID"); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}
		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			fields = append(fields,
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.String("span_id", span.SpanContext().SpanID().String()),
			)
		}
		if userID, ok := middleware.GetUserID(c); ok {
			fields = append(fields, zap.String("user_id", userID.String()))
		}
		return fields
	}
}
