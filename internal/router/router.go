// Package router sets up all HTTP routes for the API.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/billing-extract-api/internal/handlers"
	"github.com/Shimizu-Technology/billing-extract-api/internal/middleware"
)

// Config carries the knobs the router needs from the environment.
type Config struct {
	AllowedOrigins []string
	RateLimitRPS   int
	RateLimitBurst int
}

// Setup creates and configures the Gin router with all routes.
//
// The surface is flat on purpose — no /api/v1 prefix, no auth groups.
// The paths are a contract with an existing frontend that predates this
// implementation.
func Setup(h *handlers.Handler, cfg Config) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Liveness and diagnostics
	r.GET("/", h.Liveness)
	r.GET("/debug", h.Debug)

	// Upload is the only rate-limited route — it fans out into paid
	// oracle calls. Polling stays unthrottled so clients can poll
	// freely while a job runs.
	r.POST("/extract", rateLimiter.RateLimit(), h.Extract)
	r.GET("/status/:jobId", h.Status)

	// API documentation (Swagger UI + raw OpenAPI spec)
	r.GET("/docs", h.ServeSwaggerUI)
	r.GET("/docs/openapi.yaml", h.ServeOpenAPISpec)

	return r
}
