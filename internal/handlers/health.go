// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides:
// - Request data (params, query, body, headers)
// - Response methods (JSON, String, Status)
// - Middleware data (c.Get/c.Set)
//
// We group related handlers into a struct (Handler) that holds shared
// dependencies, injected explicitly instead of through globals. This
// makes testing easy — build a Handler around a stubbed pipeline.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/billing-extract-api/internal/models"
	"github.com/Shimizu-Technology/billing-extract-api/internal/registry"
	"github.com/Shimizu-Technology/billing-extract-api/internal/services/extraction"
	"github.com/Shimizu-Technology/billing-extract-api/internal/services/oracle"
)

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	Registry  *registry.Registry
	Extractor *extraction.Service

	// OracleModel is reported on /debug so a misconfigured deploy is
	// visible without reading logs.
	OracleModel string

	// MaxUploadBytes caps the request body before any of it is read.
	MaxUploadBytes int64
}

// NewHandler creates a new handler with all dependencies.
func NewHandler(reg *registry.Registry, svc *extraction.Service, oracleModel string, maxUploadMB int) *Handler {
	return &Handler{
		Registry:       reg,
		Extractor:      svc,
		OracleModel:    oracleModel,
		MaxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// Liveness reports that the service is up.
// GET /
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, models.LivenessResponse{
		Status:  true,
		Message: "Billing Extract API is running",
	})
}

// Debug reports which extraction oracle this build talks to and how
// many jobs are in flight.
// GET /debug
func (h *Handler) Debug(c *gin.Context) {
	c.JSON(http.StatusOK, models.DebugResponse{
		Status:       true,
		OracleClient: oracle.Version,
		Model:        h.OracleModel,
		ActiveJobs:   h.Registry.ActiveCount(),
	})
}
