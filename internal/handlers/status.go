// status.go handles job status polling.
//
// GET /status/:jobId — one envelope per lifecycle state. Note the
// deliberately mixed-typed "status" field: string while pending or
// errored, boolean true on success. Legacy clients depend on it.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/billing-extract-api/internal/models"
)

// Status reports the state of an extraction job.
// GET /status/:jobId
func (h *Handler) Status(c *gin.Context) {
	id := c.Param("jobId")

	job, ok := h.Registry.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.NotFoundResponse{
			Error: fmt.Sprintf("Job %s not found", id),
		})
		return
	}

	switch job.Status {
	case models.StatusPending:
		c.JSON(http.StatusOK, models.PendingResponse{Status: models.StatusPending})

	case models.StatusError:
		c.JSON(http.StatusOK, models.JobErrorResponse{
			Status: models.StatusError,
			Error:  job.Error,
		})

	default: // completed
		data := job.Data
		if data == nil {
			data = []models.UnifiedRow{} // serialize as [], never null
		}
		c.JSON(http.StatusOK, models.CompletedResponse{
			Status: true,
			Data:   data,
		})
	}
}
