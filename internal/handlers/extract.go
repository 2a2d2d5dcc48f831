// extract.go handles the PDF upload endpoint.
//
// POST /extract — multipart upload, single field "file", PDF only.
// The response is a 202-style acceptance with a job id; the actual
// extraction runs in the background and is polled via /status/:jobId.
package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/billing-extract-api/internal/models"
	"github.com/Shimizu-Technology/billing-extract-api/internal/services/pdftext"
)

// rejectUpload is the single 400 path. The frontend matches this error
// string, so every rejection reason maps to the same envelope.
func rejectUpload(c *gin.Context) {
	c.JSON(http.StatusBadRequest, models.NewUploadError("Please upload a PDF"))
}

// Extract accepts a PDF upload and starts an extraction job.
// POST /extract
func (h *Handler) Extract(c *gin.Context) {
	// Limit request body size before reading anything.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		log.Printf("🚫 Upload rejected: %v", err)
		rejectUpload(c)
		return
	}
	defer file.Close()

	// The client must declare the part as a PDF. Browsers set this
	// from the picked file; curl users pass type=application/pdf.
	declared := header.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(declared), "application/pdf") {
		log.Printf("🚫 Upload rejected: declared media type %q", declared)
		rejectUpload(c)
		return
	}

	// Go Pattern: io.ReadAll pulls the whole part into memory. The pdf
	// library needs random access, and MaxBytesReader already bounds
	// how much we will read.
	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("🚫 Upload rejected while reading %q: %v", header.Filename, err)
		rejectUpload(c)
		return
	}

	// Declared types lie; check the bytes too. The magic-byte check is
	// a cheap fast path, the mimetype sniff catches dressed-up HTML
	// and friends.
	if !pdftext.ValidatePDF(data) || !mimetype.Detect(data).Is("application/pdf") {
		log.Printf("🚫 Upload rejected: %q is not a PDF by content", header.Filename)
		rejectUpload(c)
		return
	}

	job := h.Extractor.Submit(data)

	c.JSON(http.StatusAccepted, models.AcceptedResponse{
		Status:  true,
		JobID:   job.ID,
		Message: fmt.Sprintf("Processing started. Poll /status/%s for the result.", job.ID),
	})
}
