package api

import (
	"bytes"
	"errors"
	"image"
	"io"
	"log"
	"net/http"

	// Uploaded photos arrive as JPEG from the capture flow, PNG from tests
	// and gallery picks.
	_ "image/jpeg"
	_ "image/png"

	"github.com/gin-gonic/gin"

	"github.com/platewise/backend/internal/middleware"
	"github.com/platewise/backend/internal/service"
)

// maxUploadBytes caps the multipart image payload.
const maxUploadBytes = 10 << 20

// AnalysisHandler exposes the analysis pipeline over HTTP. Each request runs
// its own AnalysisSession, so independent uploads analyze concurrently.
type AnalysisHandler struct {
	analyzer service.Analyzer
	images   *service.ImageStore
}

// NewAnalysisHandler creates an analysis handler. images may be nil when
// image persistence is not configured.
func NewAnalysisHandler(analyzer service.Analyzer, images *service.ImageStore) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		images:   images,
	}
}

// RegisterRoutes registers the analysis routes. limiter may be nil when no
// Redis is available.
func (h *AnalysisHandler) RegisterRoutes(router *gin.RouterGroup, limiter *middleware.RateLimiter) {
	analyze := router.Group("/analyze")
	if limiter != nil {
		analyze.Use(limiter.Middleware())
	}
	analyze.POST("", h.Analyze)
}

// Analyze accepts one food photo as multipart form field "image", runs a
// single analysis attempt and returns the validated result or the classified
// failure.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds upload limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded image"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded image"})
		return
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uploaded file is not a decodable image"})
		return
	}

	session := service.NewAnalysisSession(h.analyzer)
	if err := session.StartAnalysis(c.Request.Context(), img); err != nil {
		c.JSON(statusForAnalysisError(err), gin.H{"error": err.Error()})
		return
	}

	resp := AnalyzeResponse{Result: session.Snapshot().Result}

	if h.images != nil {
		imagePath, err := h.images.StoreFoodImage(c.Request.Context(), data)
		if err != nil {
			// The analysis stands on its own; a failed upload only costs
			// the image reference.
			log.Printf("[AnalysisHandler] image upload failed: %v", err)
		} else {
			resp.ImagePath = imagePath
		}
	}

	c.JSON(http.StatusOK, resp)
}

// statusForAnalysisError maps the classified pipeline errors onto HTTP
// statuses for the boundary.
func statusForAnalysisError(err error) int {
	if errors.Is(err, service.ErrAnalysisInProgress) {
		return http.StatusConflict
	}
	if infErr, ok := service.AsInferenceError(err); ok {
		switch infErr.Kind {
		case service.InferenceInvalidInput:
			return http.StatusBadRequest
		case service.InferenceTransport:
			return http.StatusGatewayTimeout
		default:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}
