package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/platewise/backend/internal/model"
	"github.com/platewise/backend/internal/service"
)

const dateLayout = "2006-01-02"

// LogHandler exposes the food log store over HTTP.
type LogHandler struct {
	store *service.LogStore
}

// NewLogHandler creates a log handler over the store.
func NewLogHandler(store *service.LogStore) *LogHandler {
	return &LogHandler{store: store}
}

// RegisterRoutes registers the log routes.
func (h *LogHandler) RegisterRoutes(router *gin.RouterGroup) {
	logs := router.Group("/logs")
	{
		logs.POST("", h.SaveLog)
		logs.GET("", h.GetLogs)
	}
}

// SaveLog appends one confirmed analysis to the store. The entry date is the
// save time, not the capture time.
func (h *LogHandler) SaveLog(c *gin.Context) {
	var req SaveLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := req.toFoodLog()
	entry.Date = time.Now()

	if err := entry.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.store.SaveLog(c.Request.Context(), entry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist log entry"})
		return
	}

	c.JSON(http.StatusCreated, SaveLogResponse{Log: saved})
}

// GetLogs returns the entries for one local calendar day. The date query
// parameter takes YYYY-MM-DD and defaults to today.
func (h *LogHandler) GetLogs(c *gin.Context) {
	forDate := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.ParseInLocation(dateLayout, dateStr, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must use YYYY-MM-DD"})
			return
		}
		forDate = parsed
	}

	logs := h.store.GetLogs(forDate)
	if logs == nil {
		logs = []model.FoodLog{}
	}

	c.JSON(http.StatusOK, GetLogsResponse{
		Date: forDate.Format(dateLayout),
		Logs: logs,
	})
}
