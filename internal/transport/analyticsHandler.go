package transport

import (
	"errors"
	"net/http"

	"github.com/toolsinn/shortlinks/internal/entity"
	"github.com/toolsinn/shortlinks/internal/service"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/analytics/:code", h.GetAnalytics)
	router.GET("/analytics/:code/clicks", h.GetClicks)
	router.POST("/admin/recalculate", h.Recalculate)
}

func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	code := c.Param("code")

	analytics, err := h.analyticsService.GetAnalytics(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get analytics"})
		return
	}

	c.JSON(http.StatusOK, analytics)
}

func (h *AnalyticsHandler) GetClicks(c *gin.Context) {
	code := c.Param("code")

	clicks, err := h.analyticsService.ListClicks(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get clicks"})
		return
	}

	c.JSON(http.StatusOK, clicks)
}

// Recalculate is an operator tool, so unlike the public paths it reports
// raw error detail.
func (h *AnalyticsHandler) Recalculate(c *gin.Context) {
	updated, err := h.analyticsService.RecalculateAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "updated": updated})
		return
	}

	c.JSON(http.StatusOK, entity.RecalculateResult{Updated: updated})
}
