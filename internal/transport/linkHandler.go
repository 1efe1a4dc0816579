package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/toolsinn/shortlinks/internal/entity"
	"github.com/toolsinn/shortlinks/internal/service"
	"github.com/toolsinn/shortlinks/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type Handler interface {
	RegisterRoutes(router *gin.RouterGroup)
}

type LinkHandler struct {
	linkService service.LinkService
	homeURL     string
}

func NewLinkHandler(linkService service.LinkService, homeURL string) *LinkHandler {
	return &LinkHandler{
		linkService: linkService,
		homeURL:     homeURL,
	}
}

func (h *LinkHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/shorten", h.ShortenURL)
	router.GET("/links", h.GetLinks)
	router.GET("/links/popular", h.GetPopularLinks)
}

func (h *LinkHandler) ShortenURL(c *gin.Context) {
	var req entity.ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	response, err := h.linkService.Shorten(c.Request.Context(), entity.Destinations{
		Desktop: req.DesktopURL,
		Android: req.AndroidURL,
		IOS:     req.IOSURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidURL):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid destination URL"})
		case errors.Is(err, entity.ErrEmptyDestinations):
			c.JSON(http.StatusBadRequest, gin.H{"error": "At least one destination URL is required"})
		case errors.Is(err, entity.ErrCodeGenerationExhausted):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate a short code, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create link"})
		}
		return
	}

	c.JSON(http.StatusCreated, response)
}

/// RedirectURL handles every path no declared route matched: anything that
// looks like a bare short code is resolved, everything else (and every
// resolution failure) lands on the home page. The client never sees an
// error here.
func (h *LinkHandler) RedirectURL(c *gin.Context) {
	code := strings.Trim(c.Request.URL.Path, "/")
	if code == "" || strings.Contains(code, "/") {
		c.Redirect(http.StatusFound, h.homeURL)
		return
	}
	c.Set(middleware.ShortCodeKey, code)

	destination, err := h.linkService.Resolve(c.Request.Context(), code, service.ClickContext{
		UserAgent:    c.GetHeader("User-Agent"),
		IPAddress:    c.ClientIP(),
		Referer:      c.GetHeader("Referer"),
		PlatformHint: c.GetHeader("Sec-CH-UA-Platform"),
		Country:      c.GetHeader("CF-IPCountry"),
	})
	if err != nil {
		c.Redirect(http.StatusFound, h.homeURL)
		return
	}

	c.Redirect(http.StatusFound, destination)
}

func (h *LinkHandler) GetPopularLinks(c *gin.Context) {
	count := 10
	if raw := c.Query("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid count"})
			return
		}
		count = parsed
	}

	links, err := h.linkService.ListPopular(c.Request.Context(), count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get popular links"})
		return
	}

	c.JSON(http.StatusOK, links)
}

func (h *LinkHandler) GetLinks(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	links, err := h.linkService.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get links"})
		return
	}

	c.JSON(http.StatusOK, links)
}
