package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"dramabox_webapp/internal/logger"

	"github.com/gin-gonic/gin"
)

var proxyClient = &http.Client{Timeout: 15 * time.Second}

// CatalogProxy forwards catalog lookups to the upstream dramabox API,
// passing the query string through unchanged.
func (h *Handler) CatalogProxy(c *gin.Context) {
	endpoint := strings.TrimPrefix(c.Param("endpoint"), "/")
	if endpoint == "" || strings.Contains(endpoint, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endpoint"})
		return
	}

	url := h.Cfg.CatalogAPIBase + "/" + endpoint
	if raw := c.Request.URL.RawQuery; raw != "" {
		url += "?" + raw
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, url, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bad upstream request"})
		return
	}

	resp, err := proxyClient.Do(req)
	if err != nil {
		logger.Error("catalog proxy error", "endpoint", endpoint, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable"})
		return
	}
	defer resp.Body.Close()

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Status(resp.StatusCode)
	c.Header("Content-Type", resp.Header.Get("Content-Type"))
	_, _ = io.Copy(c.Writer, resp.Body)
}
