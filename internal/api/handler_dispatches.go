package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetDispatches handles GET /api/dispatches?limit=n.
func (h *Handler) GetDispatches(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dispatch journal is not configured"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	records, err := h.store.RecentDispatches(c.Request.Context(), limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dispatches"})
		return
	}
	c.JSON(http.StatusOK, records)
}
