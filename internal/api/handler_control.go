package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fan-control-backend/internal/device"
	"fan-control-backend/internal/fan"
	"fan-control-backend/internal/parse"
)

// GetState handles GET /api/state.
func (h *Handler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.panel.Snapshot())
}

// TogglePower handles POST /api/power/toggle. The response is 200 even
// when the controller could not be reached; the advisory is carried in
// connectionError.
func (h *Handler) TogglePower(c *gin.Context) {
	snap, err := h.panel.TogglePower(c.Request.Context())
	if err != nil {
		respondPanelError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type setSpeedRequest struct {
	Level int `json:"level" binding:"required"`
}

// SetSpeed handles PUT /api/speed with a JSON body and PUT /api/speed/:level.
func (h *Handler) SetSpeed(c *gin.Context) {
	var level int
	if raw := c.Param("level"); raw != "" {
		parsed, err := parse.Level(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		level = parsed
	} else {
		var req setSpeedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		level = req.Level
	}

	snap, err := h.panel.SetSpeed(c.Request.Context(), level)
	if err != nil {
		respondPanelError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetLevels handles GET /api/levels.
func GetLevels(c *gin.Context) {
	c.JSON(http.StatusOK, device.Table())
}

func respondPanelError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, fan.ErrInvalidLevel):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, fan.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
