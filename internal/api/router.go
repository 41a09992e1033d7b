package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"fan-control-backend/config"
	"fan-control-backend/internal/fan"
	"fan-control-backend/internal/mw"
	"fan-control-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(panel *fan.Panel, s store.Store, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(panel, s)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	caching := mw.Cache(cache.New(ttl, 2*ttl), ttl)

	api := r.Group("/api")
	{
		api.GET("/state", handler.GetState)
		api.GET("/levels", caching, GetLevels)
		api.GET("/stream", handler.Stream)

		control := api.Group("")
		control.Use(rateLimiter)
		control.POST("/power/toggle", handler.TogglePower)
		control.PUT("/speed", handler.SetSpeed)
		control.PUT("/speed/:level", handler.SetSpeed)
		control.GET("/dispatches", handler.GetDispatches)
	}

	return r
}
