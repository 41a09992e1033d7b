package api

import (
	"fan-control-backend/internal/fan"
	"fan-control-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	panel *fan.Panel
	store store.Store
}

// NewHandler creates a new API handler. The store may be nil, in which
// case the dispatch journal is unavailable.
func NewHandler(panel *fan.Panel, s store.Store) *Handler {
	return &Handler{
		panel: panel,
		store: s,
	}
}
