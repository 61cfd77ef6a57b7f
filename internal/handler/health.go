package handler

import (
	"net/http"

	"github.com/activemirror/beacon-chat/internal/service"
)

// ConnectionChecker reports the state of an optional upstream connection.
type ConnectionChecker interface {
	IsConnected() bool
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	chatService *service.ChatService
	events      ConnectionChecker
}

// NewHealthHandler creates a new health handler. events may be nil when
// operator notifications are disabled.
func NewHealthHandler(chatSvc *service.ChatService, events ConnectionChecker) *HealthHandler {
	return &HealthHandler{
		chatService: chatSvc,
		events:      events,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.events != nil && !h.events.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Providers handles GET /api/chat/health
func (h *HealthHandler) Providers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.chatService.Health(r.Context()))
}
