package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/activemirror/beacon-chat/internal/middleware"
	"github.com/activemirror/beacon-chat/internal/service"
	"github.com/activemirror/beacon-chat/pkg/logger"
)

// DiagnosticsHandler serves the operator view.
type DiagnosticsHandler struct {
	chatService *service.ChatService
	logger      *logger.Logger
}

// NewDiagnosticsHandler creates a new diagnostics handler.
func NewDiagnosticsHandler(chatSvc *service.ChatService, log *logger.Logger) *DiagnosticsHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &DiagnosticsHandler{
		chatService: chatSvc,
		logger:      log.Named("diagnostics"),
	}
}

// Get handles GET /internal/diagnostics
func (h *DiagnosticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("diagnostics requested", zap.String("operator", middleware.GetOperator(r.Context())))
	writeJSON(w, http.StatusOK, h.chatService.Diagnostics())
}
