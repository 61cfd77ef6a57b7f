// Package handler implements the HTTP endpoints of the chat gateway.
package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/activemirror/beacon-chat/internal/middleware"
	"github.com/activemirror/beacon-chat/internal/model"
	"github.com/activemirror/beacon-chat/internal/ratelimit"
	"github.com/activemirror/beacon-chat/internal/service"
	"github.com/activemirror/beacon-chat/internal/validation"
	"github.com/activemirror/beacon-chat/pkg/logger"
)

const (
	maxBodyBytes = 64 * 1024

	unavailableMessage = "Chat service temporarily unavailable. Please try again later."
)

// ChatHandler handles the chat endpoint.
type ChatHandler struct {
	chatService *service.ChatService
	logger      *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chatSvc *service.ChatService, log *logger.Logger) *ChatHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ChatHandler{
		chatService: chatSvc,
		logger:      log.Named("handler"),
	}
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:  "Invalid request body",
			Reason: "malformed-body",
		})
		return
	}

	resp, err := h.chatService.Chat(ctx, middleware.ClientIdentity(r), req.Messages)
	if err != nil {
		h.writeChatError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) writeChatError(w http.ResponseWriter, r *http.Request, err error) {
	var limitErr *ratelimit.LimitError
	var validationErr *validation.Error

	switch {
	case errors.As(err, &limitErr):
		w.Header().Set("Retry-After", retryAfterSeconds(limitErr))
		writeJSON(w, http.StatusTooManyRequests, model.ErrorResponse{
			Error:  limitErr.Message(),
			Reason: limitErr.Reason(),
		})
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:  validationErr.Message(),
			Reason: string(validationErr.Reason),
		})
	case errors.Is(err, service.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, unavailableMessage)
	default:
		h.logger.Error("unexpected chat error",
			zap.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// retryAfterSeconds rounds up so clients never retry early.
func retryAfterSeconds(err *ratelimit.LimitError) string {
	secs := int(math.Ceil(err.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
