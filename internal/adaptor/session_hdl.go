package adaptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sportify-backoffice/internal/dto/request"
	"sportify-backoffice/internal/dto/response"
	"sportify-backoffice/internal/usecase"
	"sportify-backoffice/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SessionHandler struct {
	service usecase.VerificationService
	log     *zap.Logger
}

func NewSessionHandler(service usecase.VerificationService, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		log:     log.With(zap.String("handler", "session")),
	}
}

// ListSessions handles GET /api/admin/sessions (admin only)
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.ListSessions(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.handleServiceError(w, err, "list sessions")
		return
	}

	utils.ResponseSuccess(w, "success", sessions)
}

// StreamSessions handles GET /api/admin/sessions/stream (admin only). Every change to the
// queue is pushed as a "sessions" event carrying the full list.
func (h *SessionHandler) StreamSessions(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.ResponseInternalError(w, "Streaming not supported")
		return
	}

	rc := http.NewResponseController(w)
	started := false

	err := h.service.WatchSessions(r.Context(), r.URL.Query().Get("status"), func(sessions []response.SessionResponse) {
		if !started {
			// The server write timeout would otherwise cut the stream.
			_ = rc.SetWriteDeadline(time.Time{})
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			w.WriteHeader(http.StatusOK)
			started = true
		}

		payload, err := json.Marshal(sessions)
		if err != nil {
			h.log.Error("Failed to encode session snapshot", zap.Error(err))
			return
		}
		fmt.Fprintf(w, "event: sessions\ndata: %s\n\n", payload)
		flusher.Flush()
	})

	if err != nil {
		if !started {
			h.handleServiceError(w, err, "stream sessions")
			return
		}
		h.log.Warn("Session stream ended", zap.Error(err))
	}
}

// VerifySession handles POST /api/admin/sessions/{id}/verify (admin only)
func (h *SessionHandler) VerifySession(w http.ResponseWriter, r *http.Request) {
	adminID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		utils.ResponseBadRequest(w, "Session ID is required", nil)
		return
	}

	var req request.VerifySessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.Verify(r.Context(), sessionID, adminID, &req)
	if err != nil {
		h.handleServiceError(w, err, "verify session")
		return
	}

	auditAdminAction(r.Context(), h.log, "verify session", sessionID, result)
	utils.ResponseSuccess(w, result.Message, result)
}

// ReleasePayment handles POST /api/admin/sessions/{id}/release (admin only)
func (h *SessionHandler) ReleasePayment(w http.ResponseWriter, r *http.Request) {
	adminID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		utils.ResponseBadRequest(w, "Session ID is required", nil)
		return
	}

	result, err := h.service.ReleasePayment(r.Context(), sessionID, adminID)
	if err != nil {
		h.handleServiceError(w, err, "release coach payment")
		return
	}

	auditAdminAction(r.Context(), h.log, "release coach payment", sessionID, result)
	utils.ResponseSuccess(w, result.Message, result)
}

func (h *SessionHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrNotesRequired):
		utils.ResponseBadRequest(w, usecase.ErrNotesRequired.Error(), nil)

	case errors.Is(err, usecase.ErrInvalidArgument):
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, "Session not found")

	case errors.Is(err, usecase.ErrAlreadyReleased):
		h.log.Warn(operation+" failed - already released", zap.Error(err))
		utils.ResponseConflict(w, "Payment has already been released for this session")

	case errors.Is(err, usecase.ErrStateChanged):
		h.log.Warn(operation+" failed - session changed", zap.Error(err))
		utils.ResponseConflict(w, "Session changed since it was loaded, reload and try again")

	case errors.Is(err, usecase.ErrInvalidTransition):
		h.log.Warn(operation+" failed - invalid state", zap.Error(err))
		utils.ResponseUnprocessable(w, err.Error())

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
