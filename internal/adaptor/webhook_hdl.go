package adaptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"sportify-backoffice/internal/dto/response"
	"sportify-backoffice/internal/usecase"
	"sportify-backoffice/pkg/utils"

	"go.uber.org/zap"
)

const maxCallbackBody = 64 << 10

type WebhookHandler struct {
	service usecase.PaymentCallbackService
	log     *zap.Logger
}

func NewWebhookHandler(service usecase.PaymentCallbackService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		log:     log.With(zap.String("handler", "webhook")),
	}
}

// BillplzCallback handles POST /api/webhooks/billplz and /billplzCallback
func (h *WebhookHandler) BillplzCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeCallbackError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCallbackBody)
	fields, err := callbackFields(r)
	if err != nil {
		h.log.Warn("Unreadable callback body", zap.Error(err))
		writeCallbackError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Process(r.Context(), fields)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, response.CallbackResponse{
		Success: true,
		Message: result.Message,
	})
}

// callbackFields flattens a form or JSON callback body into one field map.
func callbackFields(r *http.Request) (map[string]string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		raw := map[string]any{}
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}

		fields := make(map[string]string, len(raw))
		for k, v := range raw {
			switch val := v.(type) {
			case nil:
				fields[k] = ""
			case string:
				fields[k] = val
			default:
				fields[k] = fmt.Sprint(val)
			}
		}
		return fields, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		fields[k] = r.PostForm.Get(k)
	}
	return fields, nil
}

func writeCallbackError(w http.ResponseWriter, code int, message string) {
	utils.WriteJSON(w, code, response.CallbackResponse{Success: false, Error: message})
}

func (h *WebhookHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidSignature):
		writeCallbackError(w, http.StatusUnauthorized, "Invalid signature")

	case errors.Is(err, usecase.ErrInvalidArgument):
		writeCallbackError(w, http.StatusBadRequest, "Missing booking ID")

	case errors.Is(err, usecase.ErrNotFound):
		writeCallbackError(w, http.StatusNotFound, "Booking not found")

	default:
		h.log.Error("Failed to process payment callback", zap.Error(err))
		writeCallbackError(w, http.StatusInternalServerError, "Internal server error")
	}
}
