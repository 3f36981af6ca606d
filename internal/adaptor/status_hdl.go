package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"sportify-backoffice/internal/dto/request"
	"sportify-backoffice/internal/dto/response"
	"sportify-backoffice/internal/usecase"
	"sportify-backoffice/pkg/utils"

	"go.uber.org/zap"
)

// Error codes of the status check.
const (
	codeUnauthenticated  = "unauthenticated"
	codeInvalidArgument  = "invalid-argument"
	codeNotFound         = "not-found"
	codePermissionDenied = "permission-denied"
	codeInternal         = "internal"
)

type StatusHandler struct {
	service usecase.PaymentStatusService
	log     *zap.Logger
}

func NewStatusHandler(service usecase.PaymentStatusService, log *zap.Logger) *StatusHandler {
	return &StatusHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment_status")),
	}
}

func writeStatusError(w http.ResponseWriter, code int, errCode, message string) {
	utils.WriteJSON(w, code, response.StatusErrorResponse{
		Success: false,
		Code:    errCode,
		Error:   message,
	})
}

// Unauthenticated is the auth middleware's deny writer for the status route.
func (h *StatusHandler) Unauthenticated(w http.ResponseWriter, message string) {
	writeStatusError(w, http.StatusUnauthorized, codeUnauthenticated, message)
}

// CheckPaymentStatus handles POST /api/payments/status (protected)
func (h *StatusHandler) CheckPaymentStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		h.Unauthenticated(w, "User must be authenticated")
		return
	}

	var req request.PaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStatusError(w, http.StatusBadRequest, codeInvalidArgument, "Invalid request body")
		return
	}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		writeStatusError(w, http.StatusBadRequest, codeInvalidArgument, "Booking ID is required")
		return
	}

	resp, err := h.service.Check(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *StatusHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidArgument):
		writeStatusError(w, http.StatusBadRequest, codeInvalidArgument, "Booking ID is required")

	case errors.Is(err, usecase.ErrNotFound):
		writeStatusError(w, http.StatusNotFound, codeNotFound, "Booking not found")

	case errors.Is(err, usecase.ErrPermissionDenied):
		writeStatusError(w, http.StatusForbidden, codePermissionDenied, "Not authorized to check this booking")

	default:
		h.log.Error("Failed to check payment status", zap.Error(err))
		writeStatusError(w, http.StatusInternalServerError, codeInternal, "Failed to check payment status")
	}
}
