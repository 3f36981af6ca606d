package adaptor

import (
	"context"
	"errors"
	"net/http"

	"sportify-backoffice/internal/dto/request"
	"sportify-backoffice/internal/dto/response"
	"sportify-backoffice/internal/usecase"
	"sportify-backoffice/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type EscrowHandler struct {
	service usecase.EscrowService
	log     *zap.Logger
}

func NewEscrowHandler(service usecase.EscrowService, log *zap.Logger) *EscrowHandler {
	return &EscrowHandler{
		service: service,
		log:     log.With(zap.String("handler", "escrow")),
	}
}

// ListPayments handles GET /api/admin/payments (admin only)
func (h *EscrowHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.EscrowListRequest{Filter: query.Get("filter")}
	req.Page = utils.ParseInt(query.Get("page"), 1)
	req.PerPage = utils.ParseInt(query.Get("per_page"), utils.DefaultPerPage)

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, utils.FormatValidationErrors(validationErrors), validationErrors)
		return
	}

	payments, err := h.service.ListPayments(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "list escrow payments")
		return
	}

	utils.ResponseSuccess(w, "success", payments)
}

// Stats handles GET /api/admin/payments/stats (admin only)
func (h *EscrowHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "get escrow stats")
		return
	}

	utils.ResponseSuccess(w, "success", stats)
}

// Release handles POST /api/admin/payments/{id}/release (admin only)
func (h *EscrowHandler) Release(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "release payment", h.service.ReleaseToVenue)
}

// Refund handles POST /api/admin/payments/{id}/refund (admin only)
func (h *EscrowHandler) Refund(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "refund booking", h.service.Refund)
}

// ApproveRefundRequest handles POST /api/admin/payments/{id}/refund-request/approve (admin only)
func (h *EscrowHandler) ApproveRefundRequest(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "approve refund request", h.service.ApproveRefundRequest)
}

// RejectRefundRequest handles POST /api/admin/payments/{id}/refund-request/reject (admin only)
func (h *EscrowHandler) RejectRefundRequest(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "reject refund request", h.service.RejectRefundRequest)
}

type escrowAction func(ctx context.Context, bookingID, adminID string) (*response.ActionResponse, error)

func (h *EscrowHandler) act(w http.ResponseWriter, r *http.Request, operation string, action escrowAction) {
	adminID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	result, err := action(r.Context(), bookingID, adminID)
	if err != nil {
		h.handleServiceError(w, err, operation)
		return
	}

	auditAdminAction(r.Context(), h.log, operation, bookingID, result)
	utils.ResponseSuccess(w, result.Message, result)
}

// handleServiceError handles errors for escrow operations
func (h *EscrowHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		h.log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, "Booking not found")

	case errors.Is(err, usecase.ErrStateChanged):
		h.log.Warn(operation+" failed - booking changed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseConflict(w, "Booking changed since it was loaded, reload and try again")

	case errors.Is(err, usecase.ErrRefundWindowClosed):
		h.log.Warn(operation+" failed - inside refund cutoff",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseUnprocessable(w, usecase.ErrRefundWindowClosed.Error())

	case errors.Is(err, usecase.ErrInvalidTransition):
		h.log.Warn(operation+" failed - invalid state",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseUnprocessable(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidArgument):
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
